package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalCompletions  int
	ReadCount         int
	WriteCount        int
	MeanElapsedMs     float64
	MaxElapsedMs      int
	TotalSeekTracks   int         // sum of track distances between consecutive completions
	ProcessCompletion map[int]int // process → completed requests
	MeanBudget        float64     // over limited seconds only
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ProcessCompletion: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalCompletions = len(st.Completions)
	totalElapsed := 0
	prevTrack := 0
	for i, c := range st.Completions {
		switch c.Kind {
		case "read":
			summary.ReadCount++
		case "write":
			summary.WriteCount++
		}
		totalElapsed += c.ElapsedMs
		if c.ElapsedMs > summary.MaxElapsedMs {
			summary.MaxElapsedMs = c.ElapsedMs
		}
		if i > 0 {
			summary.TotalSeekTracks += abs(c.Track - prevTrack)
		}
		prevTrack = c.Track
		summary.ProcessCompletion[c.Process]++
	}
	if summary.TotalCompletions > 0 {
		summary.MeanElapsedMs = float64(totalElapsed) / float64(summary.TotalCompletions)
	}

	limited, budgetSum := 0, 0
	for _, s := range st.Seconds {
		if s.Budget >= 0 {
			limited++
			budgetSum += s.Budget
		}
	}
	if limited > 0 {
		summary.MeanBudget = float64(budgetSum) / float64(limited)
	}

	return summary
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
