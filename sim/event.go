package sim

import "github.com/disksched-sim/disksched-sim/sim/trace"

// Completion is the event emitted by the DriveController when a query has
// been served: the query and the ticks elapsed since it was dispatched.
// The simulator forwards it to the owning process by Query.Owner and fans it
// out to observers; the controller keeps no reference to either.
type Completion struct {
	Query     Query
	ElapsedMs int
}

// Observer receives records produced while the simulation runs.
// Implemented by trace.SimulationTrace, telemetry.Collector and recording.Recorder.
// Observers must not call back into the simulator.
type Observer interface {
	RecordCompletion(rec trace.CompletionRecord)
	RecordSecond(rec trace.SecondRecord)
}

func completionRecord(clock int64, c Completion) trace.CompletionRecord {
	return trace.CompletionRecord{
		Clock:     clock,
		Process:   int(c.Query.Owner),
		Kind:      string(c.Query.Kind),
		Sector:    c.Query.Sector,
		Track:     c.Query.Track(),
		ElapsedMs: c.ElapsedMs,
	}
}

func secondRecord(r *SecondRollover) trace.SecondRecord {
	return trace.SecondRecord{
		Second:        r.Second,
		Budget:        r.Budget,
		Allotment:     r.Allotment,
		PrevSubmitted: r.PrevSubmitted,
	}
}
