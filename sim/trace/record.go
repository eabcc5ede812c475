// Package trace provides run-trace recording for disk-scheduling analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// CompletionRecord captures one request completed by the drive controller.
type CompletionRecord struct {
	Clock     int64  // tick on which the request completed
	Process   int    // owning process
	Kind      string // "read" or "write"
	Sector    int
	Track     int
	ElapsedMs int // ticks from dispatch to completion
}

// SecondRecord captures a simulated-second boundary of the CPU scheduler.
type SecondRecord struct {
	Second        int64
	Budget        int   // request budget for the second (-1 = unlimited)
	Allotment     []int // per-process share of Budget
	PrevSubmitted []int // per-process submissions of the previous second (nil for second 0)
}

// PositionRecord captures the drive head position at the end of a tick.
type PositionRecord struct {
	Clock int64
	Track int
}
