// Package sim provides the core discrete-time simulation engine for comparing
// disk-scheduling policies.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - drive.go: the physical drive (seek track by track, then rotational wait)
//   - controller.go: executes one query at a time and emits completions
//   - process.go: WorkProcess lifecycle (creating → created → blocked → processing)
//   - cpu.go: round-robin CPU scheduler with a time quantum and a per-second rate cap
//   - simulator.go: the tick loop that advances all four machines in a fixed order
//
// # Time
//
// One tick is one simulated millisecond. Every tick runs, in order,
// CPUScheduler.Tick, DriveController.Tick and Drive.Tick. The order is part
// of the model: changing it changes every measured service time.
//
// # Architecture
//
// The sim package defines the state machines and the SelectionPolicy
// extension point; collaborators live in sub-packages:
//   - sim/workload/: file layout generation and occupancy rendering
//   - sim/trace/: run-trace records (pure data)
//   - sim/telemetry/: Prometheus metrics for a run
//   - sim/recording/: SQLite persistence of run records
//
// # Key Interfaces
//
//   - SelectionPolicy: admit pending queries and choose the next one (FCFS, SSTF, FLOOK)
//   - Submitter: where a WorkProcess sends its queries (the DriveController)
//   - Observer: receives completion and second records as the run progresses
package sim
