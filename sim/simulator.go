// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/disksched-sim/disksched-sim/sim/trace"
)

// Layout is a generated workload: the drive occupancy grid and one file per
// process. Produced by sim/workload; read-only once the simulator is built.
type Layout struct {
	Grid     [][]bool // tracks × SectorsPerTrack, true where a file block lives
	Files    []File   // Files[i] belongs to process i
	ReadOnly []bool   // ReadOnly[i] forbids writes by process i
}

// Simulator is the core object that holds simulation time, the four state
// machines and the tick loop.
type Simulator struct {
	Clock   int64
	Horizon int64 // 0 = unbounded

	Drive      *Drive
	Controller *DriveController
	CPU        *CPUScheduler
	Processes  []*WorkProcess

	Metrics *Metrics
	Trace   *trace.SimulationTrace // nil when tracing is disabled

	observers []Observer
}

// NewSimulator builds a simulator for cfg over layout. All randomness is
// derived from cfg.Run.Seed. Panics if the layout does not match the
// configured process count or drive size; call cfg.Validate() first.
func NewSimulator(cfg SimConfig, layout Layout) *Simulator {
	if len(layout.Files) != cfg.Process.Count || len(layout.ReadOnly) != cfg.Process.Count {
		panic(fmt.Sprintf("NewSimulator: layout has %d files / %d read-only flags, want %d",
			len(layout.Files), len(layout.ReadOnly), cfg.Process.Count))
	}
	if len(layout.Grid) != cfg.Drive.Tracks {
		panic(fmt.Sprintf("NewSimulator: layout grid has %d tracks, want %d", len(layout.Grid), cfg.Drive.Tracks))
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Run.Seed))
	drive := NewDrive(layout.Grid, cfg.Drive.SeekMsPerTrack, cfg.Drive.RotationMs, cfg.Drive.FirstToOuterTrackMs)
	controller := NewDriveController(drive, NewSelectionPolicy(cfg.Policy.Name, cfg.Policy.QueueCapacity))

	processes := make([]*WorkProcess, cfg.Process.Count)
	for i := range processes {
		id := ProcessID(i)
		processes[i] = NewWorkProcess(id, layout.Files[i], layout.ReadOnly[i],
			cfg.Process.CreationTimeMs, cfg.Process.ProcessingTimeMs, rng.ForSubsystem(SubsystemProcess(id)))
	}
	cpu := NewCPUScheduler(processes, controller, cfg.Scheduler.TimeQuantumMs,
		cfg.Scheduler.MaxRequestsPerSecond, rng.ForSubsystem(SubsystemRate))

	s := &Simulator{
		Horizon:    cfg.Run.HorizonMs,
		Drive:      drive,
		Controller: controller,
		CPU:        cpu,
		Processes:  processes,
		Metrics:    NewMetrics(),
	}
	if level := trace.TraceLevel(cfg.Run.TraceLevel); level != "" && level != trace.TraceLevelNone {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
		s.AddObserver(s.Trace)
	}
	return s
}

// AddObserver registers o to receive completion and second records.
func (s *Simulator) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Step advances the whole system by one tick: CPU scheduler, then drive
// controller, then drive. The controller therefore sees the drive as it
// settled on the previous tick, and a request submitted this tick can be
// dispatched this tick if the controller is idle.
func (s *Simulator) Step() {
	st := s.CPU.Tick()
	s.Metrics.observeScheduler(st)
	if st.Rollover != nil {
		rec := secondRecord(st.Rollover)
		for _, o := range s.observers {
			o.RecordSecond(rec)
		}
	}
	if st.Preempted {
		logrus.Debugf("[tick %07d] process %d preempted: queue full", s.Clock, st.Process)
	}

	if c, ok := s.Controller.Tick(); ok {
		s.Processes[c.Query.Owner].OnCompletion(c.Query)
		s.Metrics.observeCompletion(c)
		rec := completionRecord(s.Clock, c)
		for _, o := range s.observers {
			o.RecordCompletion(rec)
		}
		logrus.Debugf("[tick %07d] completed %s in %d ms", s.Clock, c.Query, c.ElapsedMs)
	}

	s.Drive.Tick()
	if s.Trace != nil && s.Trace.WantsPositions() {
		s.Trace.RecordPosition(trace.PositionRecord{Clock: s.Clock, Track: s.Drive.Position()})
	}
	s.Clock++
}

// Run steps the simulation until done returns true or the horizon is reached.
// done is checked before every tick.
func (s *Simulator) Run(done func(*Simulator) bool) {
	logrus.Infof("[tick %07d] Simulation started: policy=%s processes=%d",
		s.Clock, s.Controller.Policy().Name(), len(s.Processes))
	for !done(s) {
		if s.Horizon > 0 && s.Clock >= s.Horizon {
			logrus.Warnf("[tick %07d] horizon reached after %d completions", s.Clock, s.Metrics.CompletedRequests)
			break
		}
		s.Step()
	}
	s.Metrics.SimEndedTime = s.Clock
	logrus.Infof("[tick %07d] Simulation ended", s.Clock)
}

// RunUntilCompletions runs until n requests have completed (or the horizon is reached).
func (s *Simulator) RunUntilCompletions(n int) {
	s.Run(func(s *Simulator) bool {
		return s.Metrics.CompletedRequests >= n
	})
}
