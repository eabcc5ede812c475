package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// SecondRollover describes a simulated-second boundary crossed by the scheduler.
type SecondRollover struct {
	Second        int64 // index of the second that starts now
	Budget        int   // request budget for the new second (-1 = unlimited)
	Allotment     []int // per-process share of Budget
	PrevSubmitted []int // per-process submissions during the second that just ended; nil for second 0
}

// SchedulerTick reports what the CPU did during one tick.
type SchedulerTick struct {
	Process   ProcessID // process that ran, -1 if the CPU was idle
	Outcome   TickOutcome
	Preempted bool            // the process hit ErrQueueFull and lost the rest of its quantum
	Rollover  *SecondRollover // non-nil on the first tick of every simulated second
}

// Idle reports whether no process ran because all were blocked.
func (t SchedulerTick) Idle() bool {
	return t.Process < 0
}

// CPUScheduler is a round-robin scheduler over a fixed, ordered set of
// processes with a time quantum and a per-second submission cap.
// Exactly one process runs per tick; blocked processes are skipped.
type CPUScheduler struct {
	processes            []*WorkProcess
	sub                  Submitter
	quantum              int
	maxRequestsPerSecond int
	rng                  *rand.Rand

	time      int64 // ticks executed so far
	current   int   // scheduling index
	elapsed   int   // ticks used of the current quantum
	budget    int
	allotment []int
	submitted []int
	idleTicks int64
}

// NewCPUScheduler creates a scheduler starting at index 0. processes[i] must
// have ID i. maxRequestsPerSecond <= 0 disables the rate cap. rng feeds the
// per-second budget sampler.
// Panics on an empty process list, mismatched IDs, or quantum < 1.
func NewCPUScheduler(processes []*WorkProcess, sub Submitter, quantum, maxRequestsPerSecond int, rng *rand.Rand) *CPUScheduler {
	if len(processes) == 0 {
		panic("NewCPUScheduler: at least one process is required")
	}
	if quantum < 1 {
		panic(fmt.Sprintf("NewCPUScheduler: quantum must be >= 1, got %d", quantum))
	}
	if rng == nil {
		panic("NewCPUScheduler: rng must not be nil")
	}
	for i, p := range processes {
		if p.ID() != ProcessID(i) {
			panic(fmt.Sprintf("NewCPUScheduler: process at index %d has ID %d", i, p.ID()))
		}
	}
	return &CPUScheduler{
		processes:            processes,
		sub:                  sub,
		quantum:              quantum,
		maxRequestsPerSecond: maxRequestsPerSecond,
		rng:                  rng,
		allotment:            make([]int, len(processes)),
		submitted:            make([]int, len(processes)),
	}
}

// Tick runs one process for one millisecond.
func (s *CPUScheduler) Tick() SchedulerTick {
	res := SchedulerTick{Process: -1}
	if s.time%MillisPerSecond == 0 {
		res.Rollover = s.rollover()
	}

	if idx, ok := s.pickRunnable(); ok {
		s.current = idx
		p := s.processes[idx]
		canSubmit := s.allotment[idx] < 0 || s.submitted[idx] < s.allotment[idx]
		res.Process = p.ID()
		res.Outcome = p.Tick(canSubmit, s.sub)
		switch res.Outcome {
		case OutcomeSubmitted:
			s.submitted[idx]++
		case OutcomeQueueFull:
			s.Preempt()
			res.Preempted = true
		}
		// a preemption has already moved the index, so this tick counts
		// against the next process's quantum
		s.elapsed++
	} else {
		s.idleTicks++
	}

	s.time++
	if s.elapsed >= s.quantum {
		s.advance()
	}
	return res
}

// Preempt ends the current quantum immediately and moves the scheduling
// index one step forward.
func (s *CPUScheduler) Preempt() {
	s.advance()
}

func (s *CPUScheduler) advance() {
	s.current = (s.current + 1) % len(s.processes)
	s.elapsed = 0
}

// pickRunnable returns the current index if runnable, otherwise the first
// runnable index after it, otherwise the lowest runnable index.
// Returns false when every process is blocked.
func (s *CPUScheduler) pickRunnable() (int, bool) {
	if !s.processes[s.current].IsBlocked() {
		return s.current, true
	}
	for i := s.current + 1; i < len(s.processes); i++ {
		if !s.processes[i].IsBlocked() {
			return i, true
		}
	}
	for i := 0; i < s.current; i++ {
		if !s.processes[i].IsBlocked() {
			return i, true
		}
	}
	return 0, false
}

// rollover draws the next second's budget and resets submission counters.
func (s *CPUScheduler) rollover() *SecondRollover {
	r := &SecondRollover{Second: s.time / MillisPerSecond}
	if s.time > 0 {
		r.PrevSubmitted = append([]int(nil), s.submitted...)
	}
	s.budget = SampleRequestBudget(s.rng, s.maxRequestsPerSecond)
	s.allotment = DistributeBudget(s.budget, len(s.processes))
	for i := range s.submitted {
		s.submitted[i] = 0
	}
	r.Budget = s.budget
	r.Allotment = append([]int(nil), s.allotment...)
	logrus.Debugf("[tick %07d] second %d budget=%d allotment=%v", s.time, r.Second, r.Budget, r.Allotment)
	return r
}

// Time returns the number of ticks executed.
func (s *CPUScheduler) Time() int64 { return s.time }

// Current returns the scheduling index.
func (s *CPUScheduler) Current() int { return s.current }

// Budget returns the current second's request budget (-1 = unlimited).
func (s *CPUScheduler) Budget() int { return s.budget }

// Allotment returns the share of the budget given to process i this second.
func (s *CPUScheduler) Allotment(i int) int { return s.allotment[i] }

// Submitted returns how many requests process i submitted this second.
func (s *CPUScheduler) Submitted(i int) int { return s.submitted[i] }

// IdleTicks returns the number of ticks on which every process was blocked.
func (s *CPUScheduler) IdleTicks() int64 { return s.idleTicks }

// Processes returns the scheduled processes in index order.
func (s *CPUScheduler) Processes() []*WorkProcess { return s.processes }
