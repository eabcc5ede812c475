package sim

import (
	"errors"
	"math/rand"

	"github.com/disksched-sim/disksched-sim/sim/internal/testutil"
)

// fakeSubmitter records accepted queries. When full is set every
// submission is rejected with ErrQueueFull.
type fakeSubmitter struct {
	accepted []Query
	full     bool
}

func (f *fakeSubmitter) Submit(q Query) error {
	if f.full {
		return ErrQueueFull
	}
	f.accepted = append(f.accepted, q)
	return nil
}

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// recoverError runs f and returns the error it panicked with, or nil if it
// did not panic with an error value.
func recoverError(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.New("non-error panic")
			}
		}
	}()
	f()
	return nil
}

// testProcesses creates n processes with id i over a single-block file on
// track i. A huge creation time keeps them in CreatingRequest forever.
func testProcesses(n, creationTimeMs int, readOnly bool) []*WorkProcess {
	procs := make([]*WorkProcess, n)
	for i := range procs {
		file := NewFile(FileSmall, []int{i * SectorsPerTrack})
		procs[i] = NewWorkProcess(ProcessID(i), file, readOnly, creationTimeMs, 1, newTestRand(int64(i)))
	}
	return procs
}

// smallConfig is a three-process configuration over a 20-track drive,
// matching smallLayout.
func smallConfig() SimConfig {
	cfg := DefaultConfig()
	cfg.Drive.Tracks = 20
	cfg.Drive.SeekMsPerTrack = 2
	cfg.Drive.RotationMs = 3
	cfg.Policy.QueueCapacity = 4
	cfg.Scheduler.TimeQuantumMs = 5
	cfg.Process.Count = 3
	cfg.Process.CreationTimeMs = 2
	cfg.Process.ProcessingTimeMs = 2
	cfg.Run.Seed = 99
	return cfg
}

func smallLayout() Layout {
	small := []int{5, 6, 7}
	medium := []int{1050, 1051, 1053, 1054, 1056, 1058}
	large := make([]int, 0, 160)
	for s := 1800; s < 1960; s++ {
		large = append(large, s)
	}
	used := append(append(append([]int{}, small...), medium...), large...)
	return Layout{
		Grid: testutil.Grid(20, SectorsPerTrack, used...),
		Files: []File{
			NewFile(FileSmall, small),
			NewFile(FileMedium, medium),
			NewFile(FileLarge, large),
		},
		ReadOnly: []bool{true, false, false},
	}
}
