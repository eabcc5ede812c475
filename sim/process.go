// Defines the WorkProcess, a workload that repeatedly creates I/O requests
// against its file, submits them, and waits for reads to complete.

package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ProcessPhase tags the variant held by a ProcessState.
type ProcessPhase string

const (
	ProcessCreating   ProcessPhase = "creating"   // CreatingRequest{Progress}
	ProcessCreated    ProcessPhase = "created"    // CreatedRequest{Query}
	ProcessBlocked    ProcessPhase = "blocked"    // Blocked, waiting for a read
	ProcessProcessing ProcessPhase = "processing" // ProcessingResult{Progress}
)

// ProcessState is a tagged union over the process phases.
type ProcessState struct {
	Phase    ProcessPhase
	Progress int   // creating, processing
	Query    Query // created
}

// RequestStyle decides how a process picks the sector of its next request.
type RequestStyle string

const (
	StyleRandom     RequestStyle = "random"     // uniform over the file's blocks
	StyleSequential RequestStyle = "sequential" // the block after the previous one, wrapping
)

// TickOutcome reports what a WorkProcess did during one tick.
type TickOutcome string

const (
	OutcomeProgressed TickOutcome = "progressed" // advanced a timed phase
	OutcomeThrottled  TickOutcome = "throttled"  // holding a request, rate budget exhausted
	OutcomeSubmitted  TickOutcome = "submitted"  // request accepted by the controller
	OutcomeQueueFull  TickOutcome = "queue-full" // request rejected, caller must preempt
)

// Submitter accepts queries on behalf of the drive. Implemented by DriveController.
type Submitter interface {
	Submit(q Query) error
}

// WorkProcess is the per-workload request generator.
type WorkProcess struct {
	id               ProcessID
	file             File
	readOnly         bool
	style            RequestStyle
	creationTimeMs   int
	processingTimeMs int
	rng              *rand.Rand
	lastBlock        int // index into file of the previously requested block
	state            ProcessState
}

// NewWorkProcess creates a process in CreatingRequest{1}. Large files use the
// sequential style with probability 1/2, decided here with rng; every other
// file uses the random style. rng must be owned by this process.
func NewWorkProcess(id ProcessID, file File, readOnly bool, creationTimeMs, processingTimeMs int, rng *rand.Rand) *WorkProcess {
	if rng == nil {
		panic("NewWorkProcess: rng must not be nil")
	}
	if creationTimeMs < 1 || processingTimeMs < 1 {
		panic(fmt.Sprintf("NewWorkProcess: creation and processing times must be >= 1, got %d and %d",
			creationTimeMs, processingTimeMs))
	}
	style := StyleRandom
	if file.Class == FileLarge && rng.Intn(2) == 1 {
		style = StyleSequential
	}
	return &WorkProcess{
		id:               id,
		file:             file,
		readOnly:         readOnly,
		style:            style,
		creationTimeMs:   creationTimeMs,
		processingTimeMs: processingTimeMs,
		rng:              rng,
		state:            ProcessState{Phase: ProcessCreating, Progress: 1},
	}
}

func (p *WorkProcess) ID() ProcessID       { return p.id }
func (p *WorkProcess) File() File          { return p.file }
func (p *WorkProcess) ReadOnly() bool      { return p.readOnly }
func (p *WorkProcess) Style() RequestStyle { return p.style }
func (p *WorkProcess) State() ProcessState { return p.state }

// IsBlocked reports whether the process waits for a read and must not be scheduled.
func (p *WorkProcess) IsBlocked() bool {
	return p.state.Phase == ProcessBlocked
}

// Tick advances the process by one millisecond. canSubmit gates only the
// CreatedRequest transition; timed phases progress regardless.
// Panics if the process is Blocked.
func (p *WorkProcess) Tick(canSubmit bool, sub Submitter) TickOutcome {
	switch p.state.Phase {
	case ProcessCreating:
		if p.state.Progress < p.creationTimeMs {
			p.state.Progress++
			return OutcomeProgressed
		}
		p.state = ProcessState{Phase: ProcessCreated, Query: p.newQuery()}
		return OutcomeProgressed
	case ProcessCreated:
		if !canSubmit {
			return OutcomeThrottled
		}
		q := p.state.Query
		if err := sub.Submit(q); err != nil {
			if errors.Is(err, ErrQueueFull) {
				return OutcomeQueueFull
			}
			panic(fmt.Sprintf("process %d: unexpected submit error: %v", p.id, err))
		}
		if q.IsRead() {
			p.state = ProcessState{Phase: ProcessBlocked}
		} else {
			p.state = ProcessState{Phase: ProcessCreating, Progress: 1}
		}
		return OutcomeSubmitted
	case ProcessBlocked:
		panic(fmt.Sprintf("process %d: cannot tick a blocked process", p.id))
	case ProcessProcessing:
		if p.state.Progress < p.processingTimeMs {
			p.state.Progress++
			return OutcomeProgressed
		}
		p.state = ProcessState{Phase: ProcessCreating, Progress: 1}
		return OutcomeProgressed
	default:
		panic(fmt.Sprintf("process %d: unhandled phase %q", p.id, p.state.Phase))
	}
}

// OnCompletion delivers the result of q. A completed read unblocks the
// process into ProcessingResult{1}; writes never blocked, so nothing changes.
func (p *WorkProcess) OnCompletion(q Query) {
	if q.Owner != p.id {
		panic(fmt.Sprintf("process %d: received completion for process %d", p.id, q.Owner))
	}
	if !q.IsRead() {
		return
	}
	if p.state.Phase != ProcessBlocked {
		panic(fmt.Sprintf("process %d: read completed while %s", p.id, p.state.Phase))
	}
	p.state = ProcessState{Phase: ProcessProcessing, Progress: 1}
}

// newQuery synthesizes the next request. Draw order is fixed (kind, then
// sector) so runs are reproducible from the process's rng.
func (p *WorkProcess) newQuery() Query {
	kind := QueryRead
	if !p.readOnly && p.rng.Intn(2) == 1 {
		kind = QueryWrite
	}
	var idx int
	switch p.style {
	case StyleSequential:
		idx = (p.lastBlock + 1) % p.file.NumBlocks()
	default:
		idx = p.rng.Intn(p.file.NumBlocks())
	}
	p.lastBlock = idx
	q := NewQuery(kind, p.file.Block(idx), p.id)
	logrus.Debugf("process %d created %s", p.id, q)
	return q
}

func (p *WorkProcess) String() string {
	return fmt.Sprintf("Process{id=%d, file=%s, readOnly=%t, style=%s}", p.id, p.file, p.readOnly, p.style)
}
