package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ControllerPhase tags the variant held by a ControllerState.
type ControllerPhase string

const (
	ControllerIdle      ControllerPhase = "idle"
	ControllerExecuting ControllerPhase = "executing"
)

// ControllerState is a tagged union: Idle, or Executing{Query, ElapsedMs}.
type ControllerState struct {
	Phase     ControllerPhase
	Query     Query // Executing only
	ElapsedMs int   // Executing only: ticks since the query was dispatched
}

// DriveController couples the selection policy to the drive and executes
// one query at a time.
type DriveController struct {
	drive  *Drive
	policy SelectionPolicy
	state  ControllerState
}

// NewDriveController creates an idle controller for drive, queueing through policy.
func NewDriveController(drive *Drive, policy SelectionPolicy) *DriveController {
	if drive == nil || policy == nil {
		panic("NewDriveController: drive and policy must not be nil")
	}
	return &DriveController{
		drive:  drive,
		policy: policy,
		state:  ControllerState{Phase: ControllerIdle},
	}
}

// Submit hands q to the selection policy. ErrQueueFull is returned unchanged;
// the query is never dropped silently.
func (c *DriveController) Submit(q Query) error {
	return c.policy.TryAdmit(q)
}

// State returns the controller's current state.
func (c *DriveController) State() ControllerState {
	return c.state
}

// Pending returns the number of queries waiting in the selection policy.
func (c *DriveController) Pending() int {
	return c.policy.Len()
}

// Policy returns the selection policy in use.
func (c *DriveController) Policy() SelectionPolicy {
	return c.policy
}

// Tick advances the controller by one millisecond. It must run after the
// scheduler and before the drive within a tick. When the executing query
// finishes, the completion is returned and the next query is dispatched in
// the same tick.
func (c *DriveController) Tick() (Completion, bool) {
	switch c.state.Phase {
	case ControllerIdle:
		c.dispatch()
		return Completion{}, false
	case ControllerExecuting:
		c.state.ElapsedMs++
		q := c.state.Query
		if c.drive.State() != IdleState(q.Track(), true) {
			return Completion{}, false
		}
		c.drive.PerformIO()
		done := Completion{Query: q, ElapsedMs: c.state.ElapsedMs}
		c.dispatch()
		return done, true
	default:
		panic(fmt.Sprintf("DriveController.Tick: unhandled phase %q", c.state.Phase))
	}
}

// dispatch pulls the next query from the policy and commands the drive.
func (c *DriveController) dispatch() {
	q, ok := c.policy.Select(c.drive.Position())
	if !ok {
		c.state = ControllerState{Phase: ControllerIdle}
		return
	}
	logrus.Debugf("dispatch %s from track %d", q, c.drive.Position())
	c.drive.SeekTo(q.Track())
	c.state = ControllerState{Phase: ControllerExecuting, Query: q}
}
