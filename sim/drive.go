// Models the physical hard drive: one head that seeks track by track and
// then waits for the target sector to rotate under it.

package sim

import (
	"errors"
	"fmt"
)

// ErrIllegalDriveOperation is the panic value (wrapped) raised when an I/O is
// performed while the drive is not positioned and ready. It can only be
// triggered by a broken tick order and is never recovered by the simulator.
var ErrIllegalDriveOperation = errors.New("illegal drive operation")

// DrivePhase tags the variant held by a DriveState.
type DrivePhase string

const (
	DriveIdle     DrivePhase = "idle"
	DriveSeeking  DrivePhase = "seeking"
	DriveRotating DrivePhase = "rotating"
)

// DriveState is a tagged union over the drive's phases.
// Fields not listed for a phase are always zero, so states compare with ==:
//   - DriveIdle:     Position, Ready
//   - DriveSeeking:  Position, Target, Progress
//   - DriveRotating: Position, Progress
type DriveState struct {
	Phase    DrivePhase
	Position int
	Target   int
	Progress int
	Ready    bool
}

// IdleState returns Idle{position, ready}.
func IdleState(position int, ready bool) DriveState {
	return DriveState{Phase: DriveIdle, Position: position, Ready: ready}
}

// SeekingState returns Seeking{position, target, progress}.
func SeekingState(position, target, progress int) DriveState {
	return DriveState{Phase: DriveSeeking, Position: position, Target: target, Progress: progress}
}

// RotatingState returns Rotating{position, progress}.
func RotatingState(position, progress int) DriveState {
	return DriveState{Phase: DriveRotating, Position: position, Progress: progress}
}

func (s DriveState) String() string {
	switch s.Phase {
	case DriveIdle:
		return fmt.Sprintf("Idle{pos=%d, ready=%t}", s.Position, s.Ready)
	case DriveSeeking:
		return fmt.Sprintf("Seeking{pos=%d, target=%d, progress=%d}", s.Position, s.Target, s.Progress)
	case DriveRotating:
		return fmt.Sprintf("Rotating{pos=%d, progress=%d}", s.Position, s.Progress)
	default:
		return fmt.Sprintf("DriveState{phase=%q}", s.Phase)
	}
}

// Drive is the physical-layer state machine of the simulated hard drive.
type Drive struct {
	tracks              [][]bool // occupancy grid, informational only
	seekMsPerTrack      int
	rotationMs          int
	firstToOuterTrackMs int // carried for reporting; the seek model is uniform per track
	state               DriveState
}

// NewDrive creates a drive parked at track 0 in Idle{0, false}.
// The occupancy grid is copied; it must have at least one track.
// Panics on non-positive timing parameters.
func NewDrive(tracks [][]bool, seekMsPerTrack, rotationMs, firstToOuterTrackMs int) *Drive {
	if len(tracks) == 0 {
		panic("NewDrive: drive must have at least one track")
	}
	if seekMsPerTrack < 1 {
		panic(fmt.Sprintf("NewDrive: seekMsPerTrack must be >= 1, got %d", seekMsPerTrack))
	}
	if rotationMs < 1 {
		panic(fmt.Sprintf("NewDrive: rotationMs must be >= 1, got %d", rotationMs))
	}
	grid := make([][]bool, len(tracks))
	for i, track := range tracks {
		grid[i] = append([]bool(nil), track...)
	}
	return &Drive{
		tracks:              grid,
		seekMsPerTrack:      seekMsPerTrack,
		rotationMs:          rotationMs,
		firstToOuterTrackMs: firstToOuterTrackMs,
		state:               IdleState(0, false),
	}
}

// State returns the current drive state.
func (d *Drive) State() DriveState {
	return d.state
}

// Position returns the track under the head.
func (d *Drive) Position() int {
	return d.state.Position
}

// NumTracks returns the number of tracks on the drive.
func (d *Drive) NumTracks() int {
	return len(d.tracks)
}

// Occupied reports whether the given sector of the given track belongs to a file.
func (d *Drive) Occupied(track, sector int) bool {
	return d.tracks[track][sector]
}

// FirstToOuterTrackMs returns the full-stroke seek constant. Not used by the timing model.
func (d *Drive) FirstToOuterTrackMs() int {
	return d.firstToOuterTrackMs
}

// SeekTo commands the head toward target. Already on target: only the
// rotational wait remains.
func (d *Drive) SeekTo(target int) {
	if target < 0 || target >= len(d.tracks) {
		panic(fmt.Sprintf("SeekTo: track %d out of range [0, %d)", target, len(d.tracks)))
	}
	if d.state.Position == target {
		d.state = RotatingState(target, 1)
		return
	}
	d.state = SeekingState(d.state.Position, target, 1)
}

// Tick advances the drive by one millisecond.
func (d *Drive) Tick() {
	s := d.state
	switch s.Phase {
	case DriveIdle:
		if !s.Ready {
			d.state = RotatingState(s.Position, 1)
		}
	case DriveSeeking:
		if s.Position == s.Target {
			d.state = RotatingState(s.Position, 1)
			return
		}
		if s.Progress < d.seekMsPerTrack {
			d.state = SeekingState(s.Position, s.Target, s.Progress+1)
			return
		}
		next := s.Position + 1
		if s.Target < s.Position {
			next = s.Position - 1
		}
		d.state = SeekingState(next, s.Target, 1)
	case DriveRotating:
		progress := s.Progress + 1
		if progress >= d.rotationMs {
			d.state = IdleState(s.Position, true)
			return
		}
		d.state = RotatingState(s.Position, progress)
	default:
		panic(fmt.Sprintf("Drive.Tick: unhandled phase %q", s.Phase))
	}
}

// PerformIO transfers the sector under the head. Only legal in Idle{ready=true};
// any other state panics with ErrIllegalDriveOperation.
func (d *Drive) PerformIO() {
	if d.state.Phase != DriveIdle || !d.state.Ready {
		panic(fmt.Errorf("%w: cannot perform I/O in state %s", ErrIllegalDriveOperation, d.state))
	}
	d.state = IdleState(d.state.Position, false)
}
