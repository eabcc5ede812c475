package sim

import (
	"errors"
	"fmt"
	"sort"
)

// ErrQueueFull is returned by SelectionPolicy.TryAdmit when the policy's
// capacity bound would be exceeded. The query is not queued; the submitter
// keeps it and retries later.
var ErrQueueFull = errors.New("request queue is full")

// SelectionPolicy admits pending queries and chooses the next one to execute.
// It is exclusively owned by the DriveController.
type SelectionPolicy interface {
	// TryAdmit queues q, or returns ErrQueueFull leaving the policy unchanged.
	TryAdmit(q Query) error
	// Select removes and returns the next query to execute given the head position.
	// Returns false if nothing is pending.
	Select(position int) (Query, bool)
	// Len returns the number of pending queries.
	Len() int
	// Name returns the policy's canonical name.
	Name() string
}

// Policy names accepted by NewSelectionPolicy.
const (
	PolicyFCFS  = "fcfs"
	PolicySSTF  = "sstf"
	PolicyFLOOK = "flook"
)

// ValidPolicies is the set of recognized selection policy names.
// Shared by SimConfig.Validate() and NewSelectionPolicy() to avoid duplication.
var ValidPolicies = map[string]bool{"": true, PolicyFCFS: true, PolicySSTF: true, PolicyFLOOK: true}

// IsValidPolicy returns true if name is a recognized selection policy.
func IsValidPolicy(name string) bool {
	return ValidPolicies[name]
}

// PolicyNames returns the non-empty policy names in sorted order.
func PolicyNames() []string {
	names := make([]string, 0, len(ValidPolicies))
	for name := range ValidPolicies {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NewSelectionPolicy creates a selection policy by name with the given capacity.
// An empty name defaults to FCFS (for CLI flag default compatibility).
// Panics on unrecognized names or a negative capacity.
func NewSelectionPolicy(name string, capacity int) SelectionPolicy {
	if !IsValidPolicy(name) {
		panic(fmt.Sprintf("unknown selection policy %q", name))
	}
	if capacity < 0 {
		panic(fmt.Sprintf("selection policy capacity must be >= 0, got %d", capacity))
	}
	switch name {
	case "", PolicyFCFS:
		return NewFCFS(capacity)
	case PolicySSTF:
		return NewSSTF(capacity)
	case PolicyFLOOK:
		return NewFLOOK(capacity)
	default:
		panic(fmt.Sprintf("unhandled selection policy %q", name))
	}
}

// FCFS serves queries strictly in admission order.
type FCFS struct {
	queue *QueryQueue
}

// NewFCFS creates an FCFS policy holding at most capacity queries.
func NewFCFS(capacity int) *FCFS {
	return &FCFS{queue: NewQueryQueue(capacity)}
}

func (f *FCFS) TryAdmit(q Query) error { return f.queue.TryEnqueue(q) }

func (f *FCFS) Select(_ int) (Query, bool) { return f.queue.DequeueFront() }

func (f *FCFS) Len() int { return f.queue.Len() }

func (f *FCFS) Name() string { return PolicyFCFS }

// SSTF serves the query whose track is closest to the head.
// Ties: lowest track first, then earliest admission.
// Warning: SSTF can starve far tracks under sustained load.
type SSTF struct {
	queue *QueryQueue
}

// NewSSTF creates a shortest-seek-first policy holding at most capacity queries.
func NewSSTF(capacity int) *SSTF {
	return &SSTF{queue: NewQueryQueue(capacity)}
}

func (s *SSTF) TryAdmit(q Query) error { return s.queue.TryEnqueue(q) }

func (s *SSTF) Select(position int) (Query, bool) {
	best := -1
	for i, q := range s.queue.Items() {
		if best < 0 {
			best = i
			continue
		}
		cur := s.queue.Items()[best]
		d, bd := absInt(q.Track()-position), absInt(cur.Track()-position)
		// strict comparisons keep the earlier admission on full ties
		if d < bd || (d == bd && q.Track() < cur.Track()) {
			best = i
		}
	}
	if best < 0 {
		return Query{}, false
	}
	return s.queue.RemoveAt(best), true
}

func (s *SSTF) Len() int { return s.queue.Len() }

func (s *SSTF) Name() string { return PolicySSTF }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
