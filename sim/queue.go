// Implements the QueryQueue, the bounded buffer of pending queries shared by all selection policies.
// Queries are kept in admission order; policies pick from it by index.

package sim

import (
	"fmt"
	"strings"
)

// QueryQueue is a bounded, admission-ordered buffer of pending queries.
// Earlier positions were admitted earlier, so a left-to-right scan with a
// strict comparison resolves ties in favour of the earliest admission.
type QueryQueue struct {
	capacity int
	queue    []Query
}

// NewQueryQueue creates an empty queue holding at most capacity queries.
// Panics on a negative capacity.
func NewQueryQueue(capacity int) *QueryQueue {
	if capacity < 0 {
		panic(fmt.Sprintf("NewQueryQueue: capacity must be >= 0, got %d", capacity))
	}
	return &QueryQueue{capacity: capacity, queue: make([]Query, 0, capacity)}
}

// TryEnqueue appends q to the back of the queue.
// Returns ErrQueueFull without modifying the queue when it is at capacity.
func (qq *QueryQueue) TryEnqueue(q Query) error {
	if len(qq.queue) >= qq.capacity {
		return ErrQueueFull
	}
	qq.queue = append(qq.queue, q)
	return nil
}

// Len returns the number of pending queries.
func (qq *QueryQueue) Len() int {
	return len(qq.queue)
}

// Cap returns the queue's capacity bound.
func (qq *QueryQueue) Cap() int {
	return qq.capacity
}

// Items returns the queue contents in admission order.
// The returned slice is the queue's internal storage: callers MUST NOT modify it.
func (qq *QueryQueue) Items() []Query {
	return qq.queue
}

// RemoveAt removes and returns the query at index i, preserving the order of the rest.
func (qq *QueryQueue) RemoveAt(i int) Query {
	q := qq.queue[i]
	qq.queue = append(qq.queue[:i], qq.queue[i+1:]...)
	return q
}

// DequeueFront removes the oldest query. Returns false if the queue is empty.
func (qq *QueryQueue) DequeueFront() (Query, bool) {
	if len(qq.queue) == 0 {
		return Query{}, false
	}
	return qq.RemoveAt(0), true
}

func (qq *QueryQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, q := range qq.queue {
		sb.WriteString(fmt.Sprintf("%d@%d", q.Owner, q.Track()))
		if i < len(qq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
