package sim

// LookDirection is the sweep direction of the LOOK elevator.
type LookDirection string

const (
	LookAscending  LookDirection = "ascending"
	LookDescending LookDirection = "descending"
)

// FLOOK is the two-buffer LOOK policy. The active buffer is drained with
// a LOOK sweep while new admissions go to the standby buffer, so a sweep in
// progress is never extended by new arrivals. When the active buffer is
// empty the roles swap. The sweep direction is kept across swaps.
//
// Ties between queries on the same track resolve to the earliest admission.
type FLOOK struct {
	buffers   [2]*QueryQueue
	active    int // index of the buffer being drained
	direction LookDirection
}

// NewFLOOK creates a two-buffer LOOK policy. Each buffer holds capacity/2 queries.
// Buffer 0 starts active and the sweep starts ascending.
func NewFLOOK(capacity int) *FLOOK {
	return &FLOOK{
		buffers:   [2]*QueryQueue{NewQueryQueue(capacity / 2), NewQueryQueue(capacity / 2)},
		active:    0,
		direction: LookAscending,
	}
}

// TryAdmit queues q into the standby buffer.
func (f *FLOOK) TryAdmit(q Query) error {
	return f.buffers[1-f.active].TryEnqueue(q)
}

// Select runs one LOOK step on the active buffer, swapping buffers first if it is drained.
func (f *FLOOK) Select(position int) (Query, bool) {
	if f.buffers[f.active].Len() == 0 {
		f.active = 1 - f.active
	}
	return f.look(position, f.buffers[f.active])
}

func (f *FLOOK) look(position int, buf *QueryQueue) (Query, bool) {
	if buf.Len() == 0 {
		return Query{}, false
	}
	items := buf.Items()
	switch f.direction {
	case LookAscending:
		// nearest track at or above the head
		pick := -1
		for i, q := range items {
			if q.Track() >= position && (pick < 0 || q.Track() < items[pick].Track()) {
				pick = i
			}
		}
		if pick >= 0 {
			return buf.RemoveAt(pick), true
		}
		// nothing ahead: reverse at the highest pending track
		pick = 0
		for i, q := range items {
			if q.Track() > items[pick].Track() {
				pick = i
			}
		}
		f.direction = LookDescending
		return buf.RemoveAt(pick), true
	case LookDescending:
		pick := -1
		for i, q := range items {
			if q.Track() <= position && (pick < 0 || q.Track() > items[pick].Track()) {
				pick = i
			}
		}
		if pick >= 0 {
			return buf.RemoveAt(pick), true
		}
		pick = 0
		for i, q := range items {
			if q.Track() < items[pick].Track() {
				pick = i
			}
		}
		f.direction = LookAscending
		return buf.RemoveAt(pick), true
	default:
		panic("FLOOK: unhandled direction " + string(f.direction))
	}
}

// Len returns the number of pending queries across both buffers.
func (f *FLOOK) Len() int {
	return f.buffers[0].Len() + f.buffers[1].Len()
}

func (f *FLOOK) Name() string { return PolicyFLOOK }

// Direction returns the current sweep direction.
func (f *FLOOK) Direction() LookDirection {
	return f.direction
}

// ActiveBuffer returns the index (0 or 1) of the buffer being drained.
func (f *FLOOK) ActiveBuffer() int {
	return f.active
}

// BufferLen returns the number of queries pending in buffer i.
func (f *FLOOK) BufferLen(i int) int {
	return f.buffers[i].Len()
}
