// Defines the Query struct that models a single disk I/O request in the simulation.
// A Query is created by a WorkProcess, queued by a SelectionPolicy and executed by the DriveController.

package sim

import "fmt"

// SectorsPerTrack is the number of sectors on every track of the simulated drive.
// Sector numbers are global: sector s lives on track s / SectorsPerTrack.
const SectorsPerTrack = 100

// QueryKind distinguishes reads from writes.
type QueryKind string

const (
	QueryRead  QueryKind = "read"
	QueryWrite QueryKind = "write"
)

// ProcessID is the handle of a WorkProcess: its index in the scheduler's process list.
type ProcessID int

// Query is an immutable pending I/O request.
// Two queries are equal iff kind, sector and owner are equal, so Query is
// used by value and compared with ==.
type Query struct {
	Kind   QueryKind // read or write
	Sector int       // absolute sector number
	Owner  ProcessID // process that issued the query
}

// NewQuery creates a Query. Panics on a negative sector.
func NewQuery(kind QueryKind, sector int, owner ProcessID) Query {
	if sector < 0 {
		panic(fmt.Sprintf("NewQuery: sector must be >= 0, got %d", sector))
	}
	return Query{Kind: kind, Sector: sector, Owner: owner}
}

// Track returns the track holding the query's sector.
func (q Query) Track() int {
	return q.Sector / SectorsPerTrack
}

// IsRead reports whether the query reads data (and therefore blocks its owner).
func (q Query) IsRead() bool {
	return q.Kind == QueryRead
}

func (q Query) String() string {
	return fmt.Sprintf("Query: (Kind: %s, Sector: %d, Track: %d, Owner: %d)", q.Kind, q.Sector, q.Track(), q.Owner)
}
