// Package recording persists simulation runs into SQLite databases.
//
// A Recorder is a sim.Observer. Rows are buffered in memory and written in a
// single transaction whenever batchSize rows are pending, and on Close.
//
// Tables:
//   - runs(run_id, policy, seed, processes, queue_capacity, max_requests_per_second)
//   - processes(run_id, process, class, size, read_only, style, first_sector, last_sector)
//   - completions(run_id, clock, process, kind, sector, track, elapsed_ms)
//   - seconds(run_id, second, budget)
//   - submissions(run_id, second, process, allotment, submitted)
//
// submissions rows describe a finished second and are written when the next
// second starts; the last, unfinished second of a run has none.
package recording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	// Registers the pure-Go "sqlite" database/sql driver.
	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/disksched-sim/disksched-sim/sim"
	"github.com/disksched-sim/disksched-sim/sim/trace"
)

const defaultBatchSize = 10_000

var schema = []string{
	`CREATE TABLE runs (
	run_id TEXT PRIMARY KEY,
	policy TEXT,
	seed INTEGER,
	processes INTEGER,
	queue_capacity INTEGER,
	max_requests_per_second INTEGER
);`,
	`CREATE TABLE processes (
	run_id TEXT,
	process INTEGER,
	class TEXT,
	size INTEGER,
	read_only INTEGER,
	style TEXT,
	first_sector INTEGER,
	last_sector INTEGER
);`,
	`CREATE TABLE completions (
	run_id TEXT,
	clock INTEGER,
	process INTEGER,
	kind TEXT,
	sector INTEGER,
	track INTEGER,
	elapsed_ms INTEGER
);`,
	`CREATE TABLE seconds (
	run_id TEXT,
	second INTEGER,
	budget INTEGER
);`,
	`CREATE TABLE submissions (
	run_id TEXT,
	second INTEGER,
	process INTEGER,
	allotment INTEGER,
	submitted INTEGER
);`,
}

type submissionRow struct {
	second    int64
	process   int
	allotment int
	submitted int
}

// Recorder writes one run into a SQLite database.
type Recorder struct {
	db        *sql.DB
	path      string
	runID     string
	batchSize int

	completions []trace.CompletionRecord
	seconds     []trace.SecondRecord
	submissions []submissionRow
	pending     int

	prevAllotment []int
	err           error // first write error; later writes are skipped
}

// DefaultPath returns a fresh database file name of the form disksched_<xid>.sqlite3.
func DefaultPath() string {
	return "disksched_" + xid.New().String() + ".sqlite3"
}

// New creates the database at path and its tables. An empty path uses
// DefaultPath(). An existing file is never overwritten.
func New(path string) (*Recorder, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables in %s: %w", path, err)
		}
	}
	logrus.Infof("Database created for recording: %s", path)

	return &Recorder{
		db:        db,
		path:      path,
		runID:     xid.New().String(),
		batchSize: defaultBatchSize,
	}, nil
}

// Path returns the database file name.
func (r *Recorder) Path() string { return r.path }

// RunID returns the identifier stored in the run_id column of every row.
func (r *Recorder) RunID() string { return r.runID }

// RecordRun writes the runs row for cfg.
func (r *Recorder) RecordRun(cfg sim.SimConfig) error {
	if r.err != nil {
		return r.err
	}
	_, err := r.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?)`,
		r.runID, cfg.Policy.Name, cfg.Run.Seed, cfg.Process.Count,
		cfg.Policy.QueueCapacity, cfg.Scheduler.MaxRequestsPerSecond)
	if err != nil {
		r.err = fmt.Errorf("recording run: %w", err)
	}
	return r.err
}

// RecordProcesses writes one processes row per process.
func (r *Recorder) RecordProcesses(procs []*sim.WorkProcess) error {
	if r.err != nil {
		return r.err
	}
	r.err = r.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO processes VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range procs {
			f := p.File()
			_, err := stmt.Exec(r.runID, int(p.ID()), string(f.Class), f.Size, p.ReadOnly(),
				string(p.Style()), f.Block(0), f.Block(f.NumBlocks()-1))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if r.err != nil {
		r.err = fmt.Errorf("recording processes: %w", r.err)
	}
	return r.err
}

// RecordCompletion buffers a completions row.
func (r *Recorder) RecordCompletion(rec trace.CompletionRecord) {
	r.completions = append(r.completions, rec)
	r.added(1)
}

// RecordSecond buffers a seconds row, and submissions rows for the second that just ended.
func (r *Recorder) RecordSecond(rec trace.SecondRecord) {
	r.seconds = append(r.seconds, rec)
	n := 1
	for p, submitted := range rec.PrevSubmitted {
		allotment := -1
		if p < len(r.prevAllotment) {
			allotment = r.prevAllotment[p]
		}
		r.submissions = append(r.submissions, submissionRow{
			second:    rec.Second - 1,
			process:   p,
			allotment: allotment,
			submitted: submitted,
		})
		n++
	}
	r.prevAllotment = append(r.prevAllotment[:0], rec.Allotment...)
	r.added(n)
}

func (r *Recorder) added(n int) {
	r.pending += n
	if r.pending >= r.batchSize {
		if err := r.Flush(); err != nil {
			logrus.Errorf("recording to %s: %v", r.path, err)
		}
	}
}

// Flush writes all buffered rows in one transaction.
func (r *Recorder) Flush() error {
	if r.err != nil {
		return r.err
	}
	if r.pending == 0 {
		return nil
	}
	err := r.inTx(func(tx *sql.Tx) error {
		if err := r.insertCompletions(tx); err != nil {
			return err
		}
		if err := r.insertSeconds(tx); err != nil {
			return err
		}
		return r.insertSubmissions(tx)
	})
	if err != nil {
		r.err = fmt.Errorf("flushing records: %w", err)
		return r.err
	}
	r.completions = r.completions[:0]
	r.seconds = r.seconds[:0]
	r.submissions = r.submissions[:0]
	r.pending = 0
	return nil
}

// Close flushes pending rows and closes the database.
func (r *Recorder) Close() error {
	flushErr := r.Flush()
	closeErr := r.db.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", r.path, closeErr)
	}
	return nil
}

func (r *Recorder) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Recorder) insertCompletions(tx *sql.Tx) error {
	if len(r.completions) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO completions VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range r.completions {
		if _, err := stmt.Exec(r.runID, c.Clock, c.Process, c.Kind, c.Sector, c.Track, c.ElapsedMs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) insertSeconds(tx *sql.Tx) error {
	if len(r.seconds) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO seconds VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range r.seconds {
		if _, err := stmt.Exec(r.runID, s.Second, s.Budget); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) insertSubmissions(tx *sql.Tx) error {
	if len(r.submissions) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO submissions VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range r.submissions {
		if _, err := stmt.Exec(r.runID, s.second, s.process, s.allotment, s.submitted); err != nil {
			return err
		}
	}
	return nil
}
