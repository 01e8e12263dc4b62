// Package recorder stores per-frame force readings in sqlite and
// saves simulation snapshots as compressed gobs.
package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	aero "github.com/esimov/ascii-aero/aero-solver"
)

const schema = `
CREATE TABLE IF NOT EXISTS forces (
	frame     INTEGER,
	shape     TEXT,
	angle     REAL,
	speed     REAL,
	density   REAL,
	particles INTEGER,
	drag      REAL,
	lift      REAL);
`

const insert = `INSERT INTO forces VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

const queryFrames = `
SELECT frame, shape, angle, speed, density, particles, drag, lift
FROM forces WHERE frame >= ? AND frame <= ? ORDER BY frame ASC;`

const querySummary = `
SELECT shape, COUNT(*), AVG(drag), AVG(lift)
FROM forces GROUP BY shape ORDER BY shape ASC;`

// Sample is one recorded row.
type Sample struct {
	Frame     int
	Shape     string
	Angle     float64
	Speed     float64
	Density   float64
	Particles int
	Drag      float64
	Lift      float64
}

// ShapeSummary aggregates the samples recorded for one shape.
type ShapeSummary struct {
	Shape   string
	Frames  int
	AvgDrag float64
	AvgLift float64
}

func (s ShapeSummary) String() string {
	return fmt.Sprintf("%-9s %6d frames  drag %+8.3f  lift %+8.3f", s.Shape, s.Frames, s.AvgDrag, s.AvgLift)
}

// Recorder writes samples from a single worker goroutine,
// since sqlite allows only one writer at a time.
type Recorder struct {
	db   *sql.DB
	ch   chan Sample
	wg   sync.WaitGroup
	once sync.Once

	mu  sync.Mutex
	err error
}

// Open opens (and creates if needed) the database in filename.
func Open(filename string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	stmt, err := db.Prepare(insert)
	if err != nil {
		db.Close()
		return nil, err
	}

	r := &Recorder{db: db, ch: make(chan Sample, 64)}
	r.wg.Add(1)
	go r.worker(stmt)
	return r, nil
}

// Record queues the force reading of f.
func (r *Recorder) Record(f *aero.Frame) {
	r.ch <- Sample{
		Frame:     f.Index,
		Shape:     f.Obstacle.Shape,
		Angle:     f.Obstacle.Angle,
		Speed:     f.Params.AirSpeed,
		Density:   f.Params.AirDensity,
		Particles: len(f.Particles),
		Drag:      f.Force.Drag,
		Lift:      f.Force.Lift,
	}
}

func (r *Recorder) worker(stmt *sql.Stmt) {
	defer r.wg.Done()
	defer stmt.Close()

	for s := range r.ch {
		_, err := stmt.Exec(s.Frame, s.Shape, s.Angle, s.Speed, s.Density, s.Particles, s.Drag, s.Lift)
		if err != nil {
			r.fail(fmt.Errorf("recording frame %d: %w", s.Frame, err))
		}
	}
}

func (r *Recorder) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		log.Printf("error: %v", err)
		r.err = err
	}
}

// Flush waits until every queued sample is written. Record must not be
// called afterwards.
func (r *Recorder) Flush() error {
	r.once.Do(func() {
		close(r.ch)
		r.wg.Wait()
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close flushes the pending samples and closes the database.
func (r *Recorder) Close() error {
	err := r.Flush()
	if cerr := r.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Frames returns the samples with frame index in [from, to].
func (r *Recorder) Frames(from, to int) ([]Sample, error) {
	rows, err := r.db.Query(queryFrames, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.Frame, &s.Shape, &s.Angle, &s.Speed, &s.Density, &s.Particles, &s.Drag, &s.Lift); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Summary averages the recorded forces per shape.
func (r *Recorder) Summary() ([]ShapeSummary, error) {
	rows, err := r.db.Query(querySummary)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShapeSummary
	for rows.Next() {
		var s ShapeSummary
		if err := rows.Scan(&s.Shape, &s.Frames, &s.AvgDrag, &s.AvgLift); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
