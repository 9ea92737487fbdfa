// Package store persists per-tick metrics rows to SQLite so runs can be
// compared and re-plotted long after their CSV files are archived.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Jones-Shaun/platoon-sumo/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	scenario TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS metrics (
	run_id TEXT NOT NULL,
	step INTEGER NOT NULL,
	num_vehicles INTEGER NOT NULL,
	mean_gap DOUBLE NOT NULL,
	northbound_flow INTEGER NOT NULL,
	southbound_flow INTEGER NOT NULL,
	northbound_speed DOUBLE NOT NULL,
	southbound_speed DOUBLE NOT NULL,
	mean_speed DOUBLE NOT NULL,
	PRIMARY KEY (run_id, step),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Store wraps one metrics database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// RunSink records one run's rows. It satisfies sim.Sink.
type RunSink struct {
	store *Store
	RunID string
}

// BeginRun registers a new run for the named scenario and returns its sink.
func (s *Store) BeginRun(scenario string) (*RunSink, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (run_id, scenario, started_at) VALUES (?, ?, ?)",
		id, scenario, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("registering run: %w", err)
	}
	return &RunSink{store: s, RunID: id}, nil
}

func (r *RunSink) Append(row sim.MetricsRow) error {
	_, err := r.store.db.Exec(
		`INSERT INTO metrics (run_id, step, num_vehicles, mean_gap,
			northbound_flow, southbound_flow, northbound_speed, southbound_speed, mean_speed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, row.Step, row.VehicleCount, row.MeanGap,
		row.NorthboundFlow, row.SouthboundFlow,
		row.NorthboundSpeed, row.SouthboundSpeed, row.MeanSpeed,
	)
	return err
}

// Close is a no-op: the sink shares the store's connection, which outlives
// individual runs.
func (r *RunSink) Close() error { return nil }

// Rows returns one run's metrics ordered by step.
func (s *Store) Rows(runID string) ([]sim.MetricsRow, error) {
	rows, err := s.db.Query(
		`SELECT step, num_vehicles, mean_gap, northbound_flow, southbound_flow,
			northbound_speed, southbound_speed, mean_speed
		 FROM metrics WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []sim.MetricsRow
	for rows.Next() {
		var r sim.MetricsRow
		if err := rows.Scan(&r.Step, &r.VehicleCount, &r.MeanGap,
			&r.NorthboundFlow, &r.SouthboundFlow,
			&r.NorthboundSpeed, &r.SouthboundSpeed, &r.MeanSpeed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunInfo is one row of the runs table.
type RunInfo struct {
	RunID     string
	Scenario  string
	StartedAt time.Time
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query("SELECT run_id, scenario, started_at FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ sim.Sink = (*RunSink)(nil)
