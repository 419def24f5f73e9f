// Package store manages SQLite persistence for simulation runs.
//
// Trajectories are append-heavy and read back whole, so the layout is a
// runs table for metadata plus a points table keyed by (run_id, seq). WAL
// mode lets a serve session write while readers list runs.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daniacca/nextreaction/internal/nrm"

	_ "modernc.org/sqlite"
)

// Store manages all SQLite operations with WAL mode for concurrent access.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		model      TEXT NOT NULL,
		seed       INTEGER NOT NULL,
		jumps      INTEGER NOT NULL DEFAULT 0,
		final_time REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS points (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id  TEXT NOT NULL REFERENCES runs(id),
		seq     INTEGER NOT NULL,
		t       REAL NOT NULL,
		channel INTEGER NOT NULL,
		state   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_points_run ON points(run_id, seq);
	CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveTrajectory persists a run and all of its saved points in one
// transaction.
func (s *Store) SaveTrajectory(tr *nrm.Trajectory) error {
	return retryOnContention(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(
			`INSERT INTO runs (id, model, seed, jumps, final_time, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			tr.RunID, tr.Model, tr.Seed, tr.Jumps, tr.FinalTime, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO points (run_id, seq, t, channel, state) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare points: %w", err)
		}
		defer stmt.Close()

		for seq, pt := range tr.Points {
			state, err := json.Marshal(pt.State)
			if err != nil {
				return fmt.Errorf("encode state: %w", err)
			}
			if _, err := stmt.Exec(tr.RunID, seq, pt.Time, pt.Channel, string(state)); err != nil {
				return fmt.Errorf("insert point %d: %w", seq, err)
			}
		}
		return tx.Commit()
	})
}

// GetRun retrieves run metadata by id.
func (s *Store) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, model, seed, jumps, final_time, created_at FROM runs WHERE id = ?`, id)
	var r RunRecord
	if err := row.Scan(&r.ID, &r.Model, &r.Seed, &r.Jumps, &r.FinalTime, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, model, seed, jumps, final_time, created_at FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Model, &r.Seed, &r.Jumps, &r.FinalTime, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListJumps returns a run's saved points in sequence order.
func (s *Store) ListJumps(runID string) ([]JumpRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seq, t, channel, state FROM points WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer rows.Close()

	var out []JumpRecord
	for rows.Next() {
		var j JumpRecord
		var state string
		if err := rows.Scan(&j.RunID, &j.Seq, &j.Time, &j.Channel, &state); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		if err := json.Unmarshal([]byte(state), &j.State); err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its points.
func (s *Store) DeleteRun(id string) error {
	return retryOnContention(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM points WHERE run_id = ?`, id); err != nil {
			return fmt.Errorf("delete points: %w", err)
		}
		res, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("run %s not found", id)
		}
		return tx.Commit()
	})
}
