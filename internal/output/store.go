package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	input       TEXT NOT NULL,
	params      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS artifacts (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	name   TEXT NOT NULL,
	path   TEXT NOT NULL,
	kind   TEXT NOT NULL,
	bytes  INTEGER NOT NULL,
	PRIMARY KEY (run_id, name)
);
`

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store keeps a history of runs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (creating if needed) the run store at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Record saves a finished run and its artifacts in one transaction.
func (s *Store) Record(ctx context.Context, m *Manifest) error {
	params, err := json.Marshal(m.Params)
	if err != nil {
		return fmt.Errorf("marshalling params: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, command, input, params, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Command, m.Input, string(params), m.StartedAt.Format(timeLayout), m.Finished.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	for _, a := range m.Artifacts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO artifacts (run_id, name, path, kind, bytes) VALUES (?, ?, ?, ?, ?)`,
			m.RunID, a.Name, a.Path, a.Kind, a.Bytes)
		if err != nil {
			return fmt.Errorf("inserting artifact %s: %w", a.Name, err)
		}
	}
	return tx.Commit()
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID     string
	Command   string
	Input     string
	StartedAt time.Time
	Artifacts int
}

// Runs lists recorded runs, most recent first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.command, r.input, r.started_at, COUNT(a.name)
		FROM runs r LEFT JOIN artifacts a ON a.run_id = r.run_id
		GROUP BY r.run_id
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var started string
		if err := rows.Scan(&rs.RunID, &rs.Command, &rs.Input, &started, &rs.Artifacts); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(timeLayout, started)
		out = append(out, rs)
	}
	return out, rows.Err()
}
