// Package store archives completed solves in SQLite so past runs can be
// listed and replayed. The driver is pure Go, so the archive works anywhere
// the binary does, including ":memory:" for tests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hooplab/rosteropt/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS solves (
    id             TEXT PRIMARY KEY,
    created_at     TEXT    NOT NULL,
    status         TEXT    NOT NULL,
    objective      REAL    NOT NULL,
    start_gameday  INTEGER NOT NULL,
    end_gameday    INTEGER NOT NULL,
    transfers_used INTEGER NOT NULL,
    elapsed_ms     INTEGER NOT NULL,
    solution       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_solves_created ON solves(created_at DESC);
`

// timeFormat is RFC3339 with fixed-width nanoseconds. RFC3339Nano trims
// trailing zeros, which would break the lexicographic ordering the
// created_at index relies on.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Archive persists solve results. Safe for concurrent use; SQLite is
// single-writer so the pool is capped at one connection.
type Archive struct {
	db *sql.DB
}

// Entry is one archived solve without the full solution payload.
type Entry struct {
	SolveID       string
	CreatedAt     time.Time
	Status        types.SolveStatus
	Objective     float64
	StartGameday  int
	EndGameday    int
	TransfersUsed int
	ElapsedMS     int64
}

// Open opens (or creates) the archive at the given path and applies the
// schema. Use ":memory:" for an ephemeral archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.Open: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: apply schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Save archives one solve. Timestamps are stored as UTC text in timeFormat
// so chronological and lexicographic order agree.
func (a *Archive) Save(ctx context.Context, cfg types.Config, sol *types.Solution) error {
	payload, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("store.Save: encode solution: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO solves
			(id, created_at, status, objective, start_gameday, end_gameday, transfers_used, elapsed_ms, solution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sol.Meta.SolveID,
		time.Now().UTC().Format(timeFormat),
		string(sol.Status),
		sol.TotalPoints,
		cfg.StartGameday,
		cfg.EndGameday,
		sol.TransfersUsed,
		sol.Meta.ElapsedMS,
		string(payload),
	); err != nil {
		return fmt.Errorf("store.Save: insert %s: %w", sol.Meta.SolveID, err)
	}
	return nil
}

// Recent lists the n most recently archived solves, newest first.
func (a *Archive) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, status, objective, start_gameday, end_gameday, transfers_used, elapsed_ms
		FROM solves
		ORDER BY created_at DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("store.Recent: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, status string
		if err := rows.Scan(
			&e.SolveID,
			&created,
			&status,
			&e.Objective,
			&e.StartGameday,
			&e.EndGameday,
			&e.TransfersUsed,
			&e.ElapsedMS,
		); err != nil {
			return nil, fmt.Errorf("store.Recent: scan row: %w", err)
		}
		e.CreatedAt, err = time.Parse(timeFormat, created)
		if err != nil {
			return nil, fmt.Errorf("store.Recent: parse created_at %q: %w", created, err)
		}
		e.Status = types.SolveStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get loads one archived solution by solve id.
func (a *Archive) Get(ctx context.Context, solveID string) (*types.Solution, error) {
	var payload string
	err := a.db.QueryRowContext(ctx,
		`SELECT solution FROM solves WHERE id = ?`, solveID,
	).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("store.Get: solve %s: %w", solveID, err)
	}

	var sol types.Solution
	if err := json.Unmarshal([]byte(payload), &sol); err != nil {
		return nil, fmt.Errorf("store.Get: decode solution %s: %w", solveID, err)
	}
	return &sol, nil
}

// Prune deletes archived solves older than keepFor and reports how many rows
// went away.
func (a *Archive) Prune(ctx context.Context, keepFor time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-keepFor).Format(timeFormat)
	res, err := a.db.ExecContext(ctx, `DELETE FROM solves WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store.Prune: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store.Prune: rows affected: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
