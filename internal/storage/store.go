package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dyike/MoneyScope/pkg/sqlite"
)

const (
	StatusDone  = "done"
	StatusError = "error"
)

// RunRecord is one finished or failed analysis run. The table is an audit log
// of produced reports; nothing reads it back into a run.
type RunRecord struct {
	ID         string
	Pair       string
	Status     string
	Error      string
	Rate       float64
	ReportPath string
	CreatedAt  time.Time
}

type Store struct {
	db *sql.DB
}

func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initTable(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pair TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		rate REAL NOT NULL DEFAULT 0,
		report_path TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// Record stores a run. Only done and error runs are accepted.
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return errors.New("run id is required")
	}
	if rec.Status != StatusDone && rec.Status != StatusError {
		return fmt.Errorf("unexpected run status %q", rec.Status)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, pair, status, error, rate, report_path, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Pair, rec.Status, rec.Error, rec.Rate, rec.ReportPath, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pair, status, error, rate, report_path, created_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.Pair, &rec.Status, &rec.Error, &rec.Rate, &rec.ReportPath, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
