// Package history persists one snapshot row per analysis run, so watch-mode
// sessions can show whether unresolved counts are trending down.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type Store struct {
	path string
	db   *sql.DB
}

// Snapshot summarizes one analysis run.
type Snapshot struct {
	RunID         string
	At            time.Time
	FileCount     int
	UsageCount    int
	ResolvedCount int
	UnknownCount  int
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT NOT NULL PRIMARY KEY,
  ts_utc TEXT NOT NULL,
  file_count INTEGER NOT NULL,
  usage_count INTEGER NOT NULL,
  resolved_count INTEGER NOT NULL,
  unknown_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts_utc);
`)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a snapshot and returns its run id.
func (s *Store) Record(ctx context.Context, snap Snapshot) (string, error) {
	if snap.RunID == "" {
		snap.RunID = uuid.NewString()
	}
	if snap.At.IsZero() {
		snap.At = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (run_id, ts_utc, file_count, usage_count, resolved_count, unknown_count)
VALUES (?, ?, ?, ?, ?, ?)`,
		snap.RunID,
		snap.At.UTC().Format(time.RFC3339),
		snap.FileCount,
		snap.UsageCount,
		snap.ResolvedCount,
		snap.UnknownCount,
	)
	if err != nil {
		return "", fmt.Errorf("record snapshot: %w", err)
	}
	return snap.RunID, nil
}

// Recent returns up to limit snapshots, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, ts_utc, file_count, usage_count, resolved_count, unknown_count
FROM runs ORDER BY ts_utc DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts string
		if err := rows.Scan(&snap.RunID, &ts, &snap.FileCount, &snap.UsageCount, &snap.ResolvedCount, &snap.UnknownCount); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			snap.At = parsed
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
