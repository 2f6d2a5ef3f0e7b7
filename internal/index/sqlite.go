package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"swiftsight/internal/errors"
	"swiftsight/internal/extract"
)

const driverName = "sqlite"

// SQLiteStore persists the global program index. A single prewarm ingests
// all build units; afterwards the store is read-only and safe for
// concurrent queries.
type SQLiteStore struct {
	path      string
	db        *sql.DB
	prewarmed atomic.Bool
}

func Open(path string) (*SQLiteStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("index path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("index path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts while prewarm ingests.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite index %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite index %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &SQLiteStore{path: cleanPath, db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS symbols (
  usr TEXT NOT NULL PRIMARY KEY,
  name TEXT NOT NULL,
  module TEXT NOT NULL,
  kind INTEGER NOT NULL,
  system INTEGER NOT NULL DEFAULT 0,
  batch_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_module ON symbols(module);
`)
	return err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Prewarm ingests every available build unit and unlocks queries. It blocks
// until ingestion finishes; callers must not query before it returns.
func (s *SQLiteStore) Prewarm(ctx context.Context, loader UnitLoader) error {
	hits, err := loader.LoadUnits(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "load build units")
	}

	batchID := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO symbols (usr, name, module, kind, system, batch_id)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(usr) DO UPDATE SET
  name = excluded.name,
  module = excluded.module,
  kind = excluded.kind,
  system = excluded.system,
  batch_id = excluded.batch_id
`)
	if err != nil {
		return fmt.Errorf("prepare ingest: %w", err)
	}
	defer stmt.Close()

	for _, h := range hits {
		usr := h.USR
		if usr == "" {
			usr = h.Module + "::" + h.Name
		}
		system := 0
		if h.System {
			system = 1
		}
		if _, err := stmt.ExecContext(ctx, usr, h.Name, h.Module, int(h.Kind), system, batchID); err != nil {
			return fmt.Errorf("ingest symbol %s: %w", h.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest: %w", err)
	}

	s.prewarmed.Store(true)
	return nil
}

func (s *SQLiteStore) SearchExact(ctx context.Context, name string) ([]Hit, error) {
	if !s.prewarmed.Load() {
		return nil, errors.New(errors.CodePrecondition, "index queried before prewarm")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT usr, name, module, kind, system FROM symbols WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", name, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var kind, system int
		if err := rows.Scan(&h.USR, &h.Name, &h.Module, &kind, &system); err != nil {
			return nil, err
		}
		h.Kind = extract.DefinitionKind(kind)
		h.System = system != 0
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
