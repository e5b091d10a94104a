// Package sqlite provides the SQLite-backed sync store. The entire on-disk
// state is one file holding one table keyed by normalized user identifier.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultTimeout = 5 * time.Second

// schema is the complete persisted layout. The column set must stay
// compatible with existing stored data when migrating in place.
const schema = `
CREATE TABLE IF NOT EXISTS user_records (
    user_id     TEXT PRIMARY KEY,
    paris_data  TEXT,
    london_data TEXT,
    updated_at  TEXT NOT NULL
);
`

// Store wraps the single shared SQLite handle. It is initialized once at
// startup and closed on graceful shutdown; crash consistency between those
// points relies on the WAL.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, enables WAL journaling,
// and ensures the schema exists. Pragmas use the modernc _pragma(...) DSN
// form so they apply to every pooled connection; busy_timeout lets concurrent
// writers wait for the lock instead of failing with SQLITE_BUSY.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping verifies the handle is still usable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
