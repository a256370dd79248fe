package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteStore opens (or creates) a SQLite database at dsn.
func NewSQLiteStore(ctx context.Context, dsn string, opts Options) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &OpError{Op: "open sqlite", Err: err}
	}
	// Pragmas are per connection and ":memory:" is per connection too.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, &OpError{Op: "open sqlite", Err: fmt.Errorf("%s: %w", pragma, err)}
		}
	}

	return newSQLStore(ctx, db, "sqlite", opts,
		`CREATE INDEX IF NOT EXISTS idx_logs_last_accessed ON logs (last_accessed_at)`)
}
