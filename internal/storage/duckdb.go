package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb"
)

// DuckDBConfig tunes the embedded DuckDB engine.
type DuckDBConfig struct {
	Path        string
	MemoryLimit string
	Threads     int
}

// NewDuckDBStore opens (or creates) a DuckDB database file holding the logs table.
func NewDuckDBStore(ctx context.Context, cfg DuckDBConfig, opts Options) (*SQLStore, error) {
	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if cfg.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", cfg.MemoryLimit))
	}
	if cfg.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", cfg.Threads))
	}

	connector, err := duckdb.NewConnector(cfg.Path, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &OpError{Op: "open duckdb", Err: err}
	}

	db := sql.OpenDB(connector)
	// Concurrent writers to the same row abort with a transaction conflict.
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, "duckdb", opts)
}
