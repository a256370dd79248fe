package storage

import (
	"context"
	"fmt"

	"github.com/logshare/backend/internal/config"
)

// OptionsFromConfig derives backend options from the storage section.
func OptionsFromConfig(cfg config.StorageConfig) Options {
	return Options{
		Limits: Limits{
			MaxBytes: cfg.MaxLength,
			MaxLines: cfg.MaxLines,
		},
		Retention: cfg.Retention,
	}
}

// Open builds the Store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.AppConfig) (Store, error) {
	opts := OptionsFromConfig(cfg.Storage)

	switch cfg.Storage.Driver {
	case config.DriverFile:
		return NewLocalStore(cfg.StoragePath(), opts)
	case config.DriverDuckDB:
		return NewDuckDBStore(ctx, DuckDBConfig{
			Path:        cfg.StoragePath(),
			MemoryLimit: cfg.Storage.DuckDBMemoryLimit,
			Threads:     cfg.Storage.DuckDBThreads,
		}, opts)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.StoragePath(), opts)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
