package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/logshare/backend/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS logs (
	id               VARCHAR PRIMARY KEY,
	body             BLOB    NOT NULL,
	created_at       BIGINT  NOT NULL,
	last_accessed_at BIGINT  NOT NULL
)`

// SQLStore implements Store on a database/sql handle. Timestamps are stored as
// unix milliseconds so both embedded drivers round-trip them identically.
type SQLStore struct {
	db     *sql.DB
	driver string
	opts   Options
}

func newSQLStore(ctx context.Context, db *sql.DB, driver string, opts Options, extra ...string) (*SQLStore, error) {
	for _, stmt := range append([]string{schema}, extra...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, &OpError{Op: "init " + driver, Err: err}
		}
	}
	return &SQLStore{db: db, driver: driver, opts: opts.withDefaults()}, nil
}

// Driver returns the name of the underlying SQL driver.
func (s *SQLStore) Driver() string {
	return s.driver
}

func (s *SQLStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM logs WHERE id = ?`, id).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, &OpError{Op: "exists", ID: id, Err: err}
	}
}

// Create relies on the primary key: a colliding insert affects zero rows and
// the next candidate id is tried.
func (s *SQLStore) Create(ctx context.Context, body []byte) (*models.LogRecord, error) {
	if err := s.opts.Limits.Check(body); err != nil {
		return nil, err
	}

	now := s.opts.Now()
	ms := now.UnixMilli()
	id, err := claim(ctx, s.opts, func(id string) (bool, error) {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO logs (id, body, created_at, last_accessed_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			id, body, ms, ms)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		return n == 1, nil
	})
	if err != nil {
		return nil, err
	}

	return &models.LogRecord{
		ID:             id,
		Body:           body,
		CreatedAt:      time.UnixMilli(ms),
		LastAccessedAt: time.UnixMilli(ms),
	}, nil
}

func (s *SQLStore) Read(ctx context.Context, id string) (*models.LogRecord, error) {
	var (
		rec              models.LogRecord
		created, touched int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, body, created_at, last_accessed_at FROM logs WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Body, &created, &touched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &OpError{Op: "read", ID: id, Err: err}
	}
	rec.CreatedAt = time.UnixMilli(created)
	rec.LastAccessedAt = time.UnixMilli(touched)
	return &rec, nil
}

func (s *SQLStore) Renew(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE logs SET last_accessed_at = ? WHERE id = ?`, s.opts.Now().UnixMilli(), id)
	if err != nil {
		return &OpError{Op: "renew", ID: id, Err: err}
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id)
	if err != nil {
		return false, &OpError{Op: "delete", ID: id, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &OpError{Op: "delete", ID: id, Err: err}
	}
	return n > 0, nil
}

func (s *SQLStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.opts.Retention).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE last_accessed_at < ?`, cutoff)
	if err != nil {
		return 0, &OpError{Op: "sweep", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &OpError{Op: "sweep", Err: err}
	}
	return int(n), nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
