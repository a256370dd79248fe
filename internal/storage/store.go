// Package storage persists raw log bodies keyed by public identifier and
// enforces their retention window.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/logshare/backend/internal/logid"
	"github.com/logshare/backend/internal/models"
)

// DefaultRetention is how long a record survives without being read.
const DefaultRetention = 90 * 24 * time.Hour

// DefaultMaxAttempts bounds identifier generation retries on collision.
const DefaultMaxAttempts = 5

// Store defines the persistence contract for log records.
//
// Delete and SweepExpired share the same single-statement removal path of the
// backend, so a record is either fully visible or absent to concurrent readers.
type Store interface {
	// Exists reports whether id names a live record. A backend failure yields
	// false together with an error wrapping ErrUnavailable.
	Exists(ctx context.Context, id string) (bool, error)
	// Create validates body against the configured limits and persists it
	// under a freshly claimed identifier.
	Create(ctx context.Context, body []byte) (*models.LogRecord, error)
	// Read returns the record without touching LastAccessedAt.
	Read(ctx context.Context, id string) (*models.LogRecord, error)
	// Renew sets LastAccessedAt to now. Missing ids are a no-op.
	Renew(ctx context.Context, id string) error
	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	// SweepExpired removes every record unseen for longer than the retention window.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	// Close releases backend resources.
	Close() error
}

// Options are shared by every backend.
type Options struct {
	Limits      Limits
	Retention   time.Duration
	MaxAttempts int
	Now         func() time.Time
	NewID       func() (string, error)
}

func (o Options) withDefaults() Options {
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = logid.Generate
	}
	if o.Limits == (Limits{}) {
		o.Limits = DefaultLimits()
	}
	return o
}

// claim runs generate-then-insert until insert reports the id as newly taken.
// insert must be atomic with respect to other claims of the same id.
func claim(ctx context.Context, opts Options, insert func(id string) (bool, error)) (string, error) {
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id, err := opts.NewID()
		if err != nil {
			return "", &OpError{Op: "generate", Err: err}
		}
		ok, err := insert(id)
		if err != nil {
			return "", &OpError{Op: "create", ID: id, Err: err}
		}
		if ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, opts.MaxAttempts)
}
