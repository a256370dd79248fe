// Package expiry runs the retention sweep on a schedule.
package expiry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
	"go.uber.org/zap"

	"github.com/logshare/backend/internal/config"
	"github.com/logshare/backend/internal/logging"
	"github.com/logshare/backend/internal/metrics"
)

// Target removes expired logs and reports how many were removed.
type Target interface {
	Sweep(ctx context.Context) (int, error)
}

// Sweeper invokes Target.Sweep on a fixed interval. Runs never overlap: a
// tick that fires while a sweep is still in progress is skipped.
type Sweeper struct {
	target   Target
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu sync.Mutex
}

// New creates a Sweeper from the expiry config section.
func New(target Target, cfg config.ExpiryConfig, logger *zap.Logger) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		target:   target,
		interval: interval,
		timeout:  cfg.Timeout,
		logger:   logging.OrNop(logger).Named("expiry"),
	}
}

// RunOnce performs a single sweep and returns the number of removed logs.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) (int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	start := time.Now()
	removed, err := s.target.Sweep(ctx)
	metrics.ObserveSweep(removed, err)

	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.Int("removed", removed),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		s.logger.Error("expiry sweep failed", append(fields, zap.Error(err))...)
		return removed, err
	}
	s.logger.Info("expiry sweep finished", fields...)
	return removed, nil
}

// Run sweeps once immediately, then on every interval until ctx is done. It
// returns after any in-flight sweep has finished.
func (s *Sweeper) Run(ctx context.Context) error {
	s.tick(ctx)

	c := cron.New()
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() { s.tick(ctx) }))
	c.Start()
	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	<-ctx.Done()
	c.Stop()

	// wait for a sweep that is still running
	s.mu.Lock()
	s.mu.Unlock()
	s.logger.Info("expiry sweeper stopped")
	return nil
}

func (s *Sweeper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !s.mu.TryLock() {
		s.logger.Warn("previous expiry sweep still running, skipping")
		return
	}
	defer s.mu.Unlock()
	s.sweep(ctx)
}
