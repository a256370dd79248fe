// Package service composes storage, parsing and analysis into the operations
// exposed to clients.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/logshare/backend/internal/analysis"
	"github.com/logshare/backend/internal/logging"
	"github.com/logshare/backend/internal/logid"
	"github.com/logshare/backend/internal/metrics"
	"github.com/logshare/backend/internal/models"
	"github.com/logshare/backend/internal/parser"
	"github.com/logshare/backend/internal/storage"
)

// LogService is the facade the API layer calls. It holds no per-request state.
type LogService struct {
	store    storage.Store
	analyzer *analysis.Analyzer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a LogService.
type Option func(*LogService)

// WithAnalyzer replaces the analyzer built on the default library.
func WithAnalyzer(a *analysis.Analyzer) Option {
	return func(s *LogService) { s.analyzer = a }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *LogService) { s.logger = l }
}

// WithClock sets the time source used for sweeps.
func WithClock(now func() time.Time) Option {
	return func(s *LogService) { s.now = now }
}

// New creates a LogService on top of store.
func New(store storage.Store, opts ...Option) *LogService {
	s := &LogService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger).Named("service")
	if s.analyzer == nil {
		s.analyzer = analysis.NewAnalyzer(nil, s.logger)
	}
	return s
}

// Submit stores body and returns the new record.
func (s *LogService) Submit(ctx context.Context, body []byte) (*models.LogRecord, error) {
	rec, err := s.store.Create(ctx, body)
	if err != nil {
		switch KindOf(err) {
		case KindValidation:
			metrics.ObserveSubmission(metrics.OutcomeRejected)
			s.logger.Debug("submission rejected", zap.Int("size", len(body)), zap.Error(err))
		default:
			metrics.ObserveSubmission(metrics.OutcomeError)
			s.logger.Error("submission failed", zap.Int("size", len(body)), zap.Error(err))
		}
		return nil, err
	}

	metrics.ObserveSubmission(metrics.OutcomeCreated)
	s.logger.Info("log created",
		zap.String("id", rec.ID),
		zap.Int("size", rec.Size()),
		zap.Int("lines", storage.CountLines(rec.Body)),
	)
	return rec, nil
}

// FetchRaw returns the stored bytes and renews the record.
func (s *LogService) FetchRaw(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.read(ctx, id, metrics.ViewRaw)
	if err != nil {
		return nil, err
	}
	return rec.Body, nil
}

// FetchAnalyzed reads, renews, parses and analyzes the record, in that order.
func (s *LogService) FetchAnalyzed(ctx context.Context, id string) (*models.AnalyzedLog, error) {
	rec, err := s.read(ctx, id, metrics.ViewAnalyzed)
	if err != nil {
		return nil, err
	}

	entries := parser.Parse(rec.Body)
	return &models.AnalyzedLog{
		Record:  rec,
		Entries: entries,
		Report:  s.analyzer.Analyze(entries),
	}, nil
}

// Summarize renders the analyzed view of id as markdown.
func (s *LogService) Summarize(ctx context.Context, id string) (string, error) {
	view, err := s.FetchAnalyzed(ctx, id)
	if err != nil {
		return "", err
	}
	return analysis.Summary(view.Entries, view.Report), nil
}

// read validates id, reads the record and renews it. A failed renewal is
// logged but does not fail the read.
func (s *LogService) read(ctx context.Context, id, view string) (*models.LogRecord, error) {
	id, err := logid.Validate(id)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Read(ctx, id)
	if err != nil {
		metrics.ObserveFetch(view, false)
		if KindOf(err) != KindNotFound {
			s.logger.Error("read failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	metrics.ObserveFetch(view, true)

	if err := s.store.Renew(ctx, id); err != nil {
		s.logger.Warn("renew failed", zap.String("id", id), zap.Error(err))
	}
	return rec, nil
}

// Remove deletes id and reports whether it existed.
func (s *LogService) Remove(ctx context.Context, id string) (bool, error) {
	id, err := logid.Validate(id)
	if err != nil {
		return false, err
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	if ok {
		s.logger.Info("log deleted", zap.String("id", id))
	}
	return ok, nil
}

// Exists reports whether id names a live record. It never renews. Malformed
// ids are reported as absent; the error is only set when storage failed.
func (s *LogService) Exists(ctx context.Context, id string) (bool, error) {
	id, err := logid.Validate(id)
	if err != nil {
		return false, nil
	}
	ok, err := s.store.Exists(ctx, id)
	if err != nil {
		s.logger.Warn("exists check failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// Sweep removes expired records as of now.
func (s *LogService) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.SweepExpired(ctx, s.now())
	if err != nil {
		return removed, fmt.Errorf("sweeping expired logs: %w", err)
	}
	return removed, nil
}
