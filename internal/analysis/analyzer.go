// Package analysis runs the signature library over parsed log entries and
// produces the diagnostic report shown next to a log.
package analysis

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/logshare/backend/internal/logging"
	"github.com/logshare/backend/internal/metrics"
	"github.com/logshare/backend/internal/models"
)

// Analyzer evaluates a Library. It is safe for concurrent use.
type Analyzer struct {
	library *Library
	logger  *zap.Logger
}

// NewAnalyzer returns an Analyzer over library, or the built-in library when nil.
func NewAnalyzer(library *Library, logger *zap.Logger) *Analyzer {
	if library == nil {
		library = DefaultLibrary()
	}
	return &Analyzer{
		library: library,
		logger:  logging.OrNop(logger).Named("analysis"),
	}
}

// Analyze never fails. A rule that panics is logged, counted and treated as
// not matching; the remaining rules still run.
func (a *Analyzer) Analyze(entries models.Entries) *models.AnalysisReport {
	start := time.Now()
	defer func() { metrics.ObserveAnalysis(time.Since(start)) }()

	report := &models.AnalysisReport{
		Title:       DefaultTitle,
		Information: []models.Information{},
		Problems:    []models.Problem{},
	}
	if len(entries) == 0 {
		return report
	}

	for _, d := range a.library.Detectors {
		detected := false
		a.guard("detector:"+d.Title, func() {
			if _, ok := d.Match.Match(entries); ok {
				report.Title = d.Title
				detected = true
			}
		})
		if detected {
			break
		}
	}

	for _, rule := range a.library.Information {
		a.guard("information:"+rule.Label, func() {
			if m, ok := rule.Match.Match(entries); ok {
				report.Information = append(report.Information, rule.information(m))
			}
		})
	}

	// Each signature is evaluated once against the whole log, so it can
	// contribute at most one problem.
	for _, sig := range a.library.Signatures {
		a.guard(sig.ID, func() {
			if m, ok := sig.Match.Match(entries); ok {
				report.Problems = append(report.Problems, sig.problem(m))
			}
		})
	}

	return report
}

func (a *Analyzer) guard(rule string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("analysis rule failed",
				zap.String("signature", rule),
				zap.String("panic", fmt.Sprint(r)),
			)
			metrics.ObserveRuleFault(rule)
		}
	}()
	fn()
}
