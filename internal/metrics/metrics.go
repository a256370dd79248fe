package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "logshare"

const (
	// OutcomeCreated labels submissions that produced a record.
	OutcomeCreated = "created"
	// OutcomeRejected labels submissions refused for size, line count or emptiness.
	OutcomeRejected = "rejected"
	// OutcomeError labels submissions that failed in the storage layer.
	OutcomeError = "error"
)

const (
	ViewRaw      = "raw"
	ViewAnalyzed = "analyzed"
)

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of log submissions, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Total number of log fetches, partitioned by view and whether the log was found.",
		},
		[]string{"view", "found"},
	)

	sweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_logs_removed_total",
			Help:      "Total number of logs removed by the expiry sweep.",
		},
	)

	sweepFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_failures_total",
			Help:      "Total number of expiry sweeps that returned an error.",
		},
	)

	ruleFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_rule_faults_total",
			Help:      "Total number of analysis rules that panicked, partitioned by rule id.",
		},
		[]string{"signature"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_seconds",
			Help:      "Time spent analyzing one log in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)
)

// Register attaches logshare collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		submissionsTotal,
		fetchesTotal,
		sweptTotal,
		sweepFailuresTotal,
		ruleFaultsTotal,
		analysisDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSubmission counts one submission under the given outcome label.
func ObserveSubmission(outcome string) {
	switch outcome {
	case OutcomeCreated, OutcomeRejected:
	default:
		outcome = OutcomeError
	}
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch counts one raw or analyzed fetch.
func ObserveFetch(view string, found bool) {
	label := "false"
	if found {
		label = "true"
	}
	fetchesTotal.WithLabelValues(view, label).Inc()
}

// ObserveSweep records the result of one expiry sweep.
func ObserveSweep(removed int, err error) {
	if removed > 0 {
		sweptTotal.Add(float64(removed))
	}
	if err != nil {
		sweepFailuresTotal.Inc()
	}
}

// ObserveRuleFault counts a recovered panic in the named analysis rule.
func ObserveRuleFault(signature string) {
	ruleFaultsTotal.WithLabelValues(signature).Inc()
}

// ObserveAnalysis records how long one analysis took.
func ObserveAnalysis(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}
