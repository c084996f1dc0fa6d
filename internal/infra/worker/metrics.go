package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"literary-analysis/internal/pkg/config"
)

// Run outcomes recorded under worker_retention_runs_total.
const (
	runSuccess = "success"
	runFailure = "failure"
	runSkipped = "skipped"
)

// WorkerMetrics are the retention job's collectors plus the configuration
// fallback metrics. Deleted rows are counted by
// metrics.RetentionPurgedTotal.
type WorkerMetrics struct {
	*config.ConfigMetrics

	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewWorkerMetrics registers the worker collectors with reg. Pass
// prometheus.DefaultRegisterer in the binary and a fresh registry in tests.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith("worker", reg),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_retention_runs_total",
			Help: "Retention purge runs by outcome",
		}, []string{"status"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_retention_duration_seconds",
			Help:    "Retention purge duration, retries included",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300, 600},
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_retention_last_success_timestamp",
			Help: "Unix time of the last successful retention purge",
		}),
	}
}

// observeRun counts a run. Skipped runs have no duration.
func (m *WorkerMetrics) observeRun(status string, d time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	if status == runSkipped {
		return
	}
	m.duration.Observe(d.Seconds())
	if status == runSuccess {
		m.lastSuccess.SetToCurrentTime()
	}
}
