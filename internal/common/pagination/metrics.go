package pagination

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a list request.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	listRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_list_requests_total",
			Help: "Analysis list requests by outcome and offset depth",
		},
		[]string{"outcome", "offset_range"},
	)

	listDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_list_duration_seconds",
			Help:    "Time to serve an analysis list page",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2},
		},
	)
)

// Observe records one list request. Only served pages contribute to the
// duration histogram.
func Observe(outcome string, p Params, d time.Duration) {
	listRequestsTotal.WithLabelValues(outcome, offsetRange(p.Offset)).Inc()
	if outcome == OutcomeOK {
		listDuration.Observe(d.Seconds())
	}
}

// offsetRange keeps the label cardinality fixed.
func offsetRange(offset int) string {
	switch {
	case offset <= 0:
		return "0"
	case offset <= 100:
		return "1-100"
	case offset <= 1000:
		return "101-1000"
	default:
		return "1000+"
	}
}
