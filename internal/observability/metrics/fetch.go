package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons and results use the labels of fetch.Reason: "ok" on success,
// otherwise private_network, scheme, timeout, http_status and so on.
var (
	URLGateDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "url_gate_decisions_total",
		Help: "URL safety gate decisions by reason",
	}, []string{"reason"})

	URLFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "url_fetch_total",
		Help: "Outbound URL fetches by result",
	}, []string{"result"})

	URLFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "url_fetch_duration_seconds",
		Help:    "Outbound URL fetch latency, redirects included",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
	})

	// strategy: feed, readability, paragraphs, document or none.
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "text_extractions_total",
		Help: "Text extractions by winning strategy",
	}, []string{"strategy"})
)

func RecordGateDecision(reason string) { URLGateDecisionsTotal.WithLabelValues(reason).Inc() }

func RecordFetch(result string, d time.Duration) {
	URLFetchTotal.WithLabelValues(result).Inc()
	URLFetchDuration.Observe(d.Seconds())
}

func RecordExtraction(strategy string) { ExtractionsTotal.WithLabelValues(strategy).Inc() }
