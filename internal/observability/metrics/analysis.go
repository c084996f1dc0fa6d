package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analyses_total",
		Help: "Analyses stored in the database",
	})

	// source_type: text, url, image. status: success, failure.
	AnalysesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyses_created_total",
		Help: "Analysis requests by source type and outcome",
	}, []string{"source_type", "status"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Time to score, extract keywords from and store one text",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"source_type"})

	// analyzer: lexicon, smart.
	SentimentAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_analyzed_total",
		Help: "Sentiment runs by analyzer and outcome",
	}, []string{"analyzer", "status"})

	RetentionPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retention_purged_analyses_total",
		Help: "Analyses deleted by the retention job",
	})
)

func RecordAnalysisCreated(sourceType string, ok bool, d time.Duration) {
	AnalysesCreatedTotal.WithLabelValues(sourceType, outcome(ok)).Inc()
	AnalysisDuration.WithLabelValues(sourceType).Observe(d.Seconds())
}

func RecordSentiment(analyzer string, ok bool) {
	SentimentAnalyzedTotal.WithLabelValues(analyzer, outcome(ok)).Inc()
}

func UpdateAnalysesTotal(n int64) { AnalysesTotal.Set(float64(n)) }

func RecordRetentionPurge(deleted int64) {
	if deleted > 0 {
		RetentionPurgedTotal.Add(float64(deleted))
	}
}
