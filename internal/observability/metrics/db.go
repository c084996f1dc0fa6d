package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operation names the repository call, e.g. insert_analysis.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Repository query latency",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	}, []string{"operation"})

	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_active",
		Help: "Pool connections in use",
	})

	DBConnectionsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_idle",
		Help: "Idle pool connections",
	})
)

func RecordDBQuery(operation string, d time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func UpdateDBConnections(inUse, idle int) {
	DBConnectionsActive.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}
