package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"literary-analysis/internal/handler/http/pathutil"
	"literary-analysis/internal/handler/http/responsewriter"
	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/observability/slo"
)

// MetricsMiddleware records every request under its route template and
// feeds the SLO window.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rec := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		status := rec.StatusCode()
		metrics.RecordHTTPRequest(r.Method, pathutil.Route(r.URL.Path), strconv.Itoa(status),
			elapsed, int(max(r.ContentLength, 0)), rec.BytesWritten())
		slo.Default().Observe(status, elapsed)
	})
}

// MetricsHandler serves the default registry in the exposition format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
