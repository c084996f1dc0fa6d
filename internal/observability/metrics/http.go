package metrics

import (
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 8)

// Labels: method, path (normalized, ids collapsed to :id) and status.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path", "status"})

	HTTPRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_size_bytes",
		Help:    "HTTP request body size",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response body size",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})

	HTTPRequestTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_request_timeouts_total",
		Help: "Requests answered 504 by the request timeout",
	})

	// ActiveConnections follows http.Server.ConnState through TrackConnState.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_connections",
		Help: "Open client connections",
	})
)

// RecordHTTPRequest records one served request. Sizes of zero are not
// observed.
func RecordHTTPRequest(method, path, status string, d time.Duration, reqBytes, respBytes int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
	if reqBytes > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqBytes))
	}
	if respBytes > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respBytes))
	}
}

func RecordRequestTimeout() { HTTPRequestTimeoutsTotal.Inc() }

// TrackConnState is an http.Server ConnState hook.
func TrackConnState(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		ActiveConnections.Inc()
	case http.StateHijacked, http.StateClosed:
		ActiveConnections.Dec()
	}
}
