package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"literary-analysis/internal/observability/metrics"
)

func TestMetricsMiddleware_CountsByRoute(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/analyze/text" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	tests := []struct {
		method string
		target string
		route  string
		status string
	}{
		{http.MethodGet, "/v1/analyses/6f1c2a9e-1111-4000-8000-000000000001", "/v1/analyses/:id", "200"},
		{http.MethodGet, "/v1/analyses/abc/similar?limit=2", "/v1/analyses/:id/similar", "200"},
		{http.MethodGet, "/health", "/health", "200"},
		{http.MethodGet, "/phpmyadmin/index.php", "unmatched", "200"},
		{http.MethodPost, "/v1/analyze/text", "/v1/analyze/text", "422"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c := metrics.HTTPRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status)
			before := testutil.ToFloat64(c)

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.target, strings.NewReader("{}")))

			assert.Equal(t, before+1, testutil.ToFloat64(c))
			assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
		})
	}
}

func TestMetricsHandler_ServesExposition(t *testing.T) {
	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200").Add(0)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
