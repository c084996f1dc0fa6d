package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"literary-analysis/internal/handler/http/requestid"
)

// recordSpans installs an in-memory provider and the W3C propagator for the
// duration of the test.
func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return exp
}

func attrs(s tracetest.SpanStub) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(s.Attributes))
	for _, kv := range s.Attributes {
		m[kv.Key] = kv.Value
	}
	return m
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ServerSpan(t *testing.T) {
	exp := recordSpans(t)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, trace.SpanContextFromContext(r.Context()).IsValid())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/analyses/3f2b8c1e-9a4d-4e6f-8b7a-1c2d3e4f5a6b", nil)
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-7"))
	rec := serve(h, req)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /v1/analyses/:id", span.Name)
	assert.Equal(t, span.SpanContext.TraceID().String(), rec.Header().Get(TraceHeader))

	a := attrs(span)
	assert.Equal(t, "/v1/analyses/:id", a["http.route"].AsString())
	assert.Equal(t, "req-7", a["request_id"].AsString())
	assert.NotEqual(t, codes.Error, span.Status.Code)
}

func TestMiddleware_ServerErrorMarksSpan(t *testing.T) {
	exp := recordSpans(t)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	serve(h, httptest.NewRequest(http.MethodPost, "/v1/analyze/url", nil))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestMiddleware_ClientErrorIsNotSpanError(t *testing.T) {
	exp := recordSpans(t)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	serve(h, httptest.NewRequest(http.MethodPost, "/v1/analyze/url", nil))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status.Code)
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	exp := recordSpans(t)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze/text", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := serve(h, req)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec.Header().Get(TraceHeader))
}

func TestMiddleware_ProbesAreNotTraced(t *testing.T) {
	exp := recordSpans(t)
	called := false
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	for _, p := range []string{"/health", "/ready", "/live", "/metrics"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Empty(t, rec.Header().Get(TraceHeader), p)
	}
	assert.True(t, called)
	assert.Empty(t, exp.GetSpans())
}
