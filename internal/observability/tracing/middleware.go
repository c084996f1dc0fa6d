package tracing

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"literary-analysis/internal/handler/http/pathutil"
	"literary-analysis/internal/handler/http/requestid"
)

// TraceHeader echoes the trace id so clients can quote it in bug reports.
const TraceHeader = "X-Trace-Id"

// untraced paths are polled by orchestrators and scrapers.
var untraced = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// Middleware starts a server span per request, named "METHOD /route" with
// analysis ids collapsed to :id. Incoming W3C trace context is honoured
// through the global propagator and 5xx responses mark the span as failed.
// The provider is resolved when Middleware is called.
func Middleware(next http.Handler) http.Handler {
	annotate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if sc := span.SpanContext(); sc.HasTraceID() {
			w.Header().Set(TraceHeader, sc.TraceID().String())
		}
		span.SetAttributes(attribute.String("http.route", pathutil.Route(r.URL.Path)))
		if id := requestid.FromContext(r.Context()); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		next.ServeHTTP(w, r)
	})

	return otelhttp.NewHandler(annotate, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + pathutil.Route(r.URL.Path)
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !untraced[r.URL.Path]
		}),
	)
}
