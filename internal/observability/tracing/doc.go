// Package tracing provides the OpenTelemetry server middleware and the
// application tracer.
//
// Incoming W3C trace context is honoured, every request gets a server span
// and the trace id is echoed in X-Trace-Id. Outbound URL fetches are
// instrumented separately with otelhttp in the fetcher.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "analysis.run")
//	defer span.End()
package tracing
