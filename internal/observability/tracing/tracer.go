package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "literary-analysis"

// GetTracer returns the tracer for application spans such as
// "analysis.run" or "fetch.extract". It follows the global provider, so it
// is safe to call before InitProvider.
func GetTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
