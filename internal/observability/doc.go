// Package observability groups the logging, metrics, tracing and SLO
// packages used by the API and the worker.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: Prometheus collectors for HTTP, analyses, the URL gate and the database
//   - tracing: OpenTelemetry server middleware
//   - slo: rolling availability and latency objectives
package observability
