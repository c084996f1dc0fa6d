package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"literary-analysis/internal/handler/http/requestid"
	"literary-analysis/internal/handler/http/respond"
	"literary-analysis/pkg/config"
)

// NewLogger builds the process logger on stdout from the environment:
//   - LOG_LEVEL: debug, info, warn or error (default info)
//   - LOG_FORMAT: json or text (default json)
func NewLogger() *slog.Logger {
	return New(os.Stdout,
		config.GetEnvString("LOG_FORMAT", "json"),
		ParseLevel(config.GetEnvString("LOG_LEVEL", "info")))
}

// New builds a logger writing format ("text" or anything else for JSON) to
// w. Records logged with a context carry its trace and span ids, error
// values have credentials masked, and debug level adds source locations.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelDebug,
		ReplaceAttr: maskErrors,
	}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(traceHandler{h})
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds the request id found in ctx to logger.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return logger.With(slog.String("request_id", id))
	}
	return logger
}

func maskErrors(_ []string, a slog.Attr) slog.Attr {
	if err, ok := a.Value.Any().(error); ok && a.Value.Kind() == slog.KindAny {
		return slog.String(a.Key, respond.SanitizeError(err))
	}
	return a
}

// traceHandler copies the span context of the record's context into the
// record.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}
