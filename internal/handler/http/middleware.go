package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"literary-analysis/internal/handler/http/requestid"
	"literary-analysis/internal/handler/http/respond"
	"literary-analysis/internal/handler/http/responsewriter"
)

// probePaths are logged at debug level.
var probePaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/metrics": true,
}

// Logging writes one access log line per request, tagged with the request
// id. The trace id is added by the logger's handler. 5xx responses log at
// error level, 4xx at warn, probes at debug and everything else at info.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := responsewriter.Wrap(w)
			next.ServeHTTP(rec, r)

			status := rec.StatusCode()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			case probePaths[r.URL.Path]:
				level = slog.LevelDebug
			}

			ctx := r.Context()
			if !logger.Enabled(ctx, level) {
				return
			}
			attrs := []slog.Attr{
				slog.String("request_id", requestid.FromContext(ctx)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", status),
				slog.Int("bytes", rec.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", r.URL.RawQuery))
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				attrs = append(attrs, slog.Bool("client_gone", true))
			}
			logger.LogAttrs(ctx, level, "request completed", attrs...)
		})
	}
}

// Recover turns a handler panic into a 500 and logs the stack. The panic of
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())))
				respond.JSON(w, http.StatusInternalServerError, respond.ErrorBody{Error: "internal server error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes. Reads past the limit
// fail and the handler decides the status (413 for uploads, 400 for JSON).
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
