package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"literary-analysis/internal/handler/http/requestid"
	"literary-analysis/internal/observability/metrics"
)

// Timeout bounds the whole request at duration. When the deadline passes
// before the handler has written anything the client gets 504
// {"error":"request timeout"}; later writes from the handler are dropped
// with http.ErrHandlerTimeout. The handler sees the deadline on r.Context().
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			tw := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if tw.expire() {
					metrics.RecordRequestTimeout()
					slog.Warn("request timed out",
						slog.String("request_id", requestid.FromContext(r.Context())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Duration("timeout", duration))
				}
			}
		})
	}
}

// timeoutWriter serialises the handler's writes against the timeout
// response. Exactly one of them reaches the client first.
type timeoutWriter struct {
	http.ResponseWriter

	mu       sync.Mutex
	timedOut bool
	written  bool
}

// expire marks the request as timed out and writes the 504 unless the
// handler already started a response. It reports whether the 504 was sent.
func (w *timeoutWriter) expire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.timedOut = true
	if w.written {
		return false
	}
	w.written = true
	w.ResponseWriter.Header().Set("Content-Type", "application/json")
	w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
	_, _ = w.ResponseWriter.Write([]byte(`{"error":"request timeout"}` + "\n"))
	return true
}

func (w *timeoutWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timedOut || w.written {
		return
	}
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *timeoutWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}
