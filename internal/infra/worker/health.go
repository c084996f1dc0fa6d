package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	checkTimeout  = 2 * time.Second
	shutdownGrace = 5 * time.Second
)

// ReadinessCheck reports whether a dependency of the worker is usable.
type ReadinessCheck func(ctx context.Context) error

// HealthServer serves the worker's probes and metrics:
//
//	GET /health        200 while the process runs
//	GET /health/ready  200 once SetReady(true) was called and every check passes
//	GET /metrics       Prometheus exposition
type HealthServer struct {
	addr   string
	logger *slog.Logger
	ready  atomic.Bool
	checks map[string]ReadinessCheck
}

type HealthOption func(*HealthServer)

func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthServer) { h.checks[name] = check }
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewHealthServer returns a server for addr that starts out not ready.
func NewHealthServer(addr string, logger *slog.Logger, opts ...HealthOption) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HealthServer{addr: addr, logger: logger, checks: make(map[string]ReadinessCheck)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		h.write(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /health/ready", h.readiness)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// ListenAndServe listens on the configured address and calls Serve.
func (h *HealthServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return err
	}
	return h.Serve(ctx, ln)
}

// Serve answers on ln until ctx is done, then shuts down gracefully and
// returns nil.
func (h *HealthServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()
	h.logger.Info("health server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *HealthServer) SetReady(ready bool) {
	if h.ready.Swap(ready) != ready {
		h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
	}
}

// readiness runs every check in parallel, each under its own timeout.
func (h *HealthServer) readiness(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}

	resp := healthResponse{Status: "ok"}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range h.checks {
		wg.Go(func() {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()
			err := check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				resp.Checks[name] = "healthy"
				return
			}
			h.logger.Warn("readiness check failed", slog.String("check", name), slog.Any("error", err))
			resp.Checks[name] = "unhealthy"
			resp.Status = "not ready"
		})
	}
	wg.Wait()

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	h.write(w, code, resp)
}

func (h *HealthServer) write(w http.ResponseWriter, code int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Debug("write health response", slog.Any("error", err))
	}
}
