// Package http provides the HTTP plumbing shared by the analysis API and the
// retention worker: health and readiness probes, request metrics, request id
// propagation, panic recovery, timeouts and request body validation.
package http

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"time"

	"literary-analysis/internal/handler/http/respond"
	"literary-analysis/internal/observability/metrics"
)

// Check states reported in CheckStatus.Status and HealthResponse.Status.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// poolSaturation is the in-use share of the pool above which the database
// check reports degraded.
const poolSaturation = 0.8

// HealthResponse is the /health body. Status follows the database only;
// component checks are informational.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Database  string                 `json:"database"` // connected, disconnected or not configured
	Version   string                 `json:"version"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ComponentCheck reports the state of an optional dependency such as the
// OCR service or the smart sentiment provider.
type ComponentCheck func(ctx context.Context) CheckStatus

type HealthHandler struct {
	DB         *sql.DB
	Version    string
	Components map[string]ComponentCheck
}

// ServeHTTP answers 200 while the database is reachable and 503 otherwise.
//
// @Summary      Service health
// @Description  Database connectivity, connection pool statistics and optional dependency states
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    StatusUnhealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "not configured",
		Version:   h.Version,
		Checks:    make(map[string]CheckStatus, len(h.Components)+1),
	}

	db := CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	if h.DB != nil {
		db = h.checkDatabase(ctx)
		resp.Database = "connected"
		if db.Status == StatusUnhealthy {
			resp.Database = "disconnected"
		} else {
			resp.Status = StatusHealthy
		}
	}
	resp.Checks["database"] = db

	for name, check := range h.Components {
		resp.Checks[name] = check(ctx)
	}

	code := http.StatusOK
	if resp.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, code, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Warn("health: database ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: StatusUnhealthy, Message: "database unreachable"}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBConnections(stats.InUse, stats.Idle)
	return poolStatus(stats)
}

func poolStatus(stats sql.DBStats) CheckStatus {
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: StatusDegraded, Message: "pool max connections not configured", Details: details}
	}

	used := float64(stats.InUse) / float64(stats.MaxOpenConnections)
	details["utilization_percent"] = used * 100
	if used >= poolSaturation {
		return CheckStatus{Status: StatusDegraded, Message: "pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

// ReadyHandler answers 200 "ready" once the database accepts a ping.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	switch {
	case h.DB == nil:
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
	case h.DB.PingContext(ctx) != nil:
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
	default:
		writePlain(w, "ready")
	}
}

// LiveHandler answers 200 "alive" as long as the process serves requests.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writePlain(w, "alive")
}

func writePlain(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// StateCheck turns a state reporter, such as a breaker's, into a
// ComponentCheck. "open" and "disabled" map to degraded.
func StateCheck(state func() string) ComponentCheck {
	return func(context.Context) CheckStatus {
		s := state()
		status := StatusHealthy
		if s == "open" || s == "disabled" {
			status = StatusDegraded
		}
		return CheckStatus{Status: status, Details: map[string]any{"state": s}}
	}
}
