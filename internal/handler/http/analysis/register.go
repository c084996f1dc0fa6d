package analysis

import (
	"log/slog"
	"net/http"

	"literary-analysis/internal/common/pagination"
	"literary-analysis/internal/handler/http/middleware"
)

// RouteConfig carries what the analysis routes need besides the use case.
type RouteConfig struct {
	Pagination     pagination.Config
	MaxUploadBytes int64

	// Limiter throttles the analyze endpoints per client IP. Nil disables it.
	Limiter *middleware.RateLimiter

	// Authz wraps every route. Nil leaves the routes open.
	Authz func(http.Handler) http.Handler

	Logger *slog.Logger
}

// Register registers the analysis handlers with mux.
// Analyze routes are rate limited; read routes are not.
func Register(mux *http.ServeMux, svc Analyzer, cfg RouteConfig) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	protect := func(h http.Handler) http.Handler {
		if cfg.Authz != nil {
			return cfg.Authz(h)
		}
		return h
	}
	limit := func(h http.Handler) http.Handler {
		if cfg.Limiter != nil {
			h = cfg.Limiter.Middleware(h)
		}
		return protect(h)
	}

	mux.Handle("POST /v1/analyze/text", limit(TextHandler{Svc: svc, Logger: cfg.Logger}))
	mux.Handle("POST /v1/analyze/url", limit(URLHandler{Svc: svc, Logger: cfg.Logger}))
	mux.Handle("POST /v1/analyze/image", limit(ImageHandler{
		Svc:            svc,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         cfg.Logger,
	}))
	mux.Handle("POST /v1/analyze/literary", limit(LiteraryHandler{Svc: svc, Logger: cfg.Logger}))

	mux.Handle("GET /v1/analyses", protect(ListHandler{
		Svc:           svc,
		PaginationCfg: cfg.Pagination,
		Logger:        cfg.Logger,
	}))
	mux.Handle("GET /v1/analyses/{id}", protect(GetHandler{Svc: svc, Logger: cfg.Logger}))
	mux.Handle("GET /v1/analyses/{id}/similar", protect(SimilarHandler{Svc: svc, Logger: cfg.Logger}))
}
