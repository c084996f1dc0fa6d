package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"literary-analysis/pkg/config"
)

type CORSConfig struct {
	// AllowedOrigins lists exact origins or "scheme://*.domain" patterns.
	// Leaving it empty turns CORS off.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int // seconds
	Logger         *slog.Logger
}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS, CORS_ALLOWED_METHODS,
// CORS_ALLOWED_HEADERS and CORS_MAX_AGE.
func LoadCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: config.GetEnvStringList("CORS_ALLOWED_ORIGINS", nil),
		AllowedMethods: config.GetEnvStringList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: config.GetEnvStringList("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		MaxAge:         config.GetEnvInt("CORS_MAX_AGE", 86400),
	}
}

type originSet struct {
	exact    map[string]bool
	suffixes []string // "https://.example.com" for "https://*.example.com"
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}

func newOriginSet(origins []string) originSet {
	s := originSet{exact: make(map[string]bool)}
	for _, o := range origins {
		o = normalizeOrigin(o)
		switch {
		case o == "":
		case strings.Contains(o, "://*."):
			s.suffixes = append(s.suffixes, strings.Replace(o, "://*.", "://.", 1))
		default:
			s.exact[o] = true
		}
	}
	return s
}

func (s originSet) empty() bool { return len(s.exact) == 0 && len(s.suffixes) == 0 }

func (s originSet) allows(origin string) bool {
	origin = normalizeOrigin(origin)
	if s.exact[origin] {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok || host == "" {
		return false
	}
	for _, suf := range s.suffixes {
		sufScheme, domain, _ := strings.Cut(suf, "://")
		if scheme == sufScheme && strings.HasSuffix(host, domain) && len(host) > len(domain) {
			return true
		}
	}
	return false
}

// CORS echoes allowed origins back and answers their preflight requests
// with 204. Requests without an Origin, or from an origin not on the list,
// pass through without CORS headers.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := newOriginSet(cfg.AllowedOrigins)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	preflight := http.Header{
		"Access-Control-Allow-Methods": {strings.Join(cfg.AllowedMethods, ", ")},
		"Access-Control-Allow-Headers": {strings.Join(cfg.AllowedHeaders, ", ")},
		"Access-Control-Max-Age":       {strconv.Itoa(cfg.MaxAge)},
	}

	return func(next http.Handler) http.Handler {
		if origins.empty() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Add("Vary", "Origin")
			if !origins.allows(origin) {
				logger.DebugContext(r.Context(), "cors origin rejected",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				for k, v := range preflight {
					h[k] = v
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
