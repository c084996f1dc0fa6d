// Package auth provides optional bearer token authorization for the /v1 API.
// Tokens are HS256 JWTs carrying "sub", "role" and "exp" claims. When no
// secret is configured the middleware lets every request through.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"literary-analysis/internal/handler/http/respond"
)

type ctxKey struct{}

// Authz reads the secret from JWT_SECRET. See NewAuthz.
func Authz(next http.Handler) http.Handler {
	return NewAuthz([]byte(os.Getenv("JWT_SECRET")))(next)
}

// NewAuthz requires a valid token whose role permits the method and path on
// every endpoint except probes, metrics and swagger. An empty secret
// disables the check.
func NewAuthz(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parseBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				recordDecision("", decisionUnauthenticated)
				slog.Debug("bearer token rejected",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				respond.Public(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !permitted(claims.Role, r.Method, r.URL.Path) {
				recordDecision(claims.Role, decisionForbidden)
				respond.Public(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			recordDecision(claims.Role, decisionAllowed)

			ctx := context.WithValue(r.Context(), ctxKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the token subject, or "" for anonymous requests.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(ctxKey{}).(string)
	return user
}
