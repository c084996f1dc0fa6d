package http

import (
	"net/http"
	"strings"

	"literary-analysis/internal/handler/http/respond"
)

const (
	MaxAuthorizationHeader = 8 << 10
	MaxPathLength          = 2 << 10
	MaxQueryLength         = 4 << 10
)

type envelopeCheck struct {
	reject func(*http.Request) bool
	status int
	msg    string
}

var envelopeChecks = []envelopeCheck{
	{
		reject: func(r *http.Request) bool { return len(r.Header.Get("Authorization")) > MaxAuthorizationHeader },
		status: http.StatusBadRequest,
		msg:    "authorization header too large",
	},
	{
		reject: func(r *http.Request) bool {
			return len(r.URL.Path) > MaxPathLength || len(r.URL.RawQuery) > MaxQueryLength
		},
		status: http.StatusRequestURITooLong,
		msg:    "URI too long",
	},
	{
		reject: func(r *http.Request) bool { return strings.ContainsFunc(r.URL.Path, isControl) },
		status: http.StatusBadRequest,
		msg:    "invalid characters in path",
	},
}

// InputValidation bounds the request line and the Authorization header
// before routing. Bodies are bounded by LimitRequestBody.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, c := range envelopeChecks {
				if c.reject(r) {
					respond.Public(w, c.status, c.msg, nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }
