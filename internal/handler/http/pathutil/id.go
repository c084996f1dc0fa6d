package pathutil

import (
	"errors"
	"net/http"
)

var ErrInvalidID = errors.New("invalid id")

const maxIDLength = 64

// PathID returns the named wildcard of the request's route pattern. It
// must be non-empty, at most 64 bytes and limited to letters, digits, '-'
// and '_'. Whether a record exists is up to the caller.
func PathID(r *http.Request, name string) (string, error) {
	id := r.PathValue(name)
	if !ValidID(id) {
		return "", ErrInvalidID
	}
	return id, nil
}

func ValidID(s string) bool {
	if s == "" || len(s) > maxIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}
