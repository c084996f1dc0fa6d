package auth

import "strings"

// Values of the "role" claim.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type grant struct {
	write  bool
	scopes []string
}

// grants lists, per role, the path scopes it may reach. A role without
// write access is limited to GET, HEAD and OPTIONS.
var grants = map[string]grant{
	RoleAdmin:  {write: true, scopes: []string{"/"}},
	RoleViewer: {scopes: []string{"/v1/analyses", "/swagger"}},
}

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	_, ok := grants[role]
	return ok
}

func permitted(role, method, path string) bool {
	g, ok := grants[role]
	if !ok {
		return false
	}
	if !g.write && !readOnly(method) {
		return false
	}
	for _, scope := range g.scopes {
		if inScope(path, scope) {
			return true
		}
	}
	return false
}

func readOnly(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// inScope matches scope itself and anything below it, never a sibling
// sharing the prefix ("/v1/analysesx" is outside "/v1/analyses").
func inScope(path, scope string) bool {
	if scope == "/" {
		return true
	}
	return path == scope || strings.HasPrefix(path, scope+"/")
}

// publicPaths skip authentication. Entries ending in "/" cover a subtree.
var publicPaths = []string{"/health", "/ready", "/live", "/metrics", "/swagger/"}

// IsPublicEndpoint reports whether path is served without a token. A
// single trailing slash is ignored.
func IsPublicEndpoint(path string) bool {
	for _, p := range publicPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p || path == p+"/" {
			return true
		}
	}
	return false
}
