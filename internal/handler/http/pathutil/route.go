// Package pathutil maps request paths onto route templates for metric and
// span labels, and validates ids taken from the path.
package pathutil

import "strings"

// Unmatched labels every path outside the API surface, so scanners probing
// random URLs add one series instead of one per URL.
const Unmatched = "unmatched"

var staticRoutes = map[string]bool{
	"/health":              true,
	"/ready":               true,
	"/live":                true,
	"/metrics":             true,
	"/v1/analyses":         true,
	"/v1/analyze/text":     true,
	"/v1/analyze/url":      true,
	"/v1/analyze/image":    true,
	"/v1/analyze/literary": true,
}

// Route returns the template of path: ids become ":id", swagger assets
// collapse to "/swagger/*" and unknown paths to Unmatched. A query string
// or trailing slash is ignored.
//
//	Route("/v1/analyses/6f1c")          // "/v1/analyses/:id"
//	Route("/v1/analyses/6f1c/similar/") // "/v1/analyses/:id/similar"
//	Route("/wp-login.php")              // "unmatched"
func Route(path string) string {
	path, _, _ = strings.Cut(path, "?")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if staticRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/swagger/") {
		return "/swagger/*"
	}

	rest, ok := strings.CutPrefix(path, "/v1/analyses/")
	if !ok {
		return Unmatched
	}
	id, tail, _ := strings.Cut(rest, "/")
	switch {
	case id == "":
		return Unmatched
	case tail == "":
		return "/v1/analyses/:id"
	case tail == "similar":
		return "/v1/analyses/:id/similar"
	}
	return Unmatched
}

// Cardinality is the number of distinct values Route can return.
func Cardinality() int {
	return len(staticRoutes) + 4
}
