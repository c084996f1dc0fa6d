// Package middleware holds the middleware in front of the public API:
// per-client rate limiting on the analyze endpoints, client address
// resolution behind trusted proxies and CORS.
package middleware
