// Package fetch implements the URL retrieval use case: validate a caller
// supplied URL against the network blocklist, fetch it over pinned
// connections and reduce the returned markup to plain text.
package fetch

import "errors"

// Gate rejections. These are request-terminal and never retried. The HTTP
// layer maps all of them to a 400 with a generic message so that resolution
// details stay in the server log.
var (
	// ErrMalformedURL indicates the URL string could not be parsed.
	ErrMalformedURL = errors.New("malformed url")

	// ErrDisallowedScheme indicates a scheme other than http or https.
	//
	// Example:
	//   - "file:///etc/passwd" → ErrDisallowedScheme
	//   - "javascript:alert(1)" → ErrDisallowedScheme
	//   - "example.com/path" → ErrDisallowedScheme (no scheme)
	ErrDisallowedScheme = errors.New("url scheme not allowed")

	// ErrMissingHost indicates the URL carries no host component.
	ErrMissingHost = errors.New("url has no host")

	// ErrUnresolvableHost indicates the single name resolution attempt failed
	// or returned no addresses.
	ErrUnresolvableHost = errors.New("url host could not be resolved")

	// ErrPrivateNetworkTarget indicates at least one resolved address falls in
	// a blocked range (loopback, private, link-local, unique-local).
	//
	// Example:
	//   - "http://localhost/" → ErrPrivateNetworkTarget
	//   - "http://192.168.1.1/admin" → ErrPrivateNetworkTarget
	//   - "http://[::1]/" → ErrPrivateNetworkTarget
	ErrPrivateNetworkTarget = errors.New("url resolves to a private network address")
)

// Fetch failures.
var (
	// ErrFetchTimeout indicates the outbound request did not finish in time.
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrFetchTransport indicates a connection, TLS or protocol failure.
	ErrFetchTransport = errors.New("fetch transport error")

	// ErrFetchHTTPStatus indicates the final response was not 2xx, including
	// the case where the redirect bound was exhausted.
	ErrFetchHTTPStatus = errors.New("fetch returned unsuccessful status")

	// ErrTooManyRedirects is wrapped together with ErrFetchHTTPStatus when the
	// redirect chain exceeds the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// ErrNoExtractableContent indicates every extraction strategy produced empty
// output for the retrieved markup.
var ErrNoExtractableContent = errors.New("no extractable content")

// IsRejection reports whether err is one of the gate rejections.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformedURL) ||
		errors.Is(err, ErrDisallowedScheme) ||
		errors.Is(err, ErrMissingHost) ||
		errors.Is(err, ErrUnresolvableHost) ||
		errors.Is(err, ErrPrivateNetworkTarget)
}

// Reason returns a short, stable label for err suitable for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedURL):
		return "malformed"
	case errors.Is(err, ErrDisallowedScheme):
		return "scheme"
	case errors.Is(err, ErrMissingHost):
		return "no_host"
	case errors.Is(err, ErrUnresolvableHost):
		return "unresolvable"
	case errors.Is(err, ErrPrivateNetworkTarget):
		return "private_network"
	case errors.Is(err, ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, ErrFetchHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrBodyTooLarge):
		return "body_too_large"
	case errors.Is(err, ErrFetchTransport):
		return "transport"
	case errors.Is(err, ErrNoExtractableContent):
		return "no_content"
	default:
		return "other"
	}
}
