package fetch

import (
	"context"
	"net/netip"
	"net/url"
	"time"
)

// URLGate validates a caller supplied URL before any network access happens.
//
// Check resolves the host exactly once and returns the validated address set.
// The returned addresses are the only ones a ContentFetcher may connect to for
// the initial request.
//
// Errors:
//   - ErrMalformedURL: URL cannot be parsed
//   - ErrDisallowedScheme: scheme is not http or https (no resolution is done)
//   - ErrMissingHost: URL has no host
//   - ErrUnresolvableHost: name resolution failed or returned nothing
//   - ErrPrivateNetworkTarget: at least one resolved address is blocked
type URLGate interface {
	Check(ctx context.Context, rawURL string) ([]netip.Addr, error)
	CheckURL(ctx context.Context, u *url.URL) ([]netip.Addr, error)
}

// ContentFetcher retrieves a URL that has already passed the URLGate.
//
// The fetcher is handed the validated addresses and must dial only those.
// Redirect hops are re-validated through the gate before they are followed.
//
// Errors:
//   - ErrFetchTimeout: timeout expired before the body was read
//   - ErrFetchTransport: connection, TLS or protocol failure
//   - ErrFetchHTTPStatus: non-2xx final status, or the redirect bound was hit
//   - ErrBodyTooLarge: response exceeded the configured size limit
//   - any URLGate error for a rejected redirect hop
type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string, addrs []netip.Addr, timeout time.Duration) (*FetchResult, error)
}

// Extractor turns retrieved markup into plain text.
//
// It returns ErrNoExtractableContent when every strategy produced empty output.
type Extractor interface {
	Extract(ctx context.Context, markup string, pageURL *url.URL) (Extraction, error)
}

// FetchResult is the raw payload of a successful fetch. It is consumed by the
// extraction step and never persisted.
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Redirects   int
}

// Extraction is the text produced by the extraction pipeline together with
// the name of the strategy that produced it.
type Extraction struct {
	Text     string
	Strategy string
}

// Document is the result of the full gate, fetch and extract sequence.
type Document struct {
	URL      string
	FinalURL string
	Text     string
	Strategy string
}
