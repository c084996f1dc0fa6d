package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"sync/atomic"
	"time"

	"literary-analysis/internal/usecase/fetch"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/html/charset"
)

// HTTPFetcher performs the outbound GET for a URL the gate has accepted.
//
// Connections are pinned: the transport dials only addresses the gate
// returned for the request's host, and each redirect hop is sent back through
// the gate (which re-resolves it exactly once) before it is followed. No
// proxy from the environment is honoured, since a proxy would bypass pinning.
type HTTPFetcher struct {
	client *http.Client
	gate   *Gate
	config Config
}

// fetchState is per-fetch bookkeeping reachable from the request context.
type fetchState struct {
	pins      *pinSet
	redirects atomic.Int32
}

type stateKey struct{}

// NewHTTPFetcher builds a fetcher that shares gate's blocked range table.
func NewHTTPFetcher(gate *Gate, config Config) *HTTPFetcher {
	f := &HTTPFetcher{gate: gate, config: config}

	dialer := newPinnedDialer(gate.Table(), config.Timeout)
	base := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.Timeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	// Spans for outbound calls, but no trace headers leak to third-party hosts.
	transport := otelhttp.NewTransport(base,
		otelhttp.WithPropagators(propagation.NewCompositeTextMapPropagator()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "fetch " + r.URL.Host
		}),
	)

	f.client = &http.Client{
		Transport:     transport,
		CheckRedirect: f.checkRedirect,
	}
	return f
}

// checkRedirect bounds the chain and re-validates every hop through the gate.
func (f *HTTPFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > f.config.MaxRedirects {
		return fmt.Errorf("%w: %w: limit is %d", fetch.ErrFetchHTTPStatus, fetch.ErrTooManyRedirects, f.config.MaxRedirects)
	}

	state, _ := req.Context().Value(stateKey{}).(*fetchState)
	if state == nil {
		return errUnpinnedHost
	}

	addrs, err := f.gate.CheckURL(req.Context(), req.URL)
	if err != nil {
		return fmt.Errorf("redirect to %s rejected: %w", req.URL.Redacted(), err)
	}
	state.pins.add(req.URL.Hostname(), addrs)
	state.redirects.Add(1)
	return nil
}

// Fetch retrieves rawURL, connecting only to addrs for the initial host.
// A non-positive timeout falls back to the configured one.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, addrs []netip.Addr, timeout time.Duration) (*fetch.FetchResult, error) {
	if timeout <= 0 {
		timeout = f.config.Timeout
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrMalformedURL, err)
	}

	state := &fetchState{pins: newPinSet()}
	state.pins.add(u.Hostname(), addrs)

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	reqCtx = withPins(context.WithValue(reqCtx, stateKey{}, state), state.pins)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", fetch.ErrMalformedURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, reqCtx, err, timeout)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", fetch.ErrFetchHTTPStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, classifyTransportError(ctx, reqCtx, err, timeout)
	}
	if int64(len(raw)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", fetch.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	finalURL := u.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &fetch.FetchResult{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        toUTF8(raw, contentType),
		Redirects:   int(state.redirects.Load()),
	}, nil
}

// classifyTransportError maps a client error onto the fetch taxonomy. Gate
// rejections raised while following redirects pass through unchanged. Any
// expired deadline, the caller's or the fetch's own, is a timeout; only
// cancellation by the caller is a transport error.
func classifyTransportError(parent, reqCtx context.Context, err error, timeout time.Duration) error {
	if fetch.IsRejection(err) || errors.Is(err, fetch.ErrFetchHTTPStatus) {
		return err
	}
	if errors.Is(parent.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: caller deadline exceeded", fetch.ErrFetchTimeout)
	}
	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", fetch.ErrFetchTransport, parent.Err())
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: request exceeded %v", fetch.ErrFetchTimeout, timeout)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", fetch.ErrFetchTimeout, urlErr.Err)
	}
	return fmt.Errorf("%w: %v", fetch.ErrFetchTransport, err)
}

// toUTF8 converts body to UTF-8 using the declared or sniffed charset. The
// raw bytes are returned when conversion fails.
func toUTF8(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return out
}
