package fetch_test

import (
	"context"
	"errors"
	"net/netip"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"literary-analysis/internal/infra/fetcher"
	fetchUC "literary-analysis/internal/usecase/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── test doubles ───────── */

type stubGate struct {
	addrs  []netip.Addr
	err    error
	calls  atomic.Int32
	gotURL string
}

func (g *stubGate) Check(_ context.Context, rawURL string) ([]netip.Addr, error) {
	g.calls.Add(1)
	g.gotURL = rawURL
	return g.addrs, g.err
}

func (g *stubGate) CheckURL(ctx context.Context, u *url.URL) ([]netip.Addr, error) {
	return g.Check(ctx, u.String())
}

type stubFetcher struct {
	result *fetchUC.FetchResult
	err    error
	delay  time.Duration

	calls     atomic.Int32
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	gotAddrs  []netip.Addr
	gotURL    string
	mu        sync.Mutex
}

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string, addrs []netip.Addr, _ time.Duration) (*fetchUC.FetchResult, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.gotAddrs = addrs
	f.gotURL = rawURL
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &fetchUC.FetchResult{URL: rawURL, FinalURL: rawURL, StatusCode: 200, Body: []byte("<p>ok</p>")}, nil
}

type stubExtractor struct {
	out   fetchUC.Extraction
	err   error
	calls atomic.Int32
}

func (e *stubExtractor) Extract(_ context.Context, _ string, _ *url.URL) (fetchUC.Extraction, error) {
	e.calls.Add(1)
	return e.out, e.err
}

var publicAddr = []netip.Addr{netip.MustParseAddr("93.184.216.34")}

/* ───────── FetchText ───────── */

func TestService_FetchText_Success(t *testing.T) {
	gate := &stubGate{addrs: publicAddr}
	f := &stubFetcher{result: &fetchUC.FetchResult{
		URL:        "https://example.com/a",
		FinalURL:   "https://example.com/b",
		StatusCode: 200,
		Body:       []byte("<article><p>Story</p></article>"),
		Redirects:  1,
	}}
	ext := &stubExtractor{out: fetchUC.Extraction{Text: "Story", Strategy: "readability"}}

	svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{Timeout: time.Second}, nil)
	doc, err := svc.FetchText(context.Background(), "https://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "Story", doc.Text)
	assert.Equal(t, "readability", doc.Strategy)
	assert.Equal(t, "https://example.com/a", doc.URL)
	assert.Equal(t, "https://example.com/b", doc.FinalURL)
	assert.Equal(t, publicAddr, f.gotAddrs, "fetcher must receive the gate's address set")
}

func TestService_FetchText_GateAndFetcherShareURL(t *testing.T) {
	gate := &stubGate{addrs: publicAddr}
	f := &stubFetcher{}
	ext := &stubExtractor{out: fetchUC.Extraction{Text: "Story", Strategy: "paragraphs"}}

	svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{Timeout: time.Second}, nil)
	doc, err := svc.FetchText(context.Background(), "  https://example.com/story\n")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/story", gate.gotURL)
	assert.Equal(t, gate.gotURL, f.gotURL)
	assert.Equal(t, "https://example.com/story", doc.URL)
}

func TestService_FetchText_GateRejectionSkipsFetch(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"scheme", fetchUC.ErrDisallowedScheme},
		{"private", fetchUC.ErrPrivateNetworkTarget},
		{"unresolvable", fetchUC.ErrUnresolvableHost},
		{"missing host", fetchUC.ErrMissingHost},
		{"malformed", fetchUC.ErrMalformedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &stubGate{err: tt.err}
			f := &stubFetcher{}
			ext := &stubExtractor{}

			svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{}, nil)
			_, err := svc.FetchText(context.Background(), "http://whatever/")

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, int32(0), f.calls.Load(), "rejected URL must never be fetched")
			assert.Equal(t, int32(0), ext.calls.Load())
		})
	}
}

// With the real gate in front, a loopback target is refused before any
// outbound request is attempted.
func TestService_FetchText_RealGateRejectsLocalhost(t *testing.T) {
	gate := fetcher.NewGate(fetcher.MustDefaultBlockedRanges())
	f := &stubFetcher{}
	ext := &stubExtractor{}

	svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{}, nil)

	for _, raw := range []string{
		"http://127.0.0.1:8000/health",
		"http://[::1]/",
		"http://169.254.169.254/latest/meta-data/",
		"file:///etc/passwd",
	} {
		_, err := svc.FetchText(context.Background(), raw)
		assert.True(t, fetchUC.IsRejection(err), "%s: expected rejection, got %v", raw, err)
	}
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestService_FetchText_FetchErrorPropagates(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"timeout", fetchUC.ErrFetchTimeout},
		{"http status", fetchUC.ErrFetchHTTPStatus},
		{"transport", fetchUC.ErrFetchTransport},
		{"body too large", fetchUC.ErrBodyTooLarge},
		{"redirect rejected", fetchUC.ErrPrivateNetworkTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &stubGate{addrs: publicAddr}
			f := &stubFetcher{err: tt.err}
			ext := &stubExtractor{}

			svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{}, nil)
			_, err := svc.FetchText(context.Background(), "https://example.com/")

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, int32(0), ext.calls.Load())
		})
	}
}

func TestService_FetchText_NoExtractableContent(t *testing.T) {
	gate := &stubGate{addrs: publicAddr}
	f := &stubFetcher{}
	ext := &stubExtractor{err: fetchUC.ErrNoExtractableContent}

	svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{}, nil)
	_, err := svc.FetchText(context.Background(), "https://example.com/")

	assert.ErrorIs(t, err, fetchUC.ErrNoExtractableContent)
}

func TestService_FetchText_BoundsConcurrency(t *testing.T) {
	gate := &stubGate{addrs: publicAddr}
	f := &stubFetcher{delay: 30 * time.Millisecond}
	ext := &stubExtractor{out: fetchUC.Extraction{Text: "x", Strategy: "document"}}

	svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{MaxConcurrent: 2}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.FetchText(context.Background(), "https://example.com/")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), f.calls.Load())
	assert.LessOrEqual(t, f.maxFlight.Load(), int32(2))
}

func TestService_FetchText_WaitingCallerHonoursContext(t *testing.T) {
	gate := &stubGate{addrs: publicAddr}
	f := &stubFetcher{delay: 500 * time.Millisecond}
	ext := &stubExtractor{out: fetchUC.Extraction{Text: "x", Strategy: "document"}}

	svc := fetchUC.NewService(gate, f, ext, fetchUC.ServiceConfig{MaxConcurrent: 1}, nil)

	go func() { _, _ = svc.FetchText(context.Background(), "https://example.com/slow") }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := svc.FetchText(ctx, "https://example.com/queued")

	require.Error(t, err)
	assert.ErrorIs(t, err, fetchUC.ErrFetchTransport)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

/* ───────── error taxonomy ───────── */

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fetchUC.ErrMalformedURL, "malformed"},
		{fetchUC.ErrDisallowedScheme, "scheme"},
		{fetchUC.ErrMissingHost, "no_host"},
		{fetchUC.ErrUnresolvableHost, "unresolvable"},
		{fetchUC.ErrPrivateNetworkTarget, "private_network"},
		{fetchUC.ErrFetchTimeout, "timeout"},
		{errors.Join(fetchUC.ErrFetchHTTPStatus, fetchUC.ErrTooManyRedirects), "too_many_redirects"},
		{fetchUC.ErrFetchHTTPStatus, "http_status"},
		{fetchUC.ErrBodyTooLarge, "body_too_large"},
		{fetchUC.ErrFetchTransport, "transport"},
		{fetchUC.ErrNoExtractableContent, "no_content"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, fetchUC.Reason(tt.err))
		})
	}
}

func TestIsRejection(t *testing.T) {
	assert.True(t, fetchUC.IsRejection(fetchUC.ErrPrivateNetworkTarget))
	assert.True(t, fetchUC.IsRejection(errors.Join(errors.New("redirect"), fetchUC.ErrDisallowedScheme)))
	assert.False(t, fetchUC.IsRejection(fetchUC.ErrFetchTimeout))
	assert.False(t, fetchUC.IsRejection(nil))
}
