package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"literary-analysis/internal/usecase/fetch"
)

// Resolver looks up the addresses of a host name. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// DefaultResolveTimeout bounds a single name resolution.
const DefaultResolveTimeout = 5 * time.Second

// Gate is the URL safety gate. It checks, in order:
//
//  1. the URL parses
//  2. the scheme is http or https (case-insensitive)
//  3. a host is present
//  4. the host resolves, with exactly one resolver call and no retry
//  5. no resolved address is in the blocked range table
//
// A rejected URL is never resolved further or fetched. Gate is safe for
// concurrent use; the only shared state is the read-only table.
type Gate struct {
	table          *BlockedRangeTable
	resolver       Resolver
	resolveTimeout time.Duration
	logger         *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithResolver replaces net.DefaultResolver.
func WithResolver(r Resolver) GateOption {
	return func(g *Gate) { g.resolver = r }
}

// WithResolveTimeout bounds each resolution.
func WithResolveTimeout(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.resolveTimeout = d
		}
	}
}

// WithGateLogger sets the logger used for rejection warnings.
func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate builds a gate over table.
func NewGate(table *BlockedRangeTable, opts ...GateOption) *Gate {
	g := &Gate{
		table:          table,
		resolver:       net.DefaultResolver,
		resolveTimeout: DefaultResolveTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Table returns the blocked range table the gate was built with.
func (g *Gate) Table() *BlockedRangeTable {
	return g.table
}

// Check parses rawURL exactly as given and validates it. On success it
// returns the resolved address set, which is the only set the fetcher may
// dial for this same string.
func (g *Gate) Check(ctx context.Context, rawURL string) ([]netip.Addr, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		g.reject(rawURL, "malformed", err)
		return nil, fmt.Errorf("%w: %v", fetch.ErrMalformedURL, err)
	}
	return g.CheckURL(ctx, u)
}

// CheckURL validates an already parsed URL. It is used for redirect hops.
func (g *Gate) CheckURL(ctx context.Context, u *url.URL) ([]netip.Addr, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		g.reject(u.String(), "scheme", nil)
		return nil, fmt.Errorf("%w: %q", fetch.ErrDisallowedScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		g.reject(u.String(), "no_host", nil)
		return nil, fetch.ErrMissingHost
	}

	addrs, err := g.resolve(ctx, host)
	if err != nil {
		g.reject(u.String(), "unresolvable", err)
		return nil, fmt.Errorf("%w: %s", fetch.ErrUnresolvableHost, host)
	}

	for _, a := range addrs {
		if g.table.Contains(a) {
			// The address goes to the server log only; clients see a generic message.
			g.logger.Warn("blocked url with private address",
				slog.String("url", u.String()),
				slog.String("address", a.String()))
			return nil, fmt.Errorf("%w: %s", fetch.ErrPrivateNetworkTarget, host)
		}
	}
	return addrs, nil
}

// resolve returns the addresses for host. Literal addresses are returned as
// is; names go through exactly one resolver call.
func (g *Gate) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr.Unmap()}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.resolveTimeout)
	defer cancel()

	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}
	out := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Unmap())
	}
	return out, nil
}

func (g *Gate) reject(rawURL, reason string, err error) {
	attrs := []any{slog.String("url", rawURL), slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	g.logger.Warn("blocked url", attrs...)
}
