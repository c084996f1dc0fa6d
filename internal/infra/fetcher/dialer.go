package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"syscall"
	"time"

	"literary-analysis/internal/usecase/fetch"
)

// errUnpinnedHost is returned when the transport tries to dial a host the
// gate never validated for the current request.
var errUnpinnedHost = errors.New("dial to host without validated addresses")

// pinSet maps lowercased host names to the addresses the gate validated for
// them during one fetch (initial URL plus every redirect hop).
type pinSet struct {
	mu    sync.Mutex
	hosts map[string][]netip.Addr
}

func newPinSet() *pinSet {
	return &pinSet{hosts: make(map[string][]netip.Addr)}
}

func (p *pinSet) add(host string, addrs []netip.Addr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts[strings.ToLower(host)] = addrs
}

func (p *pinSet) lookup(host string) ([]netip.Addr, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	addrs, ok := p.hosts[strings.ToLower(host)]
	return addrs, ok
}

type pinKey struct{}

func withPins(ctx context.Context, p *pinSet) context.Context {
	return context.WithValue(ctx, pinKey{}, p)
}

func pinsFrom(ctx context.Context) *pinSet {
	p, _ := ctx.Value(pinKey{}).(*pinSet)
	return p
}

// pinnedDialer connects only to addresses the gate validated for the
// request's host. It never resolves a name itself, so a DNS answer that
// changes between check and use cannot redirect the connection. As a second
// line, the socket Control hook re-checks the peer address against the table
// right before connect(2).
type pinnedDialer struct {
	table  *BlockedRangeTable
	dialer *net.Dialer
}

func newPinnedDialer(table *BlockedRangeTable, timeout time.Duration) *pinnedDialer {
	d := &pinnedDialer{table: table}
	d.dialer = &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
		Control:   d.control,
	}
	return d
}

// DialContext is installed as http.Transport.DialContext.
func (d *pinnedDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	pins := pinsFrom(ctx)
	if pins == nil {
		return nil, errUnpinnedHost
	}
	addrs, ok := pins.lookup(host)
	if !ok || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s", errUnpinnedHost, host)
	}

	var lastErr error
	for _, a := range addrs {
		if d.table.Contains(a) {
			return nil, fmt.Errorf("%w: %s", fetch.ErrPrivateNetworkTarget, host)
		}
		conn, err := d.dialer.DialContext(ctx, network, net.JoinHostPort(a.String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// control rejects any socket whose peer address is blocked.
func (d *pinnedDialer) control(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: unparseable peer %q", fetch.ErrPrivateNetworkTarget, address)
	}
	if d.table.Contains(ap.Addr()) {
		return fmt.Errorf("%w: %s", fetch.ErrPrivateNetworkTarget, ap.Addr())
	}
	return nil
}
