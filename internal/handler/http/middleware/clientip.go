package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"literary-analysis/pkg/config"
)

// ProxyTrust resolves the address of the client behind a request. Without
// trusted proxies only the TCP peer counts, so headers cannot pick a key.
type ProxyTrust struct {
	proxies []netip.Prefix
}

// NewProxyTrust parses IPs and CIDR ranges. A bare IP trusts exactly that
// address.
func NewProxyTrust(entries ...string) (*ProxyTrust, error) {
	t := &ProxyTrust{}
	for _, e := range entries {
		if e = strings.TrimSpace(e); e == "" {
			continue
		}
		p, err := netip.ParsePrefix(e)
		if err != nil {
			ip, ipErr := netip.ParseAddr(e)
			if ipErr != nil {
				return nil, fmt.Errorf("trusted proxy %q: not an IP or CIDR", e)
			}
			p = netip.PrefixFrom(ip, ip.BitLen())
		}
		t.proxies = append(t.proxies, p.Masked())
	}
	return t, nil
}

// LoadProxyTrust reads RATELIMIT_TRUST_PROXY and RATELIMIT_TRUSTED_PROXIES.
// Trusting proxies without naming any is a startup error.
func LoadProxyTrust() (*ProxyTrust, error) {
	if !config.GetEnvBool("RATELIMIT_TRUST_PROXY", false) {
		return &ProxyTrust{}, nil
	}
	t, err := NewProxyTrust(config.GetEnvStringList("RATELIMIT_TRUSTED_PROXIES", nil)...)
	if err != nil {
		return nil, err
	}
	if len(t.proxies) == 0 {
		return nil, errors.New("RATELIMIT_TRUST_PROXY is enabled but RATELIMIT_TRUSTED_PROXIES is empty")
	}
	return t, nil
}

func (t *ProxyTrust) trusts(ip netip.Addr) bool {
	for _, p := range t.proxies {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the TCP peer unless it is a trusted proxy. Then
// X-Forwarded-For is walked from the right and the first hop that is not a
// trusted proxy wins; entries left of it were written by the client and are
// never used. X-Real-IP is consulted when X-Forwarded-For is absent. A
// malformed hop stops the walk at the last address that could be verified.
func (t *ProxyTrust) ClientIP(r *http.Request) (netip.Addr, error) {
	peer, err := peerAddr(r.RemoteAddr)
	if err != nil || t == nil || !t.trusts(peer) {
		return peer, err
	}

	hops := r.Header.Values("X-Forwarded-For")
	if len(hops) == 0 {
		if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
			return ip.Unmap(), nil
		}
		return peer, nil
	}

	client := peer
	list := strings.Split(strings.Join(hops, ","), ",")
	for i := len(list) - 1; i >= 0; i-- {
		ip, err := netip.ParseAddr(strings.TrimSpace(list[i]))
		if err != nil {
			break
		}
		client = ip.Unmap()
		if !t.trusts(client) {
			break
		}
	}
	return client, nil
}

func peerAddr(remote string) (netip.Addr, error) {
	if remote == "" {
		return netip.Addr{}, errors.New("empty remote address")
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = strings.Trim(remote, "[]")
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("remote address %q: %w", remote, err)
	}
	return ip.Unmap(), nil
}
