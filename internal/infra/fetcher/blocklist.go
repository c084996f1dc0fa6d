// Package fetcher implements the outbound side of URL analysis: the address
// blocklist, the URL safety gate, a dialer pinned to validated addresses and
// the HTTP fetcher that ties them together.
package fetcher

import (
	"fmt"
	"net/netip"
)

// defaultBlockedCIDRs is the disallowed range table.
//
//   - 127.0.0.0/8 (IPv4 loopback)
//   - 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16 (RFC 1918 private)
//   - 169.254.0.0/16 (IPv4 link-local)
//   - ::1/128 (IPv6 loopback)
//   - fc00::/7 (IPv6 unique-local)
//   - fe80::/10 (IPv6 link-local)
var defaultBlockedCIDRs = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

// BlockedRangeTable is an immutable set of network prefixes that outbound
// fetches must never reach. A table is built once at startup and shared by
// reference; it has no mutating methods and is safe for concurrent use.
type BlockedRangeTable struct {
	prefixes []netip.Prefix
}

// NewBlockedRangeTable parses cidrs into a table. Every entry must be a valid
// CIDR; host bits are masked off.
func NewBlockedRangeTable(cidrs ...string) (*BlockedRangeTable, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			return nil, fmt.Errorf("parse blocked range %q: %w", c, err)
		}
		prefixes = append(prefixes, p.Masked())
	}
	return &BlockedRangeTable{prefixes: prefixes}, nil
}

// DefaultBlockedRanges returns the standard table plus any extra CIDRs
// (for example 0.0.0.0/8 or 100.64.0.0/10 from configuration).
func DefaultBlockedRanges(extra ...string) (*BlockedRangeTable, error) {
	cidrs := make([]string, 0, len(defaultBlockedCIDRs)+len(extra))
	cidrs = append(cidrs, defaultBlockedCIDRs...)
	cidrs = append(cidrs, extra...)
	return NewBlockedRangeTable(cidrs...)
}

// MustDefaultBlockedRanges is DefaultBlockedRanges without extras. It cannot
// fail because the built-in table is constant.
func MustDefaultBlockedRanges() *BlockedRangeTable {
	t, err := DefaultBlockedRanges()
	if err != nil {
		panic(err)
	}
	return t
}

// Contains reports whether addr falls inside any blocked prefix.
//
// IPv4-mapped IPv6 addresses (::ffff:a.b.c.d) are classified by their
// embedded IPv4 address and zones are ignored, so "::ffff:127.0.0.1" and
// "fe80::1%eth0" are both blocked. An invalid addr is never contained;
// callers reject unparseable input before asking.
func (t *BlockedRangeTable) Contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap().WithZone("")
	for _, p := range t.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Prefixes returns a copy of the table entries.
func (t *BlockedRangeTable) Prefixes() []netip.Prefix {
	out := make([]netip.Prefix, len(t.prefixes))
	copy(out, t.prefixes)
	return out
}
