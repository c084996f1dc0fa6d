// Package pagination parses limit/offset list parameters and records how
// list endpoints are paged.
package pagination

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"literary-analysis/pkg/config"
)

var ErrInvalidParam = errors.New("invalid query parameter")

// Config bounds the page a client may ask for.
type Config struct {
	DefaultLimit int
	MaxLimit     int
	MaxOffset    int
}

func DefaultConfig() Config {
	return Config{DefaultLimit: 20, MaxLimit: 100, MaxOffset: 10000}
}

// LoadFromEnv reads PAGINATION_DEFAULT_LIMIT, PAGINATION_MAX_LIMIT and
// PAGINATION_MAX_OFFSET. Values that would leave no valid page fall back to
// the defaults, and the default limit is capped at the maximum.
func LoadFromEnv() Config {
	d := DefaultConfig()
	c := Config{
		DefaultLimit: config.GetEnvInt("PAGINATION_DEFAULT_LIMIT", d.DefaultLimit),
		MaxLimit:     config.GetEnvInt("PAGINATION_MAX_LIMIT", d.MaxLimit),
		MaxOffset:    config.GetEnvInt("PAGINATION_MAX_OFFSET", d.MaxOffset),
	}
	if c.MaxLimit < 1 {
		c.MaxLimit = d.MaxLimit
	}
	if c.MaxOffset < 0 {
		c.MaxOffset = d.MaxOffset
	}
	if c.DefaultLimit < 1 {
		c.DefaultLimit = d.DefaultLimit
	}
	c.DefaultLimit = min(c.DefaultLimit, c.MaxLimit)
	return c
}

// Params is one requested page.
type Params struct {
	Limit  int
	Offset int
}

// Parse reads limit and offset from q. Absent values take the defaults;
// present values outside the configured range are rejected with
// ErrInvalidParam.
func Parse(q url.Values, cfg Config) (Params, error) {
	limit, err := IntParam(q, "limit", cfg.DefaultLimit, 1, cfg.MaxLimit)
	if err != nil {
		return Params{}, err
	}
	offset, err := IntParam(q, "offset", 0, 0, cfg.MaxOffset)
	if err != nil {
		return Params{}, err
	}
	return Params{Limit: limit, Offset: offset}, nil
}

// IntParam returns q[name] as an integer in [lo, hi], or def when absent.
func IntParam(q url.Values, name string, def, lo, hi int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidParam, name, lo, hi)
	}
	return n, nil
}

func (p Params) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("limit", p.Limit), slog.Int("offset", p.Offset))
}

// Metadata describes the page returned by a list endpoint.
type Metadata struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func NewMetadata(p Params, total int64) Metadata {
	return Metadata{Total: total, Limit: p.Limit, Offset: p.Offset}
}
