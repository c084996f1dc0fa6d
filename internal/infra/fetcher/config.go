package fetcher

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"literary-analysis/pkg/config"
)

// Config holds the URL fetch configuration.
//
// Environment variables:
//   - URL_FETCH_TIMEOUT (default "10s")
//   - URL_FETCH_RESOLVE_TIMEOUT (default "5s")
//   - URL_FETCH_MAX_BODY_SIZE bytes (default 10MB)
//   - URL_FETCH_MAX_REDIRECTS (default 5)
//   - URL_FETCH_MAX_CONCURRENT (default 16)
//   - URL_FETCH_USER_AGENT
//   - URL_FETCH_EXTRA_BLOCKED_CIDRS comma separated, appended to the built-in table
//
// The blocklist itself cannot be switched off.
type Config struct {
	Timeout        time.Duration // one fetch, redirects and body read included
	ResolveTimeout time.Duration // the gate's single name resolution
	MaxBodySize    int64
	MaxRedirects   int // 0 disables redirects
	MaxConcurrent  int // in-flight fetches, process wide
	UserAgent      string

	ExtraBlockedCIDRs []string
}

const (
	minBodySize     = 1 << 10
	maxBodySize     = 100 << 20
	maxRedirectsCap = 10
	maxConcurrency  = 256
)

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		ResolveTimeout: DefaultResolveTimeout,
		MaxBodySize:    10 << 20,
		MaxRedirects:   5,
		MaxConcurrent:  16,
		UserAgent:      "literary-analysis/1.0 (+url-analysis)",
	}
}

// Validate reports every out of range field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	if c.ResolveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("resolve timeout must be positive, got %v", c.ResolveTimeout))
	}
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		errs = append(errs, fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize))
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > maxRedirectsCap {
		errs = append(errs, fmt.Errorf("max redirects must be between 0 and %d, got %d", maxRedirectsCap, c.MaxRedirects))
	}
	if c.MaxConcurrent < 1 || c.MaxConcurrent > maxConcurrency {
		errs = append(errs, fmt.Errorf("max concurrent must be between 1 and %d, got %d", maxConcurrency, c.MaxConcurrent))
	}
	for _, cidr := range c.ExtraBlockedCIDRs {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			errs = append(errs, fmt.Errorf("extra blocked cidr %q: %w", cidr, err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads URL_FETCH_* variables over DefaultConfig. Numeric
// and duration values that do not parse are errors, not defaults.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	fields := []struct {
		key string
		set func(string) error
	}{
		{"URL_FETCH_TIMEOUT", durationField(&cfg.Timeout)},
		{"URL_FETCH_RESOLVE_TIMEOUT", durationField(&cfg.ResolveTimeout)},
		{"URL_FETCH_MAX_BODY_SIZE", func(v string) (err error) {
			cfg.MaxBodySize, err = strconv.ParseInt(v, 10, 64)
			return err
		}},
		{"URL_FETCH_MAX_REDIRECTS", intField(&cfg.MaxRedirects)},
		{"URL_FETCH_MAX_CONCURRENT", intField(&cfg.MaxConcurrent)},
	}

	var errs []error
	for _, f := range fields {
		raw := strings.TrimSpace(os.Getenv(f.key))
		if raw == "" {
			continue
		}
		if err := f.set(raw); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s=%q: %w", f.key, raw, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}

	cfg.UserAgent = config.GetEnvString("URL_FETCH_USER_AGENT", cfg.UserAgent)
	cfg.ExtraBlockedCIDRs = config.GetEnvStringList("URL_FETCH_EXTRA_BLOCKED_CIDRS", nil)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("url fetch configuration: %w", err)
	}
	return cfg, nil
}

func durationField(dst *time.Duration) func(string) error {
	return func(v string) (err error) {
		*dst, err = time.ParseDuration(v)
		return err
	}
}

func intField(dst *int) func(string) error {
	return func(v string) (err error) {
		*dst, err = strconv.Atoi(v)
		return err
	}
}
