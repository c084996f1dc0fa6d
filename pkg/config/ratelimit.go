package config

import (
	"log/slog"
	"time"
)

// RateLimitConfig configures the per-client limiter on the analyze endpoints.
type RateLimitConfig struct {
	Enabled         bool
	PerMinute       int
	Burst           int
	IdleTTL         time.Duration // idle client buckets older than this are dropped
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig allows 30 requests per minute with bursts of 10.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:         true,
		PerMinute:       30,
		Burst:           10,
		IdleTTL:         10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// LoadRateLimitConfig reads RATELIMIT_ENABLED, RATELIMIT_ANALYZE_PER_MINUTE,
// RATELIMIT_ANALYZE_BURST, RATELIMIT_IDLE_TTL and RATELIMIT_CLEANUP_INTERVAL.
// Values that are not positive fall back to the defaults.
func LoadRateLimitConfig() RateLimitConfig {
	def := DefaultRateLimitConfig()
	return RateLimitConfig{
		Enabled:         GetEnvBool("RATELIMIT_ENABLED", def.Enabled),
		PerMinute:       positive("RATELIMIT_ANALYZE_PER_MINUTE", GetEnvInt("RATELIMIT_ANALYZE_PER_MINUTE", def.PerMinute), def.PerMinute),
		Burst:           positive("RATELIMIT_ANALYZE_BURST", GetEnvInt("RATELIMIT_ANALYZE_BURST", def.Burst), def.Burst),
		IdleTTL:         positive("RATELIMIT_IDLE_TTL", GetEnvDuration("RATELIMIT_IDLE_TTL", def.IdleTTL), def.IdleTTL),
		CleanupInterval: positive("RATELIMIT_CLEANUP_INTERVAL", GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", def.CleanupInterval), def.CleanupInterval),
	}
}

func positive[T int | time.Duration](key string, v, def T) T {
	if v > 0 {
		return v
	}
	slog.Warn("non-positive rate limit setting, using default",
		slog.String("key", key),
		slog.Any("value", v),
		slog.Any("default", def))
	return def
}
