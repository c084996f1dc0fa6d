// Package config reads process configuration from environment variables.
//
// Getters never fail: an unset or blank variable yields the default, and a
// value that does not parse is logged at Warn and also yields the default.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring malformed environment variable",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvString returns the variable verbatim, or def when it is unset.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

// GetEnvBool accepts the spellings of strconv.ParseBool.
func GetEnvBool(key string, def bool) bool {
	return lookup(key, def, strconv.ParseBool)
}

// GetEnvDuration parses values such as "30s" or "1h30m".
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

func GetEnvFloat(key string, def float64) float64 {
	return lookup(key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvStringList splits a comma separated value and drops blank items.
//
//	TRUSTED_PROXIES="10.0.0.0/8, 172.16.0.0/12" -> ["10.0.0.0/8" "172.16.0.0/12"]
func GetEnvStringList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}
