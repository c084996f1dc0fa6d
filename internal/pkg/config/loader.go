// Package config reads process settings from the environment with a
// fail-open policy: a value that does not parse or validate is replaced by
// its default and reported as a warning, never as an error. Callers log the
// warnings and record them with ConfigMetrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Outcome reports whether a loaded value had to fall back to its default.
type Outcome struct {
	// Warnings holds one message per rejected value, in the form
	// `invalid KEY="raw": reason, using default "def"`.
	Warnings        []string
	FallbackApplied bool
}

// Loaded is a value read by one of the LoadEnv functions.
type Loaded[T any] struct {
	Value T
	Outcome
}

// LoadEnvString returns the variable or def when it is unset or empty.
// There is no validation, so there is never a fallback.
func LoadEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadEnvWithFallback returns the variable when validate accepts it and def
// otherwise. A nil validate accepts every value.
//
//	cron := LoadEnvWithFallback("RETENTION_CRON", "0 3 * * *", ValidateCronSchedule)
func LoadEnvWithFallback(key, def string, validate func(string) error) Loaded[string] {
	return load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration parses the variable with time.ParseDuration.
//
//	timeout := LoadEnvDuration("RETENTION_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)
func LoadEnvDuration(key string, def time.Duration, validate func(time.Duration) error) Loaded[time.Duration] {
	return load(key, def, time.ParseDuration, validate)
}

// LoadEnvInt parses the variable as a base 10 integer.
func LoadEnvInt(key string, def int, validate func(int) error) Loaded[int] {
	return load(key, def, strconv.Atoi, validate)
}

// LoadEnvBool parses the variable with strconv.ParseBool.
func LoadEnvBool(key string, def bool) Loaded[bool] {
	return load(key, def, strconv.ParseBool, nil)
}

func load[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Loaded[T] {
	raw := os.Getenv(key)
	if raw == "" {
		return Loaded[T]{Value: def}
	}

	v, err := parse(strings.TrimSpace(raw))
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Loaded[T]{
			Value: def,
			Outcome: Outcome{
				Warnings:        []string{fmt.Sprintf("invalid %s=%q: %v, using default \"%v\"", key, raw, err, def)},
				FallbackApplied: true,
			},
		}
	}
	return Loaded[T]{Value: v}
}
