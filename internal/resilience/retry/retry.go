// Package retry re-runs operations that failed for transient reasons, with
// capped exponential backoff and random jitter between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config describes a backoff schedule. The wait after attempt n is
// InitialDelay*Multiplier^(n-1), capped at MaxDelay, plus up to
// JitterFraction of that wait at random.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

func DefaultConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// AIAPIConfig is used for sentiment and embedding providers. Calls are paid
// for, so attempts stay at three.
func AIAPIConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: 2 * time.Second, MaxDelay: 10 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// DBConfig rides out short connection blips, e.g. during a failover.
func DBConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// StorageConfig keeps upload requests from hanging on a slow bucket.
func StorageConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second, Multiplier: 2, JitterFraction: 0.1}
}

// wait returns the pause that follows the given failed attempt.
func (c Config) wait(attempt int) time.Duration {
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(c.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	if j := math.Min(c.JitterFraction, 1); j > 0 {
		d += rand.Float64() * d * j //nolint:gosec // jitter needs no crypto randomness
	}
	return time.Duration(d)
}

// WithBackoff calls fn until it succeeds, returns an error IsRetryable
// rejects, or MaxAttempts calls have failed. Cancelling ctx stops the wait
// between attempts. A non-retryable error is returned unwrapped.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.InfoContext(ctx, "retry succeeded", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}

		d := cfg.wait(attempt)
		slog.WarnContext(ctx, "transient failure, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("backoff", d),
			slog.Any("error", err))

		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, errors.Join(ctx.Err(), err))
		}
	}
}

// HTTPError carries the status of a failed provider or storage call so
// IsRetryable can judge it.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether err looks transient: network timeouts,
// refused or reset connections, and HTTP 408, 429 and 5xx. Context
// cancellation and deadlines never are.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

var transientErrnos = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ETIMEDOUT,
	syscall.ENETUNREACH,
	syscall.EPIPE,
}
