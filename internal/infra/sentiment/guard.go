package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/internal/resilience/retry"
)

// ErrProviderUnavailable is returned while a provider's breaker is open.
var ErrProviderUnavailable = errors.New("smart sentiment provider unavailable")

// CompleterOption configures a provider completer.
type CompleterOption func(*completerOptions)

type completerOptions struct {
	baseURL     string
	retryConfig retry.Config
	breaker     *circuitbreaker.Config
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(url string) CompleterOption {
	return func(o *completerOptions) { o.baseURL = url }
}

// WithRetryConfig replaces retry.AIAPIConfig.
func WithRetryConfig(cfg retry.Config) CompleterOption {
	return func(o *completerOptions) { o.retryConfig = cfg }
}

// WithBreakerConfig replaces the provider's default breaker settings.
func WithBreakerConfig(cfg circuitbreaker.Config) CompleterOption {
	return func(o *completerOptions) { o.breaker = &cfg }
}

func buildOptions(opts []CompleterOption) completerOptions {
	o := completerOptions{retryConfig: retry.AIAPIConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// guard runs provider calls under one timeout, a breaker and retries. The
// SDK clients have their own retries turned off.
type guard struct {
	provider string
	timeout  time.Duration
	breaker  *circuitbreaker.CircuitBreaker
	retry    retry.Config
}

func newGuard(provider string, timeout time.Duration, def circuitbreaker.Config, o completerOptions) guard {
	if o.breaker != nil {
		def = *o.breaker
	}
	return guard{
		provider: provider,
		timeout:  timeout,
		breaker:  circuitbreaker.New(def),
		retry:    o.retryConfig,
	}
}

func (g guard) run(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reply string
	err := retry.WithBackoff(ctx, g.retry, func() error {
		out, err := g.breaker.Execute(func() (interface{}, error) {
			start := time.Now()
			text, err := call(ctx)
			logAttrs := []any{
				slog.String("provider", g.provider),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				slog.ErrorContext(ctx, "smart sentiment call failed", append(logAttrs, slog.Any("error", err))...)
				return nil, err
			}
			slog.DebugContext(ctx, "smart sentiment call finished", logAttrs...)
			return text, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.WarnContext(ctx, "smart sentiment breaker open",
				slog.String("provider", g.provider),
				slog.String("state", g.breaker.State().String()))
			return fmt.Errorf("%w: %s", ErrProviderUnavailable, g.provider)
		}
		if err != nil {
			return err
		}
		reply = out.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s sentiment failed: %w", g.provider, err)
	}
	return reply, nil
}
