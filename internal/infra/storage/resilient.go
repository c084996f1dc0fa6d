package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the storage circuit breaker is open.
var ErrUnavailable = errors.New("upload storage unavailable: circuit breaker open")

// Resilient wraps a remote Store with retry and a circuit breaker.
// ErrNotFound passes through and does not count as a failure.
type Resilient struct {
	next           Store
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewResilient wraps next with circuitbreaker.StorageConfig and
// retry.StorageConfig.
func NewResilient(next Store) *Resilient {
	return NewResilientWithConfig(next, circuitbreaker.StorageConfig(), retry.StorageConfig())
}

// NewResilientWithConfig wraps next with explicit settings.
func NewResilientWithConfig(next Store, cbConfig circuitbreaker.Config, retryConfig retry.Config) *Resilient {
	return &Resilient{
		next:           next,
		circuitBreaker: circuitbreaker.New(cbConfig),
		retryConfig:    retryConfig,
	}
}

// Put stores data under key.
func (r *Resilient) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := r.do(ctx, "put", func() ([]byte, error) {
		return nil, r.next.Put(ctx, key, data, contentType)
	})
	return err
}

// Get reads key.
func (r *Resilient) Get(ctx context.Context, key string) ([]byte, error) {
	return r.do(ctx, "get", func() ([]byte, error) {
		return r.next.Get(ctx, key)
	})
}

// Delete removes key.
func (r *Resilient) Delete(ctx context.Context, key string) error {
	_, err := r.do(ctx, "delete", func() ([]byte, error) {
		return nil, r.next.Delete(ctx, key)
	})
	return err
}

func (r *Resilient) do(ctx context.Context, op string, fn func() ([]byte, error)) ([]byte, error) {
	var out []byte
	var notFound bool
	err := retry.WithBackoff(ctx, r.retryConfig, func() error {
		_, cbErr := r.circuitBreaker.Execute(func() (interface{}, error) {
			data, err := fn()
			if errors.Is(err, ErrNotFound) {
				notFound = true
				return nil, nil
			}
			if err != nil {
				return nil, classify(err)
			}
			out = data
			return nil, nil
		})
		if errors.Is(cbErr, gobreaker.ErrOpenState) || errors.Is(cbErr, gobreaker.ErrTooManyRequests) {
			slog.Warn("storage circuit breaker open, request rejected",
				slog.String("operation", op),
				slog.String("state", r.circuitBreaker.State().String()))
			return ErrUnavailable
		}
		return cbErr
	})
	if err != nil {
		return nil, fmt.Errorf("storage %s: %w", op, err)
	}
	if notFound {
		return nil, ErrNotFound
	}
	return out, nil
}

// statusCoder is implemented by AWS SDK response errors.
type statusCoder interface {
	HTTPStatusCode() int
}

// classify exposes the HTTP status of SDK errors to retry.IsRetryable.
func classify(err error) error {
	var sc statusCoder
	if errors.As(err, &sc) {
		return fmt.Errorf("%w: %w", &retry.HTTPError{StatusCode: sc.HTTPStatusCode(), Message: err.Error()}, err)
	}
	return err
}
