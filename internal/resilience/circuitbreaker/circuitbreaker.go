// Package circuitbreaker fails fast on dependencies that keep erroring: the
// sentiment and embedding providers, the upload archive and the database.
// It is a thin layer over github.com/sony/gobreaker that adds ratio based
// tripping, named presets and a per breaker state gauge.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// stateGauge exposes 0 (closed), 1 (half-open) or 2 (open) per breaker.
var stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "circuit_breaker_state",
	Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
}, []string{"name"})

// Config describes when a breaker opens and how it recovers.
type Config struct {
	Name string
	// MaxRequests may pass while half-open; that many successes close it.
	MaxRequests uint32
	// Interval clears the closed state counts; zero never clears them.
	Interval time.Duration
	// Timeout is spent open before the breaker lets a probe through.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that opens the breaker once
	// MinRequests calls have been counted.
	FailureThreshold float64
	MinRequests      uint32
	// IsSuccessful decides which errors count as failures. Nil counts all.
	IsSuccessful func(err error) bool
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func ClaudeAPIConfig() Config { return DefaultConfig("claude-api") }

func OpenAIAPIConfig() Config { return DefaultConfig("openai-api") }

// EmbeddingAPIConfig opens sooner and stays open longer than the sentiment
// providers; similarity search can wait, analyses cannot.
func EmbeddingAPIConfig() Config {
	c := DefaultConfig("embedding-api")
	c.MaxRequests = 2
	c.Interval = time.Minute
	c.Timeout = 2 * time.Minute
	c.FailureThreshold = 0.5
	c.MinRequests = 4
	return c
}

// StorageConfig guards the upload archive.
func StorageConfig() Config {
	c := DefaultConfig("upload-storage")
	c.Interval = time.Minute
	c.Timeout = 30 * time.Second
	c.FailureThreshold = 0.7
	c.MinRequests = 10
	return c
}

type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	stateGauge.WithLabelValues(cfg.Name).Set(0)
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         cfg.Name,
			MaxRequests:  cfg.MaxRequests,
			Interval:     cfg.Interval,
			Timeout:      cfg.Timeout,
			IsSuccessful: cfg.IsSuccessful,
			ReadyToTrip:  ratioTrip(cfg.MinRequests, cfg.FailureThreshold),
			OnStateChange: func(name string, from, to gobreaker.State) {
				stateGauge.WithLabelValues(name).Set(float64(to))
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

func ratioTrip(min uint32, threshold float64) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		return c.Requests >= min && float64(c.TotalFailures)/float64(c.Requests) >= threshold
	}
}

// Execute runs fn unless the breaker is open, in which case it returns
// gobreaker.ErrOpenState without calling fn. Half-open calls beyond
// MaxRequests get gobreaker.ErrTooManyRequests.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

func (cb *CircuitBreaker) IsOpen() bool { return cb.breaker.State() == gobreaker.StateOpen }
