// Package embedding turns analysed text into vectors for similarity search.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/internal/resilience/retry"
	"literary-analysis/internal/utils/text"
	"literary-analysis/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// Defaults for the embedding model.
const (
	DefaultModel     = string(openai.SmallEmbedding3)
	DefaultDimension = 1536
	// DefaultMaxInputChars keeps requests well below the model token limit.
	DefaultMaxInputChars = 8000
)

// Config holds the embedding configuration.
//
// Environment variables:
//   - EMBEDDINGS_ENABLED (default false)
//   - EMBEDDING_MODEL (default "text-embedding-3-small")
//   - EMBEDDING_DIMENSION (default 1536; must match the vector column)
//   - EMBEDDING_TIMEOUT (default "30s")
//   - OPENAI_API_KEY
type Config struct {
	Enabled       bool
	APIKey        string
	Model         string
	Dimension     int
	Timeout       time.Duration
	MaxInputChars int
}

// LoadConfigFromEnv reads the embedding variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Enabled:       config.GetEnvBool("EMBEDDINGS_ENABLED", false),
		APIKey:        config.GetEnvString("OPENAI_API_KEY", ""),
		Model:         config.GetEnvString("EMBEDDING_MODEL", DefaultModel),
		Dimension:     config.GetEnvInt("EMBEDDING_DIMENSION", DefaultDimension),
		Timeout:       config.GetEnvDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		MaxInputChars: DefaultMaxInputChars,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks an enabled configuration is usable.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required when EMBEDDINGS_ENABLED=true")
	}
	if c.Dimension <= 0 || c.Dimension > 4096 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be between 1 and 4096, got %d", c.Dimension)
	}
	if err := config.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("EMBEDDING_TIMEOUT: %w", err)
	}
	return nil
}

// OpenAIEmbedder calls the embeddings API with circuit breaker and retry
// protection.
type OpenAIEmbedder struct {
	client         *openai.Client
	model          string
	dimension      int
	timeout        time.Duration
	maxInputChars  int
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// Option configures an OpenAIEmbedder.
type Option func(*OpenAIEmbedder, *openai.ClientConfig)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(url string) Option {
	return func(_ *OpenAIEmbedder, c *openai.ClientConfig) { c.BaseURL = url }
}

// WithRetryConfig replaces retry.AIAPIConfig.
func WithRetryConfig(cfg retry.Config) Option {
	return func(e *OpenAIEmbedder, _ *openai.ClientConfig) { e.retryConfig = cfg }
}

// NewOpenAIEmbedder builds an embedder from cfg.
func NewOpenAIEmbedder(cfg Config, opts ...Option) *OpenAIEmbedder {
	e := &OpenAIEmbedder{
		model:          cfg.Model,
		dimension:      cfg.Dimension,
		timeout:        cfg.Timeout,
		maxInputChars:  cfg.MaxInputChars,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EmbeddingAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
	}
	if e.model == "" {
		e.model = DefaultModel
	}
	if e.maxInputChars <= 0 {
		e.maxInputChars = DefaultMaxInputChars
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	for _, opt := range opts {
		opt(e, &clientCfg)
	}
	e.client = openai.NewClientWithConfig(clientCfg)
	return e
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Embed returns the vector for s. Long input is truncated.
func (e *OpenAIEmbedder) Embed(ctx context.Context, s string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	input := text.TruncateRunes(s, e.maxInputChars)

	var vector []float32
	retryErr := retry.WithBackoff(ctx, e.retryConfig, func() error {
		cbResult, err := e.circuitBreaker.Execute(func() (interface{}, error) {
			return e.doEmbed(ctx, input)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("embedding api circuit breaker open, request rejected",
					slog.String("service", "openai-embeddings"),
					slog.String("state", e.circuitBreaker.State().String()))
				return fmt.Errorf("embedding api unavailable: circuit breaker open")
			}
			return err
		}
		vector = cbResult.([]float32)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("embedding failed: %w", retryErr)
	}
	return vector, nil
}

func (e *OpenAIEmbedder) doEmbed(ctx context.Context, input string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{input},
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimension > 0 && e.model != string(openai.AdaEmbeddingV2) {
		req.Dimensions = e.dimension
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("embedding api error: %w", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message})
		}
		return nil, fmt.Errorf("embedding api error: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding api returned empty response")
	}
	return resp.Data[0].Embedding, nil
}
