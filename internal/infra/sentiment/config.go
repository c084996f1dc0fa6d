package sentiment

import (
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	pkgconfig "literary-analysis/internal/pkg/config"
)

// Provider names accepted in SMART_SENTIMENT_PROVIDER.
const (
	ProviderNone   = ""
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// SmartConfig configures the LLM scorer used by smart mode.
//
// Environment variables:
//   - SMART_SENTIMENT_PROVIDER: "openai", "claude" or empty (disabled)
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY
//   - SMART_SENTIMENT_MODEL: overrides the provider default model
//   - SMART_SENTIMENT_TIMEOUT (default "30s")
//   - SMART_SENTIMENT_MAX_CHARS (default 10000)
type SmartConfig struct {
	Provider        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Model           string
	Timeout         time.Duration
	MaxInputChars   int
	MaxTokens       int
}

// DefaultSmartConfig returns a disabled configuration.
func DefaultSmartConfig() SmartConfig {
	return SmartConfig{
		Provider:      ProviderNone,
		Timeout:       30 * time.Second,
		MaxInputChars: 10000,
		MaxTokens:     256,
	}
}

// Validate checks the provider name and limits.
func (c *SmartConfig) Validate() error {
	switch c.Provider {
	case ProviderNone, ProviderOpenAI, ProviderClaude:
	default:
		return fmt.Errorf("smart sentiment provider must be openai or claude, got %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxInputChars < 100 {
		return fmt.Errorf("max input chars must be at least 100, got %d", c.MaxInputChars)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// ModelOrDefault returns the configured model or the provider default.
func (c *SmartConfig) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderClaude:
		return string(anthropic.ModelClaudeSonnet4_5_20250929)
	default:
		return ""
	}
}

// LoadSmartConfigFromEnv reads SMART_SENTIMENT_* and the provider API keys.
// Malformed numeric values fall back to defaults with a warning; an unknown
// provider is an error.
func LoadSmartConfigFromEnv() (SmartConfig, []string, error) {
	cfg := DefaultSmartConfig()
	var warnings []string

	cfg.Provider = pkgconfig.LoadEnvString("SMART_SENTIMENT_PROVIDER", ProviderNone)
	cfg.OpenAIAPIKey = pkgconfig.LoadEnvString("OPENAI_API_KEY", "")
	cfg.AnthropicAPIKey = pkgconfig.LoadEnvString("ANTHROPIC_API_KEY", "")
	cfg.Model = pkgconfig.LoadEnvString("SMART_SENTIMENT_MODEL", "")

	timeout := pkgconfig.LoadEnvDuration("SMART_SENTIMENT_TIMEOUT", cfg.Timeout, pkgconfig.ValidatePositiveDuration)
	cfg.Timeout = timeout.Value
	warnings = append(warnings, timeout.Warnings...)

	maxChars := pkgconfig.LoadEnvInt("SMART_SENTIMENT_MAX_CHARS", cfg.MaxInputChars, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 100, 100000)
	})
	cfg.MaxInputChars = maxChars.Value
	warnings = append(warnings, maxChars.Warnings...)

	if err := cfg.Validate(); err != nil {
		return cfg, warnings, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, warnings, nil
}

// Capability records, once at startup, whether smart mode can reach an LLM.
type Capability struct {
	Available bool
	Provider  string
	Model     string
	Reason    string
}

// DetectCapability inspects cfg without making any network call.
func DetectCapability(cfg SmartConfig) Capability {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Capability{Provider: cfg.Provider, Reason: "OPENAI_API_KEY not set"}
		}
	case ProviderClaude:
		if cfg.AnthropicAPIKey == "" {
			return Capability{Provider: cfg.Provider, Reason: "ANTHROPIC_API_KEY not set"}
		}
	default:
		return Capability{Reason: "no smart sentiment provider configured"}
	}
	return Capability{Available: true, Provider: cfg.Provider, Model: cfg.ModelOrDefault()}
}
