package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/internal/resilience/retry"
)

// ClaudeCompleter calls the Messages API.
type ClaudeCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	guard     guard
}

// NewClaudeCompleter builds a completer from cfg.AnthropicAPIKey.
func NewClaudeCompleter(cfg SmartConfig, opts ...CompleterOption) *ClaudeCompleter {
	o := buildOptions(opts)
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	return &ClaudeCompleter{
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.ModelOrDefault(),
		maxTokens: int64(cfg.MaxTokens),
		guard:     newGuard(ProviderClaude, cfg.Timeout, circuitbreaker.ClaudeAPIConfig(), o),
	}
}

func (c *ClaudeCompleter) Provider() string { return ProviderClaude }
func (c *ClaudeCompleter) Model() string    { return c.model }

// Complete sends prompt with system as the system prompt and joins the text
// blocks of the reply.
func (c *ClaudeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return c.guard.run(ctx, func(ctx context.Context) (string, error) {
		msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: c.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		})
		if err != nil {
			var apiErr *anthropic.Error
			if errors.As(err, &apiErr) {
				err = &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
			}
			return "", fmt.Errorf("claude api error: %w", err)
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if text, ok := block.AsAny().(anthropic.TextBlock); ok {
				b.WriteString(text.Text)
			}
		}
		if b.Len() == 0 {
			return "", errors.New("claude api returned no text")
		}
		return b.String(), nil
	})
}
