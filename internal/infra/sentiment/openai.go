package sentiment

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/internal/resilience/retry"
)

// OpenAICompleter calls the chat completions API.
type OpenAICompleter struct {
	client    *openai.Client
	model     string
	maxTokens int
	guard     guard
}

// NewOpenAICompleter builds a completer from cfg.OpenAIAPIKey.
func NewOpenAICompleter(cfg SmartConfig, opts ...CompleterOption) *OpenAICompleter {
	o := buildOptions(opts)
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if o.baseURL != "" {
		clientCfg.BaseURL = o.baseURL
	}
	return &OpenAICompleter{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.ModelOrDefault(),
		maxTokens: cfg.MaxTokens,
		guard:     newGuard(ProviderOpenAI, cfg.Timeout, circuitbreaker.OpenAIAPIConfig(), o),
	}
}

func (o *OpenAICompleter) Provider() string { return ProviderOpenAI }
func (o *OpenAICompleter) Model() string    { return o.model }

// Complete sends system and prompt as a two-message chat.
func (o *OpenAICompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return o.guard.run(ctx, func(ctx context.Context) (string, error) {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     o.model,
			MaxTokens: o.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) {
				err = &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
			}
			return "", fmt.Errorf("openai api error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("openai api returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
}
