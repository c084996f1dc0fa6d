package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/utils/text"
)

// Completer sends one prompt to an LLM and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Provider() string
	Model() string
}

// ErrUnparseableReply is returned when the LLM reply carries no usable JSON.
var ErrUnparseableReply = errors.New("llm reply is not a sentiment object")

const systemPrompt = `You are a sentiment classifier. Reply with a single JSON object and nothing else:
{"label": "positive" | "negative" | "neutral", "score": number in [-1, 1], "confidence": number in [0, 1]}`

// LLMScorer scores text through a Completer.
type LLMScorer struct {
	completer Completer
	maxChars  int
}

// NewLLMScorer wraps completer. Input longer than maxChars runes is truncated.
func NewLLMScorer(completer Completer, maxChars int) *LLMScorer {
	return &LLMScorer{completer: completer, maxChars: maxChars}
}

// Name identifies the scorer in metrics.
func (s *LLMScorer) Name() string { return s.completer.Provider() }

// Version is stored as the analysis model_version.
func (s *LLMScorer) Version() string {
	return s.completer.Provider() + ":" + s.completer.Model()
}

// Score asks the LLM for a label, score and confidence.
func (s *LLMScorer) Score(ctx context.Context, input string) (entity.Sentiment, error) {
	if text.CountRunes(input) > s.maxChars {
		input = text.TruncateRunes(input, s.maxChars)
	}
	reply, err := s.completer.Complete(ctx, systemPrompt, "Text:\n"+input)
	if err != nil {
		return entity.Sentiment{}, err
	}
	return parseReply(reply)
}

type llmReply struct {
	Label      string   `json:"label"`
	Score      *float64 `json:"score"`
	Confidence *float64 `json:"confidence"`
}

// parseReply reads the first {...} object in reply. Models sometimes wrap
// JSON in prose or code fences.
func parseReply(reply string) (entity.Sentiment, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return entity.Sentiment{}, ErrUnparseableReply
	}

	var r llmReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return entity.Sentiment{}, fmt.Errorf("%w: %v", ErrUnparseableReply, err)
	}
	if r.Score == nil {
		return entity.Sentiment{}, fmt.Errorf("%w: missing score", ErrUnparseableReply)
	}

	score := round3(math.Max(-1, math.Min(1, *r.Score)))
	label := strings.ToLower(strings.TrimSpace(r.Label))
	switch label {
	case entity.LabelPositive, entity.LabelNegative, entity.LabelNeutral:
	default:
		label = Label(score)
	}

	out := entity.Sentiment{PolarityLabel: label, PolarityScore: score}
	if r.Confidence != nil {
		c := round3(math.Max(0, math.Min(1, *r.Confidence)))
		out.Confidence = &c
	}
	return out, nil
}
