// Package extractor reduces retrieved markup to plain text through an ordered
// list of named strategies. Each strategy reports Extracted, Empty or Failed;
// the first Extracted result wins and the rest are never run.
package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"literary-analysis/internal/usecase/fetch"
)

// Outcome is the tri-state result of a single strategy.
type Outcome int

const (
	// Extracted means the strategy produced usable text.
	Extracted Outcome = iota
	// Empty means the strategy ran but found nothing, or found too little.
	Empty
	// Failed means the strategy could not process the markup at all.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Extracted:
		return "extracted"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a Strategy returns. Err is set only for Failed.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

func extracted(text string) Result { return Result{Outcome: Extracted, Text: text} }
func empty() Result                { return Result{Outcome: Empty} }
func failed(err error) Result      { return Result{Outcome: Failed, Err: err} }

// Strategy is one rung of the extraction ladder.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, markup string, pageURL *url.URL) Result
}

// DefaultMinTextLength is the smallest trimmed output, in characters, that
// counts as content.
const DefaultMinTextLength = 1

// Pipeline runs strategies in order until one extracts text.
// It is stateless after construction and safe for concurrent use.
type Pipeline struct {
	strategies []Strategy
	minLength  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMinTextLength sets the threshold below which output counts as empty.
func WithMinTextLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minLength = n
		}
	}
}

// WithLogger sets the logger used for per-strategy debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline builds a pipeline over strategies, evaluated in the given order.
func NewPipeline(strategies []Strategy, opts ...Option) *Pipeline {
	p := &Pipeline{
		strategies: strategies,
		minLength:  DefaultMinTextLength,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultStrategies returns the production ladder: syndication feeds first
// (they are skipped for ordinary pages), then readability, paragraphs and
// whole-document text.
func DefaultStrategies() []Strategy {
	return []Strategy{
		NewFeedStrategy(),
		NewReadabilityStrategy(),
		NewParagraphStrategy(),
		NewDocumentStrategy(),
	}
}

// NewDefaultPipeline is NewPipeline(DefaultStrategies(), opts...).
func NewDefaultPipeline(opts ...Option) *Pipeline {
	return NewPipeline(DefaultStrategies(), opts...)
}

// Names lists the strategy names in evaluation order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.strategies))
	for i, s := range p.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract returns the text of the first strategy that produces at least the
// minimum length, or fetch.ErrNoExtractableContent when none does. A Failed
// strategy is logged and skipped; it is not an error for the caller.
func (p *Pipeline) Extract(ctx context.Context, markup string, pageURL *url.URL) (fetch.Extraction, error) {
	if strings.TrimSpace(markup) == "" {
		return fetch.Extraction{}, fetch.ErrNoExtractableContent
	}

	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			return fetch.Extraction{}, err
		}

		res := s.Extract(ctx, markup, pageURL)
		if res.Outcome == Extracted {
			text := strings.TrimSpace(res.Text)
			if utf8.RuneCountInString(text) >= p.minLength {
				return fetch.Extraction{Text: text, Strategy: s.Name()}, nil
			}
			res = empty()
		}

		attrs := []any{slog.String("strategy", s.Name()), slog.String("outcome", res.Outcome.String())}
		if res.Err != nil {
			attrs = append(attrs, slog.Any("error", res.Err))
		}
		p.logger.Debug("extraction strategy yielded nothing", attrs...)
	}
	return fetch.Extraction{}, fetch.ErrNoExtractableContent
}
