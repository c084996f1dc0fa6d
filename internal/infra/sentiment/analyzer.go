package sentiment

import (
	"context"
	"log/slog"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/observability/metrics"
)

// Scorer produces a sentiment for a text.
type Scorer interface {
	Score(ctx context.Context, text string) (entity.Sentiment, error)
	Name() string
	Version() string
}

// Model version suffixes recorded when smart mode could not use the LLM.
const (
	suffixUnavailable = "+smart-unavailable"
	suffixFailed      = "+smart-failed"
)

// Result is one scored text with the model version that produced it.
type Result struct {
	Sentiment    entity.Sentiment
	ModelVersion string
}

// Analyzer picks the scorer for a mode. The smart capability is decided once
// in NewAnalyzer and never re-probed per request.
type Analyzer struct {
	fast       Scorer
	smart      Scorer
	capability Capability
	logger     *slog.Logger
}

// NewAnalyzer detects the smart capability from cfg and builds the matching
// provider client.
func NewAnalyzer(cfg SmartConfig, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	capability := DetectCapability(cfg)

	var smart Scorer
	if capability.Available {
		var completer Completer
		switch capability.Provider {
		case ProviderOpenAI:
			completer = NewOpenAICompleter(cfg)
		case ProviderClaude:
			completer = NewClaudeCompleter(cfg)
		}
		smart = NewLLMScorer(completer, cfg.MaxInputChars)
		logger.Info("smart sentiment enabled",
			slog.String("provider", capability.Provider),
			slog.String("model", capability.Model))
	} else {
		logger.Info("smart sentiment unavailable, smart mode uses the lexicon",
			slog.String("reason", capability.Reason))
	}

	return NewAnalyzerWith(NewLexicon(), smart, capability, logger)
}

// NewAnalyzerWith assembles an analyzer from explicit scorers. smart may be nil.
func NewAnalyzerWith(fast, smart Scorer, capability Capability, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if smart == nil {
		capability.Available = false
	}
	return &Analyzer{fast: fast, smart: smart, capability: capability, logger: logger}
}

// Capability reports what was detected at startup.
func (a *Analyzer) Capability() Capability {
	return a.capability
}

// Analyze scores text. Smart mode falls back to the fast scorer when the LLM
// is unavailable or fails; the returned model version records the fallback.
func (a *Analyzer) Analyze(ctx context.Context, text string, mode entity.Mode) (Result, error) {
	if mode == entity.ModeSmart {
		if !a.capability.Available {
			res, err := a.scoreFast(ctx, text)
			res.ModelVersion += suffixUnavailable
			return res, err
		}

		s, err := a.smart.Score(ctx, text)
		metrics.RecordSentiment(a.smart.Name(), err == nil)
		if err == nil {
			return Result{Sentiment: s, ModelVersion: a.smart.Version()}, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		a.logger.WarnContext(ctx, "smart sentiment failed, falling back to lexicon",
			slog.String("provider", a.smart.Name()),
			slog.Any("error", err))

		res, ferr := a.scoreFast(ctx, text)
		res.ModelVersion += suffixFailed
		return res, ferr
	}
	return a.scoreFast(ctx, text)
}

func (a *Analyzer) scoreFast(ctx context.Context, text string) (Result, error) {
	s, err := a.fast.Score(ctx, text)
	metrics.RecordSentiment(a.fast.Name(), err == nil)
	if err != nil {
		return Result{}, err
	}
	return Result{Sentiment: s, ModelVersion: a.fast.Version()}, nil
}
