package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"

	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/observability/tracing"
)

// DefaultMaxConcurrent bounds the number of outbound fetches in flight.
const DefaultMaxConcurrent = 16

// ServiceConfig controls the fetch use case.
type ServiceConfig struct {
	// Timeout applied to a single outbound request (including redirects).
	Timeout time.Duration
	// MaxConcurrent outbound fetches across all requests. Callers beyond the
	// bound wait on their own context, so one slow target cannot stall others
	// past their deadline.
	MaxConcurrent int64
}

// Service runs the gate, fetch and extract sequence for a single URL.
type Service struct {
	Gate      URLGate
	Fetcher   ContentFetcher
	Extractor Extractor
	Logger    *slog.Logger

	timeout time.Duration
	sem     *semaphore.Weighted
}

// NewService wires the three collaborators. A nil logger falls back to
// slog.Default().
func NewService(gate URLGate, fetcher ContentFetcher, extractor Extractor, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Gate:      gate,
		Fetcher:   fetcher,
		Extractor: extractor,
		Logger:    logger,
		timeout:   cfg.Timeout,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// FetchText validates rawURL, retrieves it and extracts its readable text.
//
// The URL is never dereferenced before the gate accepts it. Every error
// returned is request-terminal; nothing here is retried.
func (s *Service) FetchText(ctx context.Context, rawURL string) (doc *Document, err error) {
	ctx, span := tracing.GetTracer().Start(ctx, "fetch.text")
	defer func() {
		span.SetAttributes(attribute.String("fetch.outcome", Reason(err)))
		if err != nil {
			span.SetStatus(codes.Error, Reason(err))
		} else {
			span.SetAttributes(attribute.String("fetch.strategy", doc.Strategy))
		}
		span.End()
	}()

	// Gate and fetcher must see one string.
	rawURL = strings.TrimSpace(rawURL)

	addrs, err := s.Gate.Check(ctx, rawURL)
	metrics.RecordGateDecision(Reason(err))
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchTransport, err)
	}
	start := time.Now()
	res, err := s.Fetcher.Fetch(ctx, rawURL, addrs, s.timeout)
	s.sem.Release(1)
	metrics.RecordFetch(Reason(err), time.Since(start))
	if err != nil {
		s.Logger.Warn("fetch failed",
			slog.String("url", rawURL),
			slog.String("reason", Reason(err)),
			slog.Any("error", err))
		return nil, err
	}

	pageURL, err := url.Parse(res.FinalURL)
	if err != nil {
		pageURL = nil
	}
	ext, err := s.Extractor.Extract(ctx, string(res.Body), pageURL)
	if err != nil {
		metrics.RecordExtraction("none")
		return nil, err
	}
	metrics.RecordExtraction(ext.Strategy)

	s.Logger.Info("url content extracted",
		slog.String("url", rawURL),
		slog.String("final_url", res.FinalURL),
		slog.Int("status", res.StatusCode),
		slog.Int("redirects", res.Redirects),
		slog.String("strategy", ext.Strategy),
		slog.Int("chars", len(ext.Text)))

	return &Document{
		URL:      rawURL,
		FinalURL: res.FinalURL,
		Text:     ext.Text,
		Strategy: ext.Strategy,
	}, nil
}
