package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"literary-analysis/internal/common/pagination"
	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/infra/ocr"
	"literary-analysis/internal/infra/storage"
	"literary-analysis/internal/infra/textstats"
	"literary-analysis/internal/infra/upload"
	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/observability/tracing"
	"literary-analysis/internal/repository"
)

// LiteraryModelVersion is appended to the sentiment model version of
// literary analyses.
const LiteraryModelVersion = "literary-heuristic-1"

// Text sources recorded in entity.ImageMetadata.
const (
	TextSourcePDF = "pdf_text"
	TextSourceOCR = "ocr"
)

const maxFilenameLength = 255

// TextInput is the input of AnalyzeText.
type TextInput struct {
	Text string
	Mode entity.Mode
}

// URLInput is the input of AnalyzeURL.
type URLInput struct {
	URL  string
	Mode entity.Mode
}

// ImageInput is the input of AnalyzeImage.
type ImageInput struct {
	Data     []byte
	Filename string
	Mode     entity.Mode
}

// LiteraryInput is the input of AnalyzeLiterary. Language and SummaryLength
// must already be parsed with entity.ParseLanguage and
// entity.ParseSummaryLength.
type LiteraryInput struct {
	Text          string
	Language      string
	SummaryLength string
}

// ListInput selects a page of analyses.
type ListInput struct {
	Params  pagination.Params
	Filters repository.AnalysisFilters
}

// ListResult is one page of analyses.
type ListResult struct {
	Analyses   []*entity.Analysis
	Pagination pagination.Metadata
}

// SimilarResult is one neighbour found by Similar.
type SimilarResult struct {
	Analysis   *entity.Analysis
	Similarity float64
}

// Deps are the collaborators of Service. Uploads, Events and Embeddings are
// optional.
type Deps struct {
	Repo      repository.AnalysisRepository
	Sentiment SentimentAnalyzer
	Keywords  KeywordExtractor
	Literary  LiteraryAnalyzer
	URLs      URLFetcher
	OCR       TextRecognizer

	Uploads    UploadStore
	Events     EventPublisher
	Embeddings *EmbeddingHook

	// MaxUploadBytes bounds AnalyzeImage input. Zero disables the check.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Service provides the analysis use cases. Every successful analysis is
// persisted, announced and queued for embedding.
type Service struct {
	repo       repository.AnalysisRepository
	sentiment  SentimentAnalyzer
	keywords   KeywordExtractor
	literary   LiteraryAnalyzer
	urls       URLFetcher
	ocr        TextRecognizer
	uploads    UploadStore
	events     EventPublisher
	embeddings *EmbeddingHook
	maxUpload  int64
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires d into a Service. A nil OCR falls back to a recognizer
// that always reports OCR as disabled.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.OCR == nil {
		d.OCR = ocr.NewNoopRecognizer()
	}
	return &Service{
		repo:       d.Repo,
		sentiment:  d.Sentiment,
		keywords:   d.Keywords,
		literary:   d.Literary,
		urls:       d.URLs,
		ocr:        d.OCR,
		uploads:    d.Uploads,
		events:     d.Events,
		embeddings: d.Embeddings,
		maxUpload:  d.MaxUploadBytes,
		logger:     d.Logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

/* ───────────────────────────── Analyze ───────────────────────────── */

// AnalyzeText scores a text supplied in the request body.
func (s *Service) AnalyzeText(ctx context.Context, in TextInput) (*entity.Analysis, error) {
	if err := entity.ValidateText(in.Text); err != nil {
		return nil, err
	}
	a := &entity.Analysis{
		SourceType:   entity.SourceTypeText,
		RawInputHash: entity.HashInput([]byte(in.Text)),
	}
	return s.run(ctx, a, in.Text, in.Mode)
}

// AnalyzeURL fetches rawURL through the URL gate and scores its readable
// text. Gate rejections and fetch failures are returned unchanged so callers
// can classify them with the fetch package helpers.
func (s *Service) AnalyzeURL(ctx context.Context, in URLInput) (*entity.Analysis, error) {
	if err := entity.ValidateURL(in.URL); err != nil {
		return nil, err
	}
	doc, err := s.urls.FetchText(ctx, in.URL)
	if err != nil {
		return nil, err
	}
	body := clampText(doc.Text, entity.MaxTextLength)
	if strings.TrimSpace(body) == "" {
		return nil, entity.ErrEmptyText
	}
	a := &entity.Analysis{
		SourceType:   entity.SourceTypeURL,
		RawInputHash: entity.HashInput([]byte(in.URL)),
		URL:          in.URL,
	}
	return s.run(ctx, a, body, in.Mode)
}

// AnalyzeImage reads the text of an uploaded image or PDF and scores it.
// PDFs use their text layer; images, and PDFs without one, go through OCR.
func (s *Service) AnalyzeImage(ctx context.Context, in ImageInput) (*entity.Analysis, error) {
	if len(in.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	if s.maxUpload > 0 && int64(len(in.Data)) > s.maxUpload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrUploadTooLarge, len(in.Data), s.maxUpload)
	}

	info, err := upload.Inspect(in.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedUpload, err)
	}
	meta := info.Metadata()

	body, err := s.uploadText(ctx, in.Data, info, meta)
	if err != nil {
		return nil, err
	}
	body = clampText(body, entity.MaxTextLength)
	if strings.TrimSpace(body) == "" {
		return nil, entity.ErrEmptyText
	}

	hash := entity.HashInput(in.Data)
	if s.uploads != nil {
		key := storage.Key(hash, info.ContentType)
		if err := s.uploads.Put(ctx, key, in.Data, info.ContentType); err != nil {
			s.logger.WarnContext(ctx, "upload archive failed",
				slog.String("key", key),
				slog.Any("error", err))
		} else {
			meta.StorageKey = key
		}
	}

	a := &entity.Analysis{
		SourceType:   entity.SourceTypeImage,
		RawInputHash: hash,
		Filename:     cleanFilename(in.Filename),
	}
	a.Result.Image = meta
	return s.run(ctx, a, body, in.Mode)
}

func (s *Service) uploadText(ctx context.Context, data []byte, info upload.Info, meta *entity.ImageMetadata) (string, error) {
	if info.IsPDF() {
		body, pages, err := upload.PDFText(data)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupportedUpload, err)
		}
		meta.Pages = pages
		if strings.TrimSpace(body) != "" {
			meta.TextSource = TextSourcePDF
			return body, nil
		}
	}

	body, err := s.ocr.Recognize(ctx, data, info.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrInvalidImage):
			return "", fmt.Errorf("%w: %w", ErrUnsupportedUpload, err)
		case errors.Is(err, ocr.ErrOCRDisabled),
			errors.Is(err, ocr.ErrOCRUnavailable),
			errors.Is(err, ocr.ErrCircuitBreakerOpen),
			errors.Is(err, ocr.ErrTimeout):
			return "", fmt.Errorf("%w: %w", ErrOCRUnavailable, err)
		default:
			return "", fmt.Errorf("recognize upload: %w", err)
		}
	}
	meta.TextSource = TextSourceOCR
	return body, nil
}

// AnalyzeLiterary scores a text and annotates it with literary insights.
func (s *Service) AnalyzeLiterary(ctx context.Context, in LiteraryInput) (*entity.Analysis, error) {
	insights, err := s.literary.Analyze(in.Text, in.Language, in.SummaryLength)
	if err != nil {
		return nil, err
	}
	a := &entity.Analysis{
		SourceType:   entity.SourceTypeText,
		RawInputHash: entity.HashInput([]byte(in.Text)),
	}
	a.Result.Literary = insights
	return s.run(ctx, a, in.Text, entity.ModeFast)
}

// run scores body, fills a and persists it. Fields already set on a.Result
// (literary insights, image metadata) are kept.
func (s *Service) run(ctx context.Context, a *entity.Analysis, body string, mode entity.Mode) (*entity.Analysis, error) {
	start := time.Now()
	if mode == "" {
		mode = entity.ModeFast
	}
	ctx, span := tracing.GetTracer().Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("analysis.source_type", string(a.SourceType)),
		attribute.String("analysis.mode", string(mode)),
		attribute.Int("analysis.chars", len(body)),
	))
	defer span.End()

	var (
		sent     sentimentResult
		keywords []string
		stats    textstats.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.sentiment.Analyze(gctx, body, mode)
		if err != nil {
			return fmt.Errorf("sentiment: %w", err)
		}
		sent = sentimentResult{res.Sentiment, res.ModelVersion}
		return nil
	})
	g.Go(func() error {
		keywords = s.keywords.Extract(body)
		return nil
	})
	g.Go(func() error {
		stats = textstats.Compute(body)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecordAnalysisCreated(string(a.SourceType), false, time.Since(start))
		failSpan(span, err)
		return nil, err
	}

	if keywords == nil {
		keywords = []string{}
	}
	a.ID = s.newID()
	a.CreatedAt = s.now().UTC()
	a.ExtractedText = body
	a.Mode = mode
	a.ModelVersion = sent.modelVersion
	if a.Result.Literary != nil {
		a.ModelVersion += "+" + LiteraryModelVersion
	}
	a.Result.WordCount = stats.WordCount
	a.Result.TopWords = stats.TopWords
	a.Result.Language = stats.Language
	a.Result.Sentiment = sent.sentiment
	a.Result.Keywords = keywords

	if err := s.repo.Create(ctx, a); err != nil {
		metrics.RecordAnalysisCreated(string(a.SourceType), false, time.Since(start))
		failSpan(span, err)
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	metrics.RecordAnalysisCreated(string(a.SourceType), true, time.Since(start))
	span.SetAttributes(attribute.String("analysis.id", a.ID))

	s.logger.InfoContext(ctx, "analysis created",
		slog.String("analysis_id", a.ID),
		slog.String("source_type", string(a.SourceType)),
		slog.String("mode", string(a.Mode)),
		slog.String("model_version", a.ModelVersion),
		slog.Int("word_count", a.Result.WordCount),
		slog.Duration("duration", time.Since(start)))

	if s.events != nil {
		if err := s.events.PublishAnalysisCreated(ctx, a); err != nil {
			s.logger.WarnContext(ctx, "analysis event not published",
				slog.String("analysis_id", a.ID),
				slog.Any("error", err))
		}
	}
	s.embeddings.EmbedAnalysisAsync(ctx, a)
	return a, nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

type sentimentResult struct {
	sentiment    entity.Sentiment
	modelVersion string
}

/* ───────────────────────────── Read ───────────────────────────── */

// Get returns one analysis.
func (s *Service) Get(ctx context.Context, id string) (*entity.Analysis, error) {
	if err := entity.ValidateAnalysisID(id); err != nil {
		return nil, ErrAnalysisNotFound
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	if a == nil {
		return nil, ErrAnalysisNotFound
	}
	return a, nil
}

// List returns one page of analyses, newest first, with the total count of
// matching records.
func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	total, err := s.repo.Count(ctx, in.Filters)
	if err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}
	if in.Filters.IsEmpty() {
		metrics.UpdateAnalysesTotal(total)
	}

	analyses, err := s.repo.List(ctx, in.Filters, in.Params.Limit, in.Params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	if analyses == nil {
		analyses = []*entity.Analysis{}
	}
	return &ListResult{
		Analyses:   analyses,
		Pagination: pagination.NewMetadata(in.Params, total),
	}, nil
}

// Similar returns the analyses closest to id by embedding similarity,
// highest first. Neighbours deleted since the search ran are skipped.
func (s *Service) Similar(ctx context.Context, id string, limit int) ([]SimilarResult, error) {
	if !s.embeddings.Enabled() {
		return nil, ErrSimilarityDisabled
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	model := s.embeddings.Model()
	emb, err := s.embeddings.repo.FindByAnalysisID(ctx, id, model)
	if err != nil {
		return nil, fmt.Errorf("find embedding: %w", err)
	}
	if emb == nil {
		return nil, ErrEmbeddingNotReady
	}

	matches, err := s.embeddings.repo.SearchSimilar(ctx, emb.Embedding, model, id, limit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}

	out := make([]SimilarResult, 0, len(matches))
	for _, m := range matches {
		a, err := s.repo.Get(ctx, m.AnalysisID)
		if err != nil {
			return nil, fmt.Errorf("get similar analysis: %w", err)
		}
		if a == nil {
			continue
		}
		out = append(out, SimilarResult{Analysis: a, Similarity: m.Similarity})
	}
	return out, nil
}

/* ───────────────────────────── helpers ───────────────────────────── */

// clampText cuts s to at most max bytes on a rune boundary.
func clampText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// cleanFilename keeps the base name of a client supplied filename.
func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return clampText(name, maxFilenameLength)
}
