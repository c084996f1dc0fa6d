package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/internal/handler/http/requestid"
	"literary-analysis/internal/repository"
)

const (
	embeddingTimeout = 30 * time.Second

	// Jobs beyond this many in flight are dropped; the analysis then has no
	// similarity neighbours until it is embedded again.
	defaultEmbeddingSlots = 8
)

var (
	embeddingInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analysis_embedding_inflight",
		Help: "Embedding jobs currently running",
	})
	embeddingJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_embedding_jobs_total",
		Help: "Embedding jobs by result: stored, failed, dropped or panic",
	}, []string{"result"})
)

// EmbeddingHook embeds new analyses in the background and serves the
// similarity lookups built on those vectors. A nil *EmbeddingHook is valid
// and disabled.
type EmbeddingHook struct {
	embedder Embedder
	repo     repository.AnalysisEmbeddingRepository
	logger   *slog.Logger
	slots    *semaphore.Weighted
	wg       sync.WaitGroup
}

func NewEmbeddingHook(embedder Embedder, repo repository.AnalysisEmbeddingRepository, logger *slog.Logger) *EmbeddingHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingHook{
		embedder: embedder,
		repo:     repo,
		logger:   logger,
		slots:    semaphore.NewWeighted(defaultEmbeddingSlots),
	}
}

func (h *EmbeddingHook) Enabled() bool {
	return h != nil && h.embedder != nil && h.repo != nil
}

// Model names the embedding model, or "" when disabled.
func (h *EmbeddingHook) Model() string {
	if !h.Enabled() {
		return ""
	}
	return h.embedder.Model()
}

// EmbedAnalysisAsync queues a for embedding and returns immediately. The
// job runs on a context detached from ctx, keeping only its request ID.
// Failures are logged and counted, never returned.
func (h *EmbeddingHook) EmbedAnalysisAsync(ctx context.Context, a *entity.Analysis) {
	if !h.Enabled() || a == nil {
		return
	}
	reqID := requestid.FromContext(ctx)
	if !h.slots.TryAcquire(1) {
		embeddingJobsTotal.WithLabelValues("dropped").Inc()
		h.logger.Warn("embedding queue full, skipping analysis",
			slog.String("request_id", reqID),
			slog.String("analysis_id", a.ID))
		return
	}

	h.wg.Go(func() {
		defer h.slots.Release(1)
		embeddingInflight.Inc()
		defer embeddingInflight.Dec()

		jobCtx, cancel := context.WithTimeout(requestid.WithRequestID(context.Background(), reqID), embeddingTimeout)
		defer cancel()
		h.run(jobCtx, reqID, a)
	})
}

// Wait blocks until every queued job has finished.
func (h *EmbeddingHook) Wait() {
	if h != nil {
		h.wg.Wait()
	}
}

func (h *EmbeddingHook) run(ctx context.Context, reqID string, a *entity.Analysis) {
	log := h.logger.With(slog.String("request_id", reqID), slog.String("analysis_id", a.ID))
	defer func() {
		if r := recover(); r != nil {
			embeddingJobsTotal.WithLabelValues("panic").Inc()
			log.Error("embedding job panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	start := time.Now()
	dim, err := h.store(ctx, a)
	if err != nil {
		embeddingJobsTotal.WithLabelValues("failed").Inc()
		log.Warn("analysis embedding failed", slog.Duration("duration", time.Since(start)), slog.Any("error", err))
		return
	}
	embeddingJobsTotal.WithLabelValues("stored").Inc()
	log.Info("analysis embedding stored", slog.Int("dimension", dim), slog.Duration("duration", time.Since(start)))
}

func (h *EmbeddingHook) store(ctx context.Context, a *entity.Analysis) (int, error) {
	vec, err := h.embedder.Embed(ctx, a.ExtractedText)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	err = h.repo.Upsert(ctx, &entity.AnalysisEmbedding{
		AnalysisID: a.ID,
		Model:      h.embedder.Model(),
		Dimension:  len(vec),
		Embedding:  vec,
	})
	return len(vec), err
}
