package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"literary-analysis/internal/handler/http/respond"
	"literary-analysis/internal/observability/metrics"
	"literary-analysis/internal/resilience/retry"
)

// Purger deletes analyses created before a cutoff.
type Purger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob deletes analyses older than the configured retention period.
type RetentionJob struct {
	purger  Purger
	cfg     *WorkerConfig
	metrics *WorkerMetrics
	logger  *slog.Logger
	retry   retry.Config
	now     func() time.Time
}

// NewRetentionJob creates the purge job.
func NewRetentionJob(purger Purger, cfg *WorkerConfig, m *WorkerMetrics, logger *slog.Logger) *RetentionJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionJob{
		purger:  purger,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		retry:   retry.DBConfig(),
		now:     time.Now,
	}
}

// Run performs one purge bounded by the configured job timeout and returns
// the number of deleted analyses. Transient connection errors are retried.
// With retention disabled it deletes nothing.
func (j *RetentionJob) Run(ctx context.Context) (int64, error) {
	if !j.cfg.RetentionEnabled() {
		j.metrics.observeRun(runSkipped, 0)
		j.logger.Info("retention disabled, purge skipped")
		return 0, nil
	}

	start := time.Now()
	cutoff := j.cfg.Cutoff(j.now().UTC())
	j.logger.Info("retention purge started",
		slog.Int("retention_days", j.cfg.RetentionDays),
		slog.Time("cutoff", cutoff))

	ctx, cancel := context.WithTimeout(ctx, j.cfg.JobTimeout)
	defer cancel()

	var deleted int64
	err := retry.WithBackoff(ctx, j.retry, func() error {
		n, err := j.purger.DeleteOlderThan(ctx, cutoff)
		deleted = n
		return err
	})
	duration := time.Since(start)
	if err != nil {
		j.metrics.observeRun(runFailure, duration)
		j.logger.Error("retention purge failed",
			slog.Duration("duration", duration),
			slog.String("error", respond.SanitizeError(err)))
		return 0, fmt.Errorf("retention purge: %w", err)
	}

	j.metrics.observeRun(runSuccess, duration)
	metrics.RecordRetentionPurge(deleted)

	j.logger.Info("retention purge completed",
		slog.Int64("deleted", deleted),
		slog.Duration("duration", duration))
	return deleted, nil
}
