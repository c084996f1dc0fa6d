package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	pgRepo "literary-analysis/internal/infra/adapter/persistence/postgres"
	"literary-analysis/internal/infra/db"
	workerPkg "literary-analysis/internal/infra/worker"
	"literary-analysis/internal/observability/logging"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	cfg := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("retention_days", cfg.RetentionDays),
		slog.Duration("job_timeout", cfg.JobTimeout),
		slog.Int("health_port", cfg.HealthPort))

	database, err := db.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.WaitForSchema(ctx, database, db.CoreVersion, 3*time.Second, 20); err != nil {
		return err
	}

	healthAddr := fmt.Sprintf(":%d", cfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger,
		workerPkg.WithReadinessCheck("database", database.PingContext))
	healthDone := make(chan struct{})
	go func() {
		defer close(healthDone)
		if err := healthServer.ListenAndServe(ctx); err != nil {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := workerPkg.NewRetentionJob(pgRepo.NewAnalysisRepo(database), &cfg, workerMetrics, logger)

	c, err := newScheduler(&cfg, func() {
		if _, err := job.Run(ctx); err != nil {
			logger.Warn("retention run failed, next attempt on schedule", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}
	if !cfg.RetentionEnabled() {
		logger.Info("retention disabled (RETENTION_DAYS=0), serving health endpoints only")
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	// Wait for a running purge to finish.
	<-c.Stop().Done()
	<-healthDone
	logger.Info("worker stopped")
	return nil
}

// newScheduler builds the cron scheduler for the purge job. Overlapping runs
// are skipped. With retention disabled the scheduler carries no jobs.
func newScheduler(cfg *workerPkg.WorkerConfig, purge func()) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if !cfg.RetentionEnabled() {
		return c, nil
	}
	if _, err := c.AddFunc(cfg.CronSchedule, purge); err != nil {
		return nil, fmt.Errorf("add cron job: %w", err)
	}
	return c, nil
}
