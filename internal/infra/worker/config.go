package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"literary-analysis/internal/pkg/config"
)

const maxRetentionDays = 3650

// WorkerConfig drives the retention worker. A RetentionDays of zero keeps
// analyses forever; the worker then serves its probes only.
type WorkerConfig struct {
	CronSchedule  string // five-field cron, evaluated in Timezone
	Timezone      string
	RetentionDays int
	JobTimeout    time.Duration // bounds one purge, retries included
	HealthPort    int
}

// DefaultConfig purges analyses older than 90 days every night at 03:00 UTC.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 3 * * *",
		Timezone:      "UTC",
		RetentionDays: 90,
		JobTimeout:    10 * time.Minute,
		HealthPort:    9091,
	}
}

func (c *WorkerConfig) RetentionEnabled() bool { return c.RetentionDays > 0 }

// Cutoff returns the creation time before which analyses are purged.
func (c *WorkerConfig) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.RetentionDays)
}

func validPort(p int) error { return config.ValidateIntRange(p, 1024, 65535) }

func validDays(d int) error { return config.ValidateIntRange(d, 0, maxRetentionDays) }

func validTimeout(d time.Duration) error { return config.ValidateDuration(d, time.Minute, 2*time.Hour) }

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	check := func(field string, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		return nil
	}
	return errors.Join(
		check("cron schedule", config.ValidateCronSchedule(c.CronSchedule)),
		check("timezone", config.ValidateTimezone(c.Timezone)),
		check("retention days", validDays(c.RetentionDays)),
		check("job timeout", config.ValidatePositiveDuration(c.JobTimeout)),
		check("health port", validPort(c.HealthPort)),
	)
}

// LoadConfigFromEnv reads RETENTION_CRON, WORKER_TIMEZONE, RETENTION_DAYS,
// RETENTION_TIMEOUT (1m to 2h) and WORKER_HEALTH_PORT. A value that fails
// validation is replaced by its default, logged and counted, so the result
// is always usable.
func LoadConfigFromEnv(logger *slog.Logger, m *WorkerMetrics) WorkerConfig {
	def := DefaultConfig()
	degraded := false
	note := func(field string, o config.Outcome) {
		if !o.FallbackApplied {
			return
		}
		degraded = true
		m.RecordFallback(field)
		for _, w := range o.Warnings {
			logger.Warn("worker config fallback", slog.String("field", field), slog.String("warning", w))
		}
	}

	cron := config.LoadEnvWithFallback("RETENTION_CRON", def.CronSchedule, config.ValidateCronSchedule)
	note("cron_schedule", cron.Outcome)
	tz := config.LoadEnvWithFallback("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone)
	note("timezone", tz.Outcome)
	days := config.LoadEnvInt("RETENTION_DAYS", def.RetentionDays, validDays)
	note("retention_days", days.Outcome)
	timeout := config.LoadEnvDuration("RETENTION_TIMEOUT", def.JobTimeout, validTimeout)
	note("job_timeout", timeout.Outcome)
	port := config.LoadEnvInt("WORKER_HEALTH_PORT", def.HealthPort, validPort)
	note("health_port", port.Outcome)

	m.SetFallbackActive(degraded)
	m.RecordLoadTimestamp()
	return WorkerConfig{
		CronSchedule:  cron.Value,
		Timezone:      tz.Value,
		RetentionDays: days.Value,
		JobTimeout:    timeout.Value,
		HealthPort:    port.Value,
	}
}
