// Package events publishes analysis lifecycle events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"literary-analysis/internal/domain/entity"
	"literary-analysis/pkg/config"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject analysis.created events are sent on.
const DefaultSubject = "analysis.created"

// Config holds the NATS publisher configuration.
//
// Environment variables:
//   - NATS_URL (empty disables publishing)
//   - NATS_SUBJECT (default "analysis.created")
//   - NATS_CONNECT_TIMEOUT (default "5s")
type Config struct {
	URL            string
	Subject        string
	ConnectTimeout time.Duration
}

// LoadConfigFromEnv reads NATS_* variables.
func LoadConfigFromEnv() Config {
	return Config{
		URL:            config.GetEnvString("NATS_URL", ""),
		Subject:        config.GetEnvString("NATS_SUBJECT", DefaultSubject),
		ConnectTimeout: config.GetEnvDuration("NATS_CONNECT_TIMEOUT", 5*time.Second),
	}
}

// Enabled reports whether a server is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// AnalysisCreated is the event payload. It carries the summary of a result,
// not the extracted text.
type AnalysisCreated struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	SourceType    entity.SourceType `json:"source_type"`
	Mode          entity.Mode       `json:"mode"`
	ModelVersion  string            `json:"model_version"`
	WordCount     int               `json:"word_count"`
	PolarityLabel string            `json:"polarity_label"`
	PolarityScore float64           `json:"polarity_score"`
	Keywords      []string          `json:"keywords"`
	Language      string            `json:"language,omitempty"`
}

// NewAnalysisCreated builds the event for a.
func NewAnalysisCreated(a *entity.Analysis) AnalysisCreated {
	keywords := a.Result.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return AnalysisCreated{
		ID:            a.ID,
		CreatedAt:     a.CreatedAt,
		SourceType:    a.SourceType,
		Mode:          a.Mode,
		ModelVersion:  a.ModelVersion,
		WordCount:     a.Result.WordCount,
		PolarityLabel: a.Result.Sentiment.PolarityLabel,
		PolarityScore: a.Result.Sentiment.PolarityScore,
		Keywords:      keywords,
		Language:      a.Result.Language,
	}
}

// msgPublisher is the part of *nats.Conn the publisher uses.
type msgPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher sends events with core NATS publish (at most once).
type NATSPublisher struct {
	conn    msgPublisher
	subject string
	logger  *slog.Logger
	close   func()
}

// Connect dials cfg.URL. Reconnects are handled by the client library.
func Connect(cfg Config, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("literary-analysis"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrlRedacted()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	p := newNATSPublisher(nc, cfg.Subject, logger)
	p.close = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return p, nil
}

func newNATSPublisher(conn msgPublisher, subject string, logger *slog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

// PublishAnalysisCreated sends the analysis.created event for a.
func (p *NATSPublisher) PublishAnalysisCreated(ctx context.Context, a *entity.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(NewAnalysisCreated(a))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	p.logger.Debug("event published",
		slog.String("subject", p.subject),
		slog.String("analysis_id", a.ID))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// NoopPublisher drops every event. It is used when NATS_URL is unset.
type NoopPublisher struct{}

// PublishAnalysisCreated does nothing.
func (NoopPublisher) PublishAnalysisCreated(context.Context, *entity.Analysis) error {
	return nil
}
