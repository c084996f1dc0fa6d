// Package ocr talks to the external OCR service used for uploads that carry
// no text layer. The service speaks gRPC with google.protobuf.Struct
// messages, so no generated stubs are needed:
//
//	request  {"image": <base64>, "content_type": "...", "languages": "eng+spa"}
//	response {"text": "...", "confidence": 0.93}
package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"literary-analysis/internal/resilience/circuitbreaker"
)

// RecognizeMethod is the full gRPC method name of the recognition call.
const RecognizeMethod = "/ocr.v1.OCRService/Recognize"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_requests_total",
			Help: "OCR calls by result",
		},
		[]string{"result"},
	)

	// Small screenshots take well under a second, multi-page scans a minute.
	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocr_request_duration_seconds",
			Help:    "OCR call latency, including calls short-circuited by the breaker",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

var (
	ErrOCRUnavailable     = errors.New("OCR service unavailable")
	ErrCircuitBreakerOpen = errors.New("OCR service temporarily disabled (circuit breaker open)")
	ErrOCRDisabled        = errors.New("OCR is disabled")
	// ErrInvalidImage is the caller's fault and does not count against the
	// breaker.
	ErrInvalidImage      = errors.New("image rejected by OCR service")
	ErrTimeout           = errors.New("OCR request timed out")
	ErrMalformedResponse = errors.New("malformed OCR response")
)

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) (string, error)
}

// GRPCRecognizer is the Recognizer backed by the OCR gRPC service.
type GRPCRecognizer struct {
	conn   *grpc.ClientConn
	cfg    Config
	cb     *circuitbreaker.CircuitBreaker
	logger *slog.Logger
}

// Dial connects to cfg.Address and waits up to cfg.DialTimeout for the
// connection to become ready.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*GRPCRecognizer, error) {
	if !cfg.Enabled {
		return nil, ErrOCRDisabled
	}
	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("create OCR connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if !awaitReady(ctx, conn) {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: no connection to %s within %s", ErrOCRUnavailable, cfg.Address, cfg.DialTimeout)
	}
	return New(conn, cfg, logger), nil
}

// New wraps an existing connection and takes ownership of it.
func New(conn *grpc.ClientConn, cfg Config, logger *slog.Logger) *GRPCRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := cfg.Breaker
	breaker.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrInvalidImage)
	}
	return &GRPCRecognizer{
		conn:   conn,
		cfg:    cfg,
		cb:     circuitbreaker.New(breaker),
		logger: logger,
	}
}

func (r *GRPCRecognizer) Recognize(ctx context.Context, image []byte, contentType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.call(ctx, image, contentType)
	})
	requestDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		requestsTotal.WithLabelValues("breaker_open").Inc()
		return "", ErrCircuitBreakerOpen
	case err != nil:
		requestsTotal.WithLabelValues("error").Inc()
		r.logger.Warn("ocr request failed", slog.Any("error", err))
		return "", err
	}
	requestsTotal.WithLabelValues("success").Inc()
	return out.(string), nil
}

func (r *GRPCRecognizer) call(ctx context.Context, image []byte, contentType string) (string, error) {
	req, err := structpb.NewStruct(map[string]any{
		"image":        base64.StdEncoding.EncodeToString(image),
		"content_type": contentType,
		"languages":    r.cfg.Languages,
	})
	if err != nil {
		return "", fmt.Errorf("build OCR request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := r.conn.Invoke(ctx, RecognizeMethod, req, resp); err != nil {
		return "", fromStatus(err)
	}

	v, ok := resp.GetFields()["text"]
	if !ok {
		return "", ErrMalformedResponse
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", ErrMalformedResponse
	}
	return strings.TrimSpace(v.GetStringValue()), nil
}

// State returns the breaker state: "closed", "half-open" or "open".
func (r *GRPCRecognizer) State() string {
	return r.cb.State().String()
}

func (r *GRPCRecognizer) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidImage, st.Message())
	case codes.DeadlineExceeded:
		return ErrTimeout
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrOCRUnavailable, st.Message())
	}
	return fmt.Errorf("OCR service error (%s): %s", st.Code(), st.Message())
}

func awaitReady(ctx context.Context, conn *grpc.ClientConn) bool {
	conn.Connect()
	for {
		s := conn.GetState()
		switch s {
		case connectivity.Ready:
			return true
		case connectivity.Shutdown:
			return false
		}
		if !conn.WaitForStateChange(ctx, s) {
			return false
		}
	}
}
