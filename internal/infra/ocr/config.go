package ocr

import (
	"errors"
	"fmt"
	"time"

	"literary-analysis/internal/resilience/circuitbreaker"
	"literary-analysis/pkg/config"
)

// Upload size bounds accepted for UPLOAD_MAX_BYTES.
const (
	minImageBytes = 1 << 10
	maxImageBytes = 50 << 20
)

// Config controls image text recognition and the upload size limit.
//
// Environment variables:
//   - OCR_ENABLED (default false)
//   - OCR_GRPC_ADDRESS (default "localhost:50052")
//   - OCR_CONNECTION_TIMEOUT (default "10s")
//   - OCR_REQUEST_TIMEOUT (default "30s")
//   - OCR_LANGUAGES in tesseract form (default "eng+spa")
//   - UPLOAD_MAX_BYTES (default 10MB)
//   - OCR_CB_MAX_REQUESTS, OCR_CB_INTERVAL, OCR_CB_TIMEOUT, OCR_CB_FAILURE_THRESHOLD
type Config struct {
	// Enabled sends uploads without a text layer to the OCR service.
	// When false such uploads fail with ErrOCRDisabled.
	Enabled        bool
	Address        string
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	Languages      string
	MaxImageBytes  int64
	Breaker        circuitbreaker.Config
}

func DefaultConfig() Config {
	breaker := circuitbreaker.DefaultConfig("ocr-service")
	breaker.Interval = 10 * time.Second
	breaker.Timeout = 30 * time.Second

	return Config{
		Address:        "localhost:50052",
		DialTimeout:    10 * time.Second,
		RequestTimeout: 30 * time.Second,
		Languages:      "eng+spa",
		MaxImageBytes:  10 << 20,
		Breaker:        breaker,
	}
}

// LoadConfigFromEnv reads the variables listed on Config over DefaultConfig
// and validates the result.
func LoadConfigFromEnv() (Config, error) {
	c := DefaultConfig()
	c.Enabled = config.GetEnvBool("OCR_ENABLED", c.Enabled)
	c.Address = config.GetEnvString("OCR_GRPC_ADDRESS", c.Address)
	c.DialTimeout = config.GetEnvDuration("OCR_CONNECTION_TIMEOUT", c.DialTimeout)
	c.RequestTimeout = config.GetEnvDuration("OCR_REQUEST_TIMEOUT", c.RequestTimeout)
	c.Languages = config.GetEnvString("OCR_LANGUAGES", c.Languages)
	c.MaxImageBytes = int64(config.GetEnvInt("UPLOAD_MAX_BYTES", int(c.MaxImageBytes)))

	c.Breaker.MaxRequests = uint32(max(config.GetEnvInt("OCR_CB_MAX_REQUESTS", int(c.Breaker.MaxRequests)), 0))
	c.Breaker.Interval = config.GetEnvDuration("OCR_CB_INTERVAL", c.Breaker.Interval)
	c.Breaker.Timeout = config.GetEnvDuration("OCR_CB_TIMEOUT", c.Breaker.Timeout)
	c.Breaker.FailureThreshold = config.GetEnvFloat("OCR_CB_FAILURE_THRESHOLD", c.Breaker.FailureThreshold)

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid OCR configuration: %w", err)
	}
	return c, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("OCR_GRPC_ADDRESS cannot be empty"))
	}
	if c.DialTimeout <= 0 {
		errs = append(errs, errors.New("OCR_CONNECTION_TIMEOUT must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("OCR_REQUEST_TIMEOUT must be positive"))
	}
	if c.MaxImageBytes < minImageBytes || c.MaxImageBytes > maxImageBytes {
		errs = append(errs, fmt.Errorf("UPLOAD_MAX_BYTES must be between %d and %d", minImageBytes, maxImageBytes))
	}
	if c.Breaker.MaxRequests == 0 {
		errs = append(errs, errors.New("OCR_CB_MAX_REQUESTS must be positive"))
	}
	if c.Breaker.Interval <= 0 {
		errs = append(errs, errors.New("OCR_CB_INTERVAL must be positive"))
	}
	if c.Breaker.Timeout <= 0 {
		errs = append(errs, errors.New("OCR_CB_TIMEOUT must be positive"))
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		errs = append(errs, errors.New("OCR_CB_FAILURE_THRESHOLD must be in (0, 1]"))
	}
	return errors.Join(errs...)
}
