package ocr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ocrEnv = []string{
	"OCR_ENABLED", "OCR_GRPC_ADDRESS", "OCR_CONNECTION_TIMEOUT", "OCR_REQUEST_TIMEOUT",
	"OCR_LANGUAGES", "UPLOAD_MAX_BYTES", "OCR_CB_MAX_REQUESTS", "OCR_CB_INTERVAL",
	"OCR_CB_TIMEOUT", "OCR_CB_FAILURE_THRESHOLD",
}

// withEnv blanks every OCR variable and then applies env.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range ocrEnv {
		t.Setenv(k, env[k])
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	withEnv(t, nil)

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:50052", cfg.Address)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "eng+spa", cfg.Languages)
	assert.Equal(t, int64(10<<20), cfg.MaxImageBytes)

	assert.Equal(t, "ocr-service", cfg.Breaker.Name)
	assert.Equal(t, uint32(3), cfg.Breaker.MaxRequests)
	assert.Equal(t, 10*time.Second, cfg.Breaker.Interval)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
	assert.Equal(t, 0.6, cfg.Breaker.FailureThreshold)
	assert.Equal(t, uint32(5), cfg.Breaker.MinRequests)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	withEnv(t, map[string]string{
		"OCR_ENABLED":              "true",
		"OCR_GRPC_ADDRESS":         "ocr-service:9090",
		"OCR_CONNECTION_TIMEOUT":   "20s",
		"OCR_REQUEST_TIMEOUT":      "45s",
		"OCR_LANGUAGES":            "spa",
		"UPLOAD_MAX_BYTES":         "2048",
		"OCR_CB_MAX_REQUESTS":      "5",
		"OCR_CB_INTERVAL":          "20s",
		"OCR_CB_TIMEOUT":           "1m",
		"OCR_CB_FAILURE_THRESHOLD": "0.5",
	})

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "ocr-service:9090", cfg.Address)
	assert.Equal(t, 20*time.Second, cfg.DialTimeout)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "spa", cfg.Languages)
	assert.Equal(t, int64(2048), cfg.MaxImageBytes)
	assert.Equal(t, uint32(5), cfg.Breaker.MaxRequests)
	assert.Equal(t, 20*time.Second, cfg.Breaker.Interval)
	assert.Equal(t, time.Minute, cfg.Breaker.Timeout)
	assert.Equal(t, 0.5, cfg.Breaker.FailureThreshold)
}

func TestLoadConfigFromEnv_MalformedFallsBack(t *testing.T) {
	withEnv(t, map[string]string{"OCR_ENABLED": "maybe", "OCR_REQUEST_TIMEOUT": "soon"})

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	withEnv(t, map[string]string{"UPLOAD_MAX_BYTES": "10", "OCR_CB_MAX_REQUESTS": "-2"})

	_, err := LoadConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_MAX_BYTES")
	assert.Contains(t, err.Error(), "OCR_CB_MAX_REQUESTS")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty address", func(c *Config) { c.Address = "" }, "OCR_GRPC_ADDRESS cannot be empty"},
		{"zero dial timeout", func(c *Config) { c.DialTimeout = 0 }, "OCR_CONNECTION_TIMEOUT must be positive"},
		{"negative request timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "OCR_REQUEST_TIMEOUT must be positive"},
		{"upload limit too large", func(c *Config) { c.MaxImageBytes = 100 << 20 }, "UPLOAD_MAX_BYTES"},
		{"zero max requests", func(c *Config) { c.Breaker.MaxRequests = 0 }, "OCR_CB_MAX_REQUESTS must be positive"},
		{"zero interval", func(c *Config) { c.Breaker.Interval = 0 }, "OCR_CB_INTERVAL must be positive"},
		{"negative breaker timeout", func(c *Config) { c.Breaker.Timeout = -time.Second }, "OCR_CB_TIMEOUT must be positive"},
		{"threshold above one", func(c *Config) { c.Breaker.FailureThreshold = 1.5 }, "OCR_CB_FAILURE_THRESHOLD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
