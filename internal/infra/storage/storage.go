// Package storage archives uploaded files under their content hash, on the
// local filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"literary-analysis/pkg/config"
)

// Backend names accepted in STORAGE_BACKEND.
const (
	BackendNone = "none"
	BackendFS   = "fs"
	BackendS3   = "s3"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("object not found")

// Store keeps upload bytes. Keys come from Key and are safe to use as
// relative paths.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures the backend.
type Config struct {
	Backend  string
	BasePath string
	S3       S3Config
}

// DefaultConfig archives nothing.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendNone,
		BasePath: "./storage",
	}
}

// LoadConfigFromEnv reads STORAGE_* and S3_* variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Backend = strings.ToLower(config.GetEnvString("STORAGE_BACKEND", cfg.Backend))
	cfg.BasePath = config.GetEnvString("STORAGE_PATH", cfg.BasePath)
	cfg.S3 = S3Config{
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		Region:          os.Getenv("S3_REGION"),
		Bucket:          os.Getenv("S3_BUCKET"),
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		UsePathStyle:    config.GetEnvBool("S3_USE_PATH_STYLE", false),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone:
		return nil
	case BackendFS:
		if c.BasePath == "" {
			return errors.New("STORAGE_PATH is required for the fs backend")
		}
		return nil
	case BackendS3:
		return c.S3.Validate()
	default:
		return fmt.Errorf("unknown storage backend %q (want none, fs or s3)", c.Backend)
	}
}

// New builds the configured store. The none backend returns a nil Store,
// which callers treat as "do not archive".
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFS:
		return NewFSStore(cfg.BasePath)
	case BackendS3:
		s3Store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewResilient(s3Store), nil
	case BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

var extensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/bmp":       ".bmp",
	"image/tiff":      ".tiff",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Key returns the archive key for content with the given sha256 hex digest:
// uploads/<first two hex chars>/<hash><ext>.
func Key(hash, contentType string) string {
	prefix := hash
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return path.Join("uploads", prefix, hash+extensions[contentType])
}
