// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the JSON or YAML cutoff summaries.
	DatasetPath string `koanf:"dataset_path"`

	// WorkerCount sets the number of batch prediction workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the batch job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxBatchSize caps the requests accepted by POST /predict/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MaxResults caps predictions per request. Zero returns all of them.
	MaxResults int `koanf:"max_results"`

	// RateLimitRPS is the per-client request rate. Zero disables limiting.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// RateLimitBurst is the per-client burst size.
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// TrustedProxies lists, comma separated, the CIDRs or addresses whose
	// X-Forwarded-For header names the client. Empty trusts no one.
	TrustedProxies string `koanf:"trusted_proxies"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		DatasetPath:    "data/tn_cutoffs.json",
		WorkerCount:    runtime.NumCPU(),
		QueueSize:      1024,
		MaxBatchSize:   50,
		MaxResults:     0,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatasetPath) == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.MaxBatchSize < 1:
		return fmt.Errorf("%w: max_batch_size must be positive, got %d", ErrInvalidConfig, c.MaxBatchSize)
	case c.MaxBatchSize > c.QueueSize:
		return fmt.Errorf("%w: max_batch_size %d exceeds queue_size %d", ErrInvalidConfig, c.MaxBatchSize, c.QueueSize)
	case c.MaxResults < 0:
		return fmt.Errorf("%w: max_results must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be positive when limiting", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
