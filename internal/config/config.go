// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"

	"github.com/okian/dataq/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// QueueSize bounds the in-memory assessment job queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`
	// AssessTimeoutMS bounds how long one request waits for all dimensions.
	AssessTimeoutMS int `koanf:"assess_timeout_ms"`
	// DetailLevel is used when a request does not name one.
	DetailLevel string `koanf:"detail_level"`
	// MaxRecords caps the records accepted per request.
	MaxRecords int `koanf:"max_records"`
	// PassThreshold is the overall score a dataset needs to pass.
	PassThreshold float64 `koanf:"pass_threshold"`
	// Weights maps dimension names to their share of the overall score.
	Weights map[string]float64 `koanf:"weights"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       1_024,
		WorkerCount:     runtime.NumCPU() * 2,
		AssessTimeoutMS: 30_000,
		DetailLevel:     string(model.DetailMedium),
		MaxRecords:      100_000,
		PassThreshold:   0.7,
		Weights: map[string]float64{
			string(model.Completeness): 0.3,
			string(model.Consistency):  0.3,
			string(model.Diversity):    0.2,
			string(model.Uniqueness):   0.2,
		},
	}
}

// DimensionWeights returns Weights keyed by model.Dimension.
func (c *Config) DimensionWeights() map[model.Dimension]float64 {
	out := make(map[model.Dimension]float64, len(c.Weights))
	for k, w := range c.Weights {
		out[model.Dimension(k)] = w
	}
	return out
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.AssessTimeoutMS <= 0 {
		return fmt.Errorf("%w: assess_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("%w: max_records must be positive", ErrInvalidConfig)
	}
	if _, err := model.ParseDetailLevel(c.DetailLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.PassThreshold < 0 || c.PassThreshold > 1 {
		return fmt.Errorf("%w: pass_threshold must be within [0,1]", ErrInvalidConfig)
	}
	known := make(map[string]bool)
	for _, d := range model.Dimensions() {
		known[string(d)] = true
	}
	total := 0.0
	for k, w := range c.Weights {
		if !known[k] {
			return fmt.Errorf("%w: unknown dimension weight %q", ErrInvalidConfig, k)
		}
		if w < 0 {
			return fmt.Errorf("%w: weight for %s must not be negative", ErrInvalidConfig, k)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%w: at least one dimension weight must be positive", ErrInvalidConfig)
	}
	return nil
}
