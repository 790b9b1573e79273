package worker

import (
	"fmt"
	"log/slog"
	"time"

	"summarly/internal/pkg/config"
)

// PoolConfig holds the configuration for the extraction worker pool.
// The pool bounds how many document extractions run at once and how long a
// single extraction may take before it is cancelled.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the pool can operate
// safely even with invalid or missing configuration.
type PoolConfig struct {
	// MaxConcurrent is the maximum number of extractions running at once.
	// Submissions beyond this bound wait for a slot.
	// Range: 1-64
	// Default: 4
	MaxConcurrent int

	// TaskTimeout is the maximum duration for a single extraction task.
	// After this timeout the task context is cancelled.
	// Range: 1s-5m
	// Default: 30 seconds
	TaskTimeout time.Duration
}

// DefaultConfig returns a PoolConfig with default values.
// Four concurrent extractions keep memory bounded for 10 MB uploads, and a
// 30-second timeout covers even large PDFs on slow hardware.
func DefaultConfig() PoolConfig {
	return PoolConfig{
		MaxConcurrent: 4,
		TaskTimeout:   30 * time.Second,
	}
}

// Validate checks if the configuration values are valid.
// If multiple fields are invalid, all errors are collected and returned together.
func (c *PoolConfig) Validate() error {
	var errs []error

	if err := config.ValidateIntRange(c.MaxConcurrent, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("max concurrent: %w", err))
	}

	if err := config.ValidateDuration(c.TaskTimeout, 1*time.Second, 5*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("task timeout: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	return nil
}

// LoadConfigFromEnv loads pool configuration from environment variables with
// validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy: every invalid or missing
// value falls back to its default, a warning is logged, metrics are updated,
// and a usable configuration is always returned.
//
// Environment variables:
//   - EXTRACT_MAX_CONCURRENT: Integer 1-64 (default: 4)
//   - EXTRACT_TASK_TIMEOUT: Duration string, e.g., "30s" (default: 30 seconds)
func LoadConfigFromEnv(logger *slog.Logger, metrics *PoolMetrics) (*PoolConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvInt("EXTRACT_MAX_CONCURRENT", cfg.MaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 64)
	})
	cfg.MaxConcurrent = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("max_concurrent")
		metrics.RecordFallback("max_concurrent")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "MaxConcurrent"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("EXTRACT_TASK_TIMEOUT", cfg.TaskTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Second, 5*time.Minute)
	})
	cfg.TaskTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("task_timeout")
		metrics.RecordFallback("task_timeout")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "TaskTimeout"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
