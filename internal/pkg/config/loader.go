// Package config loads runtime settings from environment variables.
//
// Every loader is fail-open: an unset variable silently yields the default,
// and a value that fails to parse or validate falls back to the default with
// a warning the caller is expected to log. A bad setting never aborts
// startup; the service runs on defaults and tells the operator why.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult carries one loaded setting plus any fallback warnings.
// Callers assert Value to the type matching the loader they called.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func loaded(v interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: v}
}

// fellBack builds the fallback result shared by all loaders. The warning
// names the variable, the rejected raw value, and the default now in effect.
func fellBack(envKey, raw string, def interface{}, cause error) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           def,
		Warnings:        []string{fmt.Sprintf("invalid %s=%q: %v, using default %v", envKey, raw, cause, def)},
		FallbackApplied: true,
	}
}

// LoadEnvWithFallback loads a string setting, running it through the given
// validator when one is supplied. Used for settings with structure, like the
// QUOTA_CLEANUP_SCHEDULE cron expression.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	if validator != nil {
		if err := validator(raw); err != nil {
			return fellBack(envKey, raw, defaultValue, err)
		}
	}
	return loaded(raw)
}

// LoadEnvDuration loads a Go duration string ("30s", "2m"). Parse failures
// and validator rejections both fall back. Used for REQUEST_TIMEOUT and the
// extraction pool's EXTRACT_TASK_TIMEOUT.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fellBack(envKey, raw, defaultValue, err)
	}
	if validator != nil {
		if err := validator(d); err != nil {
			return fellBack(envKey, raw, defaultValue, err)
		}
	}
	return loaded(d)
}

// LoadEnvInt loads an integer setting. Used for the count-style knobs:
// GUEST_DAILY_LIMIT, QUOTA_MAX_KEYS, MAX_GUEST_TEXT_LENGTH, and friends.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fellBack(envKey, raw, defaultValue, fmt.Errorf("not an integer"))
	}
	if validator != nil {
		if err := validator(n); err != nil {
			return fellBack(envKey, raw, defaultValue, err)
		}
	}
	return loaded(n)
}
