package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// promauto panics on duplicate metric names, so every test uses its own
// component name.

func TestNewConfigMetrics(t *testing.T) {
	metrics := NewConfigMetrics("test_registration")

	assert.NotNil(t, metrics.LoadTimestamp)
	assert.NotNil(t, metrics.ValidationErrorsTotal)
	assert.NotNil(t, metrics.FallbacksTotal)
	assert.NotNil(t, metrics.FallbackActive)
	assert.Equal(t, "test_registration", metrics.componentName)
}

func TestConfigMetrics_CountersTrackPerField(t *testing.T) {
	metrics := NewConfigMetrics("test_per_field")

	metrics.RecordValidationError("max_concurrent")
	metrics.RecordValidationError("max_concurrent")
	metrics.RecordValidationError("task_timeout")
	metrics.RecordFallback("max_concurrent")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("max_concurrent")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("task_timeout")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("max_concurrent")))
	assert.Equal(t, float64(0),
		testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("task_timeout")))
}

func TestConfigMetrics_FallbackActiveGauge(t *testing.T) {
	metrics := NewConfigMetrics("test_gauge")

	metrics.SetFallbackActive(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive))

	metrics.SetFallbackActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive))
}

func TestConfigMetrics_LoadTimestamp(t *testing.T) {
	metrics := NewConfigMetrics("test_timestamp")

	assert.Zero(t, testutil.ToFloat64(metrics.LoadTimestamp))
	metrics.RecordLoadTimestamp()
	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0))
}

func TestConfigMetrics_CleanLoadScenario(t *testing.T) {
	// The path a correctly configured deployment takes: timestamp recorded,
	// nothing else moves.
	metrics := NewConfigMetrics("test_clean_load")

	metrics.RecordLoadTimestamp()
	metrics.SetFallbackActive(false)

	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0))
	assert.Zero(t, testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("max_concurrent")))
	assert.Zero(t, testutil.ToFloat64(metrics.FallbackActive))
}
