package quota

import "github.com/prometheus/client_golang/prometheus"

// MetricsRecorder defines the interface for recording quota store metrics.
//
// This abstraction keeps the store decoupled from any specific metrics
// system and lets tests inject a mock recorder.
type MetricsRecorder interface {
	// RecordAllowed increments the counter of granted quota checks.
	RecordAllowed()

	// RecordDenied increments the counter of denied quota checks.
	RecordDenied()

	// RecordEviction records buckets removed by LRU eviction or cleanup.
	RecordEviction(count int)
}

// NoOpMetrics implements MetricsRecorder with no-op implementations.
// Useful for tests and environments where metrics are not collected.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics instance.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

// RecordAllowed is a no-op implementation.
func (m *NoOpMetrics) RecordAllowed() {}

// RecordDenied is a no-op implementation.
func (m *NoOpMetrics) RecordDenied() {}

// RecordEviction is a no-op implementation.
func (m *NoOpMetrics) RecordEviction(count int) {}

// PrometheusMetrics implements MetricsRecorder using Prometheus.
//
// A custom registry can be supplied for testability; pass nil to register
// against the default registerer.
type PrometheusMetrics struct {
	allowedTotal   prometheus.Counter
	deniedTotal    prometheus.Counter
	evictionsTotal prometheus.Counter
}

// NewPrometheusMetrics creates quota metrics registered on the given registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		allowedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quota_checks_allowed_total",
			Help: "Total quota checks that were granted",
		}),
		deniedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quota_checks_denied_total",
			Help: "Total quota checks that were denied",
		}),
		evictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quota_bucket_evictions_total",
			Help: "Total quota buckets removed by eviction or cleanup",
		}),
	}

	reg.MustRegister(m.allowedTotal, m.deniedTotal, m.evictionsTotal)
	return m
}

// RecordAllowed increments the granted checks counter.
func (m *PrometheusMetrics) RecordAllowed() { m.allowedTotal.Inc() }

// RecordDenied increments the denied checks counter.
func (m *PrometheusMetrics) RecordDenied() { m.deniedTotal.Inc() }

// RecordEviction adds to the evictions counter.
func (m *PrometheusMetrics) RecordEviction(count int) {
	m.evictionsTotal.Add(float64(count))
}
