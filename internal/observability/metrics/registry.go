// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track application-specific operations
var (
	// SummaryRequestsTotal counts summarization requests by strategy, tier, and status
	SummaryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_requests_total",
			Help: "Total number of summarization requests",
		},
		[]string{"strategy", "tier", "status"}, // tier: guest, account
	)

	// SummaryRequestDuration measures end-to-end pipeline duration per request
	SummaryRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_request_duration_seconds",
			Help:    "End-to-end time to process a summarization request",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	// QuotaRejectionsTotal counts requests rejected by the usage ledger
	QuotaRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_rejections_total",
			Help: "Total number of requests rejected for exhausted quota or credits",
		},
		[]string{"tier"}, // tier: guest, account
	)

	// CreditsChargedTotal counts credits charged against accounts
	CreditsChargedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_charged_total",
			Help: "Total number of credits charged against accounts",
		},
	)

	// ExtractionsTotal counts document extractions by format and status
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractions_total",
			Help: "Total number of document extractions",
		},
		[]string{"format", "status"},
	)

	// ExtractionDuration measures time to extract text from a document
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Time taken to extract text from an uploaded document",
			Buckets: []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ExtractedTextSize measures extracted text size in characters
	ExtractedTextSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "extracted_text_size_characters",
			Help: "Extracted plain text size in characters",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600,
			},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
