// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (summary requests, quota rejections, extractions)
//   - Database query metrics
//   - Application performance metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "summarly/internal/observability/metrics"
//
//	func summarize(strategy, tier string) {
//	    start := time.Now()
//	    // ... run the pipeline ...
//
//	    metrics.RecordSummaryRequest(strategy, tier, true)
//	    metrics.RecordSummaryRequestDuration(time.Since(start))
//	}
package metrics
