// Package observability groups the service's telemetry concerns.
//
// Subpackages:
//   - logging: slog-based JSON logging and request-ID tagging
//   - metrics: Prometheus registry plus recorders for the summarize
//     pipeline, the usage ledger, and the database
//   - tracing: OpenTelemetry span handling for HTTP requests
//
// A summarize request is observable three ways: its access log line carries
// the request ID and trace ID, its metrics land in summary_requests_total
// and friends, and its span ties the extraction and model call together.
package observability
