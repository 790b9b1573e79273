// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware opens a span per request and propagates the span
// context through the request context, where it is picked up by the
// logging middleware for log/trace correlation.
//
// Example usage:
//
//	import "summarly/internal/observability/tracing"
//
//	handler = tracing.Middleware(handler)
//
//	func summarize(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "summarize")
//	    defer span.End()
//	    // ... run the pipeline ...
//	}
package tracing
