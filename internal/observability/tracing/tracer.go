package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the single tracer all spans in this service are started from.
var tracer = otel.Tracer("summarly")

// GetTracer exposes the service tracer for pipeline stages that want their
// own child spans:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "extract-document")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
