package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of every span the notifier starts.
const TracerName = "wiki-notify"

// GetTracer returns the notifier tracer from the current global provider.
// It is looked up on every call so a provider installed after startup (or by
// a test) is picked up.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "webhook.send")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
