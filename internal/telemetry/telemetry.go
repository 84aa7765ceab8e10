// Package telemetry wires optional OpenTelemetry tracing around message
// dispatch, following the otel setup used by zjrosen-perles and
// webitel-im-delivery-service. It is off by default — spec.md puts
// monitoring UIs out of scope, but a tracing hook is not a UI, and a
// Scheduler traces only when the embedder supplies a trace.Tracer via
// runtime.WithTracer.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// NewStdoutTracerProvider builds a trace.TracerProvider that exports spans
// nowhere (a no-op span processor) by default; embedders that want real
// export wire their own exporter into sdktrace.WithBatcher and pass the
// resulting provider's Tracer() into runtime.WithTracer instead of using
// this helper.
func NewStdoutTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider()
}

// Tracer name used for every span the runtime package emits.
const TracerName = "github.com/infoton-run/actorhost/internal/runtime"

// Tracer returns a named tracer from the given provider, or the global
// otel tracer provider if tp is nil.
func Tracer(tp oteltrace.TracerProvider) oteltrace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}

// StartDispatchSpan starts a span around one message dispatch. Callers
// must call the returned func to end it.
func StartDispatchSpan(ctx context.Context, tracer oteltrace.Tracer, msgKind string) (context.Context, func()) {
	if tracer == nil {
		return ctx, func() {}
	}
	ctx, span := tracer.Start(ctx, "scheduler.dispatch",
		oteltrace.WithAttributes(attribute.String("msg_kind", msgKind)))
	return ctx, func() { span.End() }
}
