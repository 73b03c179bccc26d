// Tracing instrumentation for the turn dispatcher.
package dispatch

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startSpan opens a span for one model-service round trip. The returned
// function records the call's outcome and ends the span.
func startSpan(ctx context.Context, name, threadID, personaID string) (context.Context, func(error)) {
	tracer := otel.Tracer("odonto/dispatch")
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("thread.id", threadID),
		attribute.String("persona.id", personaID),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
