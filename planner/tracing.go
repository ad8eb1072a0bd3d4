package planner

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracerOnce    sync.Once
	plannerTracer trace.Tracer
)

// getTracer returns the OTel tracer, resolving it on first use so a global
// provider installed after package init is honored.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		plannerTracer = otel.Tracer("github.com/katalvlaran/meshpath/planner")
	})
	return plannerTracer
}

// startPhase opens a child span for one phase of a planning call.
func startPhase(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return getTracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// endPhase records err on span, if any, and closes it.
func endPhase(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
