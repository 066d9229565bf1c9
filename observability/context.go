package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanEnumeration names the span covering one enumeration.
const SpanEnumeration = "pipeline.enumerate"

// Span attribute keys.
const (
	AttrPipeline     = "pipeline.name"
	AttrRunID        = "pipeline.run_id"
	AttrElements     = "pipeline.elements"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorMessage = "error.message"
)

// EnumerationContext holds observability state for one enumeration of a
// named pipeline.
type EnumerationContext struct {
	Pipeline  string
	RunID     string
	StartTime time.Time
	Metrics   *PipelineMetrics
}

// NewEnumerationContext creates a new enumeration context.
// If metrics is nil, metric recording is silently skipped.
func NewEnumerationContext(pipeline, runID string, metrics *PipelineMetrics) *EnumerationContext {
	return &EnumerationContext{
		Pipeline:  pipeline,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// enumerationContextKey is the context key for EnumerationContext.
type enumerationContextKey struct{}

// WithEnumerationContext stores an EnumerationContext in the context.
func WithEnumerationContext(ctx context.Context, ec *EnumerationContext) context.Context {
	return context.WithValue(ctx, enumerationContextKey{}, ec)
}

// EnumerationContextFromContext retrieves the EnumerationContext from context, or nil.
func EnumerationContextFromContext(ctx context.Context) *EnumerationContext {
	if ec, ok := ctx.Value(enumerationContextKey{}).(*EnumerationContext); ok {
		return ec
	}
	return nil
}

// Start starts the enumeration span and records the start metric.
func (ec *EnumerationContext) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanEnumeration)
	span.SetAttributes(
		attribute.String(AttrPipeline, ec.Pipeline),
		attribute.String(AttrRunID, ec.RunID),
	)
	if ec.Metrics != nil {
		ec.Metrics.RecordStart(ctx, ec.Pipeline)
	}
	return WithEnumerationContext(ctx, ec), span
}

// End ends the span and records the close. code is the error code of a
// failed enumeration and ignored when err is nil.
func (ec *EnumerationContext) End(ctx context.Context, span trace.Span, elements int64, code string, err error) {
	duration := time.Since(ec.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrElements, elements),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if ec.Metrics != nil {
		ec.Metrics.RecordElements(ctx, ec.Pipeline, elements)
		if err != nil {
			ec.Metrics.RecordError(ctx, ec.Pipeline, code)
		}
		ec.Metrics.RecordClose(ctx, ec.Pipeline, status, duration)
	}
}

// Duration returns the elapsed time since the enumeration started.
func (ec *EnumerationContext) Duration() time.Duration {
	return time.Since(ec.StartTime)
}
