package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the OpenTelemetry instruments recorded for
// instrumented pipelines.
type PipelineMetrics struct {
	elements    metric.Int64Counter
	errors      metric.Int64Counter
	closes      metric.Int64Counter
	active      metric.Int64UpDownCounter
	enumeration metric.Float64Histogram
}

// NewPipelineMetrics creates metric instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	elements, err := meter.Int64Counter("pipeline.elements",
		metric.WithDescription("Elements yielded by instrumented pipelines"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.elements counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("pipeline.errors",
		metric.WithDescription("Enumerations that ended in an error, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.errors counter: %w", err)
	}

	closes, err := meter.Int64Counter("pipeline.closes",
		metric.WithDescription("Enumerations closed, by final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.closes counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter("pipeline.active",
		metric.WithDescription("Enumerations currently open"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.active gauge: %w", err)
	}

	enumeration, err := meter.Float64Histogram("pipeline.enumeration.duration",
		metric.WithDescription("Time from the first Next to Close, in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.enumeration.duration histogram: %w", err)
	}

	return &PipelineMetrics{
		elements:    elements,
		errors:      errorTotal,
		closes:      closes,
		active:      active,
		enumeration: enumeration,
	}, nil
}

// RecordStart increments the open enumeration count.
func (m *PipelineMetrics) RecordStart(ctx context.Context, pipeline string) {
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordElements adds n yielded elements.
func (m *PipelineMetrics) RecordElements(ctx context.Context, pipeline string, n int64) {
	if n == 0 {
		return
	}
	m.elements.Add(ctx, n, metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordError records a failed enumeration by error code.
func (m *PipelineMetrics) RecordError(ctx context.Context, pipeline, code string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("code", code),
	))
}

// RecordClose decrements open enumerations and records the completed one.
func (m *PipelineMetrics) RecordClose(ctx context.Context, pipeline, status string, duration time.Duration) {
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("pipeline", pipeline)))
	m.closes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
	m.enumeration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}
