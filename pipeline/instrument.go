package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

// Instrument wraps p so that every enumeration is traced as one span and
// counted in metrics. metrics may be nil. The span starts on the first Next
// and ends on Close; each enumeration gets a fresh run id.
func Instrument[T any](p *Pipeline[T], name string, metrics *observability.PipelineMetrics) *Pipeline[T] {
	return chain(p, "Instrument", func(_ context.Context, in Iterator[T]) operator[T] {
		return &instrumentOp[T]{in: input[T]{it: in}, name: name, metrics: metrics}
	})
}

type instrumentOp[T any] struct {
	in       input[T]
	name     string
	metrics  *observability.PipelineMetrics
	ec       *observability.EnumerationContext
	ctx      context.Context
	span     trace.Span
	log      *logger.Logger
	elements int64
	err      error
}

func (o *instrumentOp[T]) advance(ctx context.Context) (T, bool, error) {
	if o.ec == nil {
		o.ec = observability.NewEnumerationContext(o.name, uuid.NewString(), o.metrics)
		o.ctx, o.span = o.ec.Start(ctx)
		o.log = log().WithContext(o.ctx).WithFields(logger.Fields(
			logger.FieldPipelineID, o.ec.RunID,
			logger.FieldOperation, o.name,
		))
		o.log.Debug("enumeration started")
	}
	v, ok, err := o.in.next(trace.ContextWithSpan(ctx, o.span))
	if err != nil {
		o.err = err
		return v, false, err
	}
	if ok {
		o.elements++
	}
	return v, ok, nil
}

func (o *instrumentOp[T]) release() error {
	err := o.in.close()
	if o.ec == nil {
		return err
	}
	final := errors.Aggregate(o.err, err)
	o.ec.End(o.ctx, o.span, o.elements, string(codeOf(final)), final)
	l := o.log
	if final != nil {
		l = l.WithError(final)
	}
	l.Debug("enumeration finished", logger.MergeWithDuration(
		logger.Fields(logger.FieldElements, o.elements), o.ec.Duration()))
	return err
}

// codeOf returns the AppError code carried by err.
func codeOf(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	if errors.IsCanceled(err) {
		return errors.ErrCodeCanceled
	}
	var app *errors.AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return errors.ErrCodeInternal
}
