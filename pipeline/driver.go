package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

// operator is the element-producing core of a stage. The driver owns the
// lifecycle around it: advance is only called while producing, and release
// is called exactly once.
type operator[T any] interface {
	advance(ctx context.Context) (T, bool, error)
	release() error
}

type state uint8

const (
	stateIdle state = iota
	stateProducing
	stateCompleted
	stateFailed
	stateDisposed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateProducing:
		return "producing"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	default:
		return "disposed"
	}
}

// driver implements Iterator on top of an operator.
//
//	idle -> producing -> completed -> disposed
//	                  \-> failed ----^
//
// A failing advance releases the operator immediately and every later Next
// returns the same error. A completed operator keeps its resources until
// Close.
type driver[T any] struct {
	bound context.Context
	op    operator[T]
	state state
	err   error
	busy  atomic.Bool
}

func drive[T any](ctx context.Context, op operator[T]) Iterator[T] {
	return &driver[T]{bound: ctx, op: op}
}

func (d *driver[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if !d.busy.CompareAndSwap(false, true) {
		return zero, false, errors.ConcurrentAdvance()
	}
	defer d.busy.Store(false)

	switch d.state {
	case stateDisposed:
		return zero, false, errors.IteratorClosed()
	case stateCompleted:
		return zero, false, nil
	case stateFailed:
		return zero, false, d.err
	}
	d.state = stateProducing

	if err := canceled(ctx, d.bound); err != nil {
		return zero, false, d.fail(err)
	}
	v, ok, err := d.op.advance(ctx)
	if err != nil {
		return zero, false, d.fail(err)
	}
	if !ok {
		d.state = stateCompleted
		return zero, false, nil
	}
	return v, true, nil
}

// fail releases the operator and combines its teardown error with err. A
// teardown failure takes priority over a cancellation.
func (d *driver[T]) fail(err error) error {
	d.state = stateFailed
	d.err = d.teardown(err)
	return d.err
}

func (d *driver[T]) teardown(err error) error {
	relErr := d.op.release()
	if relErr == nil {
		return err
	}
	log().Debug("release after failure", logger.MergeWithError(
		logger.Fields(logger.FieldStatus, stateFailed.String()), relErr))
	if errors.IsCanceled(err) {
		return relErr
	}
	return errors.Aggregate(err, relErr)
}

func (d *driver[T]) Close() error {
	if !d.busy.CompareAndSwap(false, true) {
		return errors.ConcurrentAdvance()
	}
	defer d.busy.Store(false)

	prev := d.state
	d.state = stateDisposed
	switch prev {
	case stateDisposed, stateFailed:
		return nil
	}
	return d.op.release()
}

// canceled reports the cancellation of the call or the bound context.
func canceled(call, bound context.Context) error {
	if call != nil && call.Err() != nil {
		return errors.Canceled(context.Cause(call))
	}
	if bound != nil && bound != call && bound.Err() != nil {
		return errors.Canceled(context.Cause(bound))
	}
	return nil
}
