package pipeline

import (
	"context"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/kbukum/seqkit/errors"
)

// result carries one value or error across a channel.
type result[T any] struct {
	val T
	ok  bool
	err error
}

// Buffer adds a buffered channel between pipeline stages.
// This decouples the production rate from the consumption rate.
// size <= 0 uses the configured default. The producer goroutine starts on
// the first Next, so a Buffer that is never enumerated reads nothing.
func Buffer[T any](p *Pipeline[T], size int) *Pipeline[T] {
	if size <= 0 {
		size = active().bufferSize
	}
	return chain(p, "Buffer", func(ctx context.Context, in Iterator[T]) operator[T] {
		bufCtx, cancel := context.WithCancelCause(ctx)
		return &bufferOp[T]{ctx: bufCtx, cancel: cancel, in: input[T]{it: in}, size: size}
	})
}

type bufferOp[T any] struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	in     input[T]
	size   int
	ch     chan result[T]
	wg     conc.WaitGroup
	// exhausted is set by the producer before it closes ch after reading
	// the end of the source.
	exhausted bool
}

func (o *bufferOp[T]) advance(ctx context.Context) (T, bool, error) {
	if o.ch == nil {
		o.ch = make(chan result[T], o.size)
		o.wg.Go(o.produce)
	}
	select {
	case r, open := <-o.ch:
		if !open {
			var zero T
			if !o.exhausted {
				return zero, false, errors.Canceled(context.Cause(o.ctx))
			}
			return zero, false, nil
		}
		return r.val, r.ok, r.err
	case <-ctx.Done():
		var zero T
		return zero, false, errors.Canceled(context.Cause(ctx))
	}
}

func (o *bufferOp[T]) produce() {
	defer close(o.ch)
	rec := panics.Try(func() {
		for {
			val, ok, err := o.in.it.Next(o.ctx)
			if err != nil {
				select {
				case o.ch <- result[T]{err: err}:
				case <-o.ctx.Done():
				}
				return
			}
			if !ok {
				o.exhausted = true
				return
			}
			select {
			case o.ch <- result[T]{val: val, ok: true}:
			case <-o.ctx.Done():
				return
			}
		}
	})
	if rec != nil {
		select {
		case o.ch <- result[T]{err: errors.Internal(rec.AsError())}:
		case <-o.ctx.Done():
		}
	}
}

// release stops the producer and waits for it before closing the source,
// so the source is never advanced and closed at the same time.
func (o *bufferOp[T]) release() error {
	o.cancel(errStopped)
	o.wg.Wait()
	return o.in.close()
}
