package pipeline

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator. It is safe to call
	// more than once.
	Close() error
}

// source is an unstarted pipeline stage.
type source[T any] interface {
	// open starts the stage: it opens every upstream with ctx before any
	// element is requested and returns the stage's iterator.
	open(ctx context.Context) Iterator[T]
	// discard releases a stage that will never be opened. It must not run
	// any user callback.
	discard() error
}

// Pipeline is a lazy, single-use handle to a sequence. No work happens until
// values are pulled from the iterator returned by Iter.
//
// Every use of a handle consumes it: Iter, Close, or passing it to an
// operator. A consumed handle fails with errors.ErrCodeStaleHandle when it is
// used again. Chaining operators of the same family (Append/Prepend, Union,
// OrderBy/ThenBy) extends the existing stage in place and returns a new
// handle; the previous one becomes stale.
type Pipeline[T any] struct {
	src   source[T]
	epoch *atomic.Uint64
	id    uint64
}

func newPipeline[T any](src source[T]) *Pipeline[T] {
	return &Pipeline[T]{src: src, epoch: new(atomic.Uint64)}
}

// valid reports whether the handle can still be used, without consuming it.
func (p *Pipeline[T]) valid() bool {
	return p != nil && p.src != nil && p.epoch.Load() == p.id
}

// claim consumes the handle and returns its stage.
func (p *Pipeline[T]) claim(op string) (source[T], error) {
	if p == nil || p.src == nil {
		return nil, errors.InvalidArgument("pipeline", "nil pipeline")
	}
	if !p.epoch.CompareAndSwap(p.id, p.id+1) {
		log().Debug("stale pipeline handle", logger.Fields(
			logger.FieldOperator, op,
			logger.FieldEpoch, p.id,
		))
		return nil, errors.StaleHandle(op)
	}
	return p.src, nil
}

// reissue consumes the handle of a chain head and returns a fresh handle to
// the same stage. ok is false when the handle was stale.
func (p *Pipeline[T]) reissue() (next *Pipeline[T], ok bool) {
	if !p.epoch.CompareAndSwap(p.id, p.id+1) {
		return nil, false
	}
	return &Pipeline[T]{src: p.src, epoch: p.epoch, id: p.id + 1}, true
}

// Iter starts the pipeline and returns its iterator. ctx is the cancellation
// signal of the whole enumeration; it reaches every upstream stage before the
// first element is produced. The caller must Close the iterator.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	src, err := p.claim("Iter")
	if err != nil {
		return failed[T](ctx, err)
	}
	return src.open(ctx)
}

// Close releases a pipeline that will never be enumerated. No user callback
// runs.
func (p *Pipeline[T]) Close() error {
	src, err := p.claim("Close")
	if err != nil {
		return err
	}
	return src.discard()
}

// Epoch returns the handle's epoch id.
func (p *Pipeline[T]) Epoch() uint64 { return p.id }

// --- Constructors ---

// From creates a pipeline from an existing Iterator. The iterator is closed
// when the pipeline is closed, whether or not it was enumerated.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return newPipeline[T](&iteratorSource[T]{it: it})
}

// FromFunc creates a pipeline from a factory that produces an Iterator when
// enumeration starts.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return newPipeline[T](&factorySource[T]{fn: fn})
}

// FromSlice creates a pipeline from a slice of values.
func FromSlice[T any](items []T) *Pipeline[T] {
	return newPipeline[T](&sliceSource[T]{items: items})
}

// Of creates a pipeline over its arguments.
func Of[T any](items ...T) *Pipeline[T] { return FromSlice(items) }

// Empty returns a pipeline with no elements.
func Empty[T any]() *Pipeline[T] { return FromSlice[T](nil) }

// Range yields count consecutive integers starting at start.
func Range(start, count int) *Pipeline[int] {
	if count < 0 {
		return Fail[int](errors.InvalidArgument("count", "must not be negative"))
	}
	return newPipeline[int](&rangeSource{start: start, count: count})
}

// FromChannel yields values received from ch until it is closed.
func FromChannel[T any](ch <-chan T) *Pipeline[T] {
	return newPipeline[T](&channelSource[T]{ch: ch})
}

// FromSeq adapts an iter.Seq. The sequence is pulled one element per Next
// and stopped on Close.
func FromSeq[T any](seq iter.Seq[T]) *Pipeline[T] {
	return newPipeline[T](&seqSource[T]{seq: seq})
}

// Fail returns a pipeline whose first Next reports err.
func Fail[T any](err error) *Pipeline[T] {
	return newPipeline[T](&failSource[T]{err: err})
}

// --- Leaf stages ---

type iteratorSource[T any] struct{ it Iterator[T] }

func (s *iteratorSource[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &iteratorOp[T]{in: input[T]{it: s.it}})
}

func (s *iteratorSource[T]) discard() error { return s.it.Close() }

type factorySource[T any] struct {
	fn func(ctx context.Context) Iterator[T]
}

func (s *factorySource[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &iteratorOp[T]{in: input[T]{it: s.fn(ctx)}})
}

func (s *factorySource[T]) discard() error { return nil }

type iteratorOp[T any] struct{ in input[T] }

func (o *iteratorOp[T]) advance(ctx context.Context) (T, bool, error) { return o.in.next(ctx) }

func (o *iteratorOp[T]) release() error { return o.in.close() }

type sliceSource[T any] struct{ items []T }

func (s *sliceSource[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &sliceOp[T]{items: s.items})
}

func (s *sliceSource[T]) discard() error { return nil }

type sliceOp[T any] struct {
	items []T
	index int
}

func (o *sliceOp[T]) advance(_ context.Context) (T, bool, error) {
	if o.index >= len(o.items) {
		var zero T
		return zero, false, nil
	}
	v := o.items[o.index]
	o.index++
	return v, true, nil
}

func (o *sliceOp[T]) release() error { return nil }

type rangeSource struct{ start, count int }

func (s *rangeSource) open(ctx context.Context) Iterator[int] {
	return drive[int](ctx, &rangeOp{next: s.start, left: s.count})
}

func (s *rangeSource) discard() error { return nil }

type rangeOp struct{ next, left int }

func (o *rangeOp) advance(_ context.Context) (int, bool, error) {
	if o.left == 0 {
		return 0, false, nil
	}
	v := o.next
	o.next++
	o.left--
	return v, true, nil
}

func (o *rangeOp) release() error { return nil }

type channelSource[T any] struct{ ch <-chan T }

func (s *channelSource[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &channelOp[T]{ch: s.ch})
}

func (s *channelSource[T]) discard() error { return nil }

type channelOp[T any] struct{ ch <-chan T }

func (o *channelOp[T]) advance(ctx context.Context) (T, bool, error) {
	select {
	case v, open := <-o.ch:
		return v, open, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (o *channelOp[T]) release() error { return nil }

type seqSource[T any] struct{ seq iter.Seq[T] }

func (s *seqSource[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &seqOp[T]{seq: s.seq})
}

func (s *seqSource[T]) discard() error { return nil }

// seqOp pulls lazily; iter.Pull is only called on the first advance so an
// unstarted pipeline never starts the sequence.
type seqOp[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
}

func (o *seqOp[T]) advance(_ context.Context) (T, bool, error) {
	if o.next == nil {
		o.next, o.stop = iter.Pull(o.seq)
	}
	v, ok := o.next()
	return v, ok, nil
}

func (o *seqOp[T]) release() error {
	if o.stop != nil {
		o.stop()
	}
	return nil
}

type failSource[T any] struct{ err error }

func (s *failSource[T]) open(ctx context.Context) Iterator[T] { return failed[T](ctx, s.err) }

func (s *failSource[T]) discard() error { return nil }

func failed[T any](ctx context.Context, err error) Iterator[T] {
	return drive[T](ctx, &failOp[T]{err: err})
}

type failOp[T any] struct{ err error }

func (o *failOp[T]) advance(_ context.Context) (T, bool, error) {
	var zero T
	return zero, false, o.err
}

func (o *failOp[T]) release() error { return nil }

// input is an upstream iterator owned by an operator. Closing is idempotent
// so operators may close an upstream early and again during release.
type input[T any] struct {
	it     Iterator[T]
	closed bool
}

func (in *input[T]) next(ctx context.Context) (T, bool, error) {
	if in.closed {
		var zero T
		return zero, false, nil
	}
	return in.it.Next(ctx)
}

func (in *input[T]) close() error {
	if in.closed || in.it == nil {
		return nil
	}
	in.closed = true
	return in.it.Close()
}
