package pipeline

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

// errStopped is the cancellation cause handed to producer goroutines when
// their stage winds down.
var errStopped = errors.New(errors.ErrCodeCanceled, "enumeration stopped")

// Merge interleaves the elements of every pipeline in the order they become
// available. Each sub-sequence has at most one advance in flight; it is
// asked for its next element as soon as the previous one is handed out.
//
// The first failure cancels every sub-sequence. The merge then waits for all
// outstanding advances and closes every sub-sequence before reporting the
// failure together with any close errors.
func Merge[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	srcs, err := claimAll("Merge", pipelines)
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&merge[T]{subs: srcs})
}

// MergeAll merges a pipeline of pipelines. Sub-sequences are started as they
// are discovered, while discovery continues concurrently.
func MergeAll[T any](sources *Pipeline[*Pipeline[T]]) *Pipeline[T] {
	src, err := sources.claim("MergeAll")
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&merge[T]{outer: src})
}

type merge[T any] struct {
	subs  []source[T]
	outer source[*Pipeline[T]]
}

func (s *merge[T]) open(ctx context.Context) Iterator[T] {
	mctx, cancel := context.WithCancelCause(ctx)
	op := &mergeOp[T]{ctx: mctx, cancel: cancel, queue: newReadyQueue[T](active().mergeReadyQueue)}
	for _, up := range s.subs {
		op.subs = append(op.subs, &mergeSub[T]{index: len(op.subs), in: input[T]{it: up.open(mctx)}})
	}
	if s.outer != nil {
		op.outer = input[*Pipeline[T]]{it: s.outer.open(mctx)}
	}
	return drive[T](ctx, op)
}

func (s *merge[T]) discard() error {
	errs := []error{discardAll(s.subs)}
	if s.outer != nil {
		errs = append(errs, s.outer.discard())
	}
	return errors.Aggregate(errs...)
}

type mergeSub[T any] struct {
	index int
	in    input[T]
}

// ready is the outcome of one advance. sub is -1 for the discovery sequence
// of MergeAll.
type ready[T any] struct {
	sub   int
	value T
	next  *Pipeline[T]
	ok    bool
	err   error
}

type mergeOp[T any] struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	subs    []*mergeSub[T]
	outer   input[*Pipeline[T]]
	queue   *readyQueue[T]
	wg      conc.WaitGroup
	pending int
	started bool
}

func (o *mergeOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	if !o.started {
		o.started = true
		for _, s := range o.subs {
			o.pump(s)
		}
		if o.outer.it != nil {
			o.discover()
		}
	}
	for o.pending > 0 {
		r, err := o.queue.pop(ctx)
		if err != nil {
			return zero, false, err
		}
		o.pending--
		if r.err != nil {
			log().Debug("merge source failed", logger.MergeWithError(
				logger.Fields(logger.FieldSourceIndex, r.sub), r.err))
			return zero, false, r.err
		}
		if r.sub < 0 {
			if !r.ok {
				if err := o.outer.close(); err != nil {
					return zero, false, err
				}
				continue
			}
			s := &mergeSub[T]{index: len(o.subs), in: input[T]{it: r.next.Iter(o.ctx)}}
			o.subs = append(o.subs, s)
			o.pump(s)
			o.discover()
			continue
		}
		s := o.subs[r.sub]
		if !r.ok {
			if err := s.in.close(); err != nil {
				return zero, false, err
			}
			continue
		}
		o.pump(s)
		return r.value, true, nil
	}
	return zero, false, nil
}

// pump requests the next element of s on its own goroutine.
func (o *mergeOp[T]) pump(s *mergeSub[T]) {
	o.pending++
	o.wg.Go(func() {
		var r ready[T]
		if rec := panics.Try(func() {
			v, ok, err := s.in.it.Next(o.ctx)
			r = ready[T]{sub: s.index, value: v, ok: ok, err: err}
		}); rec != nil {
			r = ready[T]{sub: s.index, err: errors.Internal(rec.AsError())}
		}
		o.queue.push(r)
	})
}

// discover requests the next sub-sequence of MergeAll.
func (o *mergeOp[T]) discover() {
	o.pending++
	o.wg.Go(func() {
		var r ready[T]
		if rec := panics.Try(func() {
			p, ok, err := o.outer.it.Next(o.ctx)
			r = ready[T]{sub: -1, next: p, ok: ok, err: err}
		}); rec != nil {
			r = ready[T]{sub: -1, err: errors.Internal(rec.AsError())}
		}
		o.queue.push(r)
	})
}

// release cancels every sub-sequence, waits for the advances still in
// flight and closes everything that was opened, last opened first.
func (o *mergeOp[T]) release() error {
	o.cancel(errStopped)
	o.wg.Wait()

	var errs []error
	for _, r := range o.queue.drain() {
		if r.err != nil && !errors.IsCanceled(r.err) {
			errs = append(errs, r.err)
		}
		if r.sub < 0 && r.ok && r.next != nil {
			errs = append(errs, r.next.Close())
		}
	}
	for i := len(o.subs) - 1; i >= 0; i-- {
		errs = append(errs, o.subs[i].in.close())
	}
	errs = append(errs, o.outer.close())

	err := errors.Aggregate(errs...)
	if err != nil {
		log().WithError(err).Debug("merge wind-down", logger.Fields(logger.FieldOperator, "Merge"))
	}
	return err
}

// readyQueue is the multi-producer, single-consumer queue of advance
// outcomes.
type readyQueue[T any] struct {
	mu     sync.Mutex
	items  *collections.Ring[ready[T]]
	signal chan struct{}
}

func newReadyQueue[T any](capacity int) *readyQueue[T] {
	return &readyQueue[T]{items: collections.NewQueue[ready[T]](capacity), signal: make(chan struct{}, 1)}
}

func (q *readyQueue[T]) push(r ready[T]) {
	q.mu.Lock()
	q.items.Push(r)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *readyQueue[T]) pop(ctx context.Context) (ready[T], error) {
	for {
		q.mu.Lock()
		r, ok := q.items.Pop()
		q.mu.Unlock()
		if ok {
			return r, nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return ready[T]{}, errors.Canceled(context.Cause(ctx))
		}
	}
}

func (q *readyQueue[T]) drain() []ready[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	var items []ready[T]
	for {
		r, ok := q.items.Pop()
		if !ok {
			return items
		}
		items = append(items, r)
	}
}
