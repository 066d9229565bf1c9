package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/errors"
)

// --- Stage plumbing ---

// unary is a stage with a single upstream.
type unary[I, O any] struct {
	up source[I]
	mk func(ctx context.Context, in Iterator[I]) operator[O]
}

func (s *unary[I, O]) open(ctx context.Context) Iterator[O] {
	return drive[O](ctx, s.mk(ctx, s.up.open(ctx)))
}

func (s *unary[I, O]) discard() error { return s.up.discard() }

func chain[I, O any](p *Pipeline[I], op string, mk func(ctx context.Context, in Iterator[I]) operator[O]) *Pipeline[O] {
	src, err := p.claim(op)
	if err != nil {
		return Fail[O](err)
	}
	return newPipeline[O](&unary[I, O]{up: src, mk: mk})
}

// binary is a stage with two upstreams. The second is always released first.
type binary[A, B, O any] struct {
	first  source[A]
	second source[B]
	mk     func(ctx context.Context, first Iterator[A], second Iterator[B]) operator[O]
}

func (s *binary[A, B, O]) open(ctx context.Context) Iterator[O] {
	a := s.first.open(ctx)
	b := s.second.open(ctx)
	return drive[O](ctx, s.mk(ctx, a, b))
}

func (s *binary[A, B, O]) discard() error {
	return errors.Aggregate(s.second.discard(), s.first.discard())
}

func chain2[A, B, O any](first *Pipeline[A], second *Pipeline[B], op string,
	mk func(ctx context.Context, first Iterator[A], second Iterator[B]) operator[O],
) *Pipeline[O] {
	a, err := first.claim(op)
	if err != nil {
		return Fail[O](err)
	}
	b, err := second.claim(op)
	if err != nil {
		return Fail[O](errors.Aggregate(err, a.discard()))
	}
	return newPipeline[O](&binary[A, B, O]{first: a, second: b, mk: mk})
}

// claimAll consumes every handle. If any is stale the ones already claimed
// are discarded and the error is returned.
func claimAll[T any](op string, ps []*Pipeline[T]) ([]source[T], error) {
	srcs := make([]source[T], 0, len(ps))
	for _, p := range ps {
		src, err := p.claim(op)
		if err != nil {
			return nil, errors.Aggregate(err, discardAll(srcs))
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// discardAll discards sources last to first.
func discardAll[T any](srcs []source[T]) error {
	var errs []error
	for i := len(srcs) - 1; i >= 0; i-- {
		errs = append(errs, srcs[i].discard())
	}
	return errors.Aggregate(errs...)
}

// closeAll closes inputs last to first.
func closeAll[T any](ins []input[T]) error {
	var errs []error
	for i := len(ins) - 1; i >= 0; i-- {
		errs = append(errs, ins[i].close())
	}
	return errors.Aggregate(errs...)
}

// --- Where ---

// Where keeps only values that satisfy pred.
func Where[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] {
	return where(p, "Where", func(_ context.Context, v T, _ int) (bool, error) { return pred(v), nil })
}

// WhereIndexed keeps values for which pred, given the value and its zero-based
// position in the source, returns true.
func WhereIndexed[T any](p *Pipeline[T], pred func(T, int) bool) *Pipeline[T] {
	return where(p, "WhereIndexed", func(_ context.Context, v T, i int) (bool, error) { return pred(v, i), nil })
}

// WhereAwait keeps values for which the context-aware pred returns true.
func WhereAwait[T any](p *Pipeline[T], pred func(context.Context, T) (bool, error)) *Pipeline[T] {
	return where(p, "WhereAwait", func(ctx context.Context, v T, _ int) (bool, error) { return pred(ctx, v) })
}

// WhereAwaitIndexed is WhereAwait with the element position.
func WhereAwaitIndexed[T any](p *Pipeline[T], pred func(context.Context, T, int) (bool, error)) *Pipeline[T] {
	return where(p, "WhereAwaitIndexed", pred)
}

// Filter is an alias of Where.
func Filter[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] { return Where(p, pred) }

func where[T any](p *Pipeline[T], op string, pred func(context.Context, T, int) (bool, error)) *Pipeline[T] {
	return chain(p, op, func(_ context.Context, in Iterator[T]) operator[T] {
		return &whereOp[T]{in: input[T]{it: in}, pred: pred}
	})
}

type whereOp[T any] struct {
	in    input[T]
	pred  func(context.Context, T, int) (bool, error)
	index int
}

func (o *whereOp[T]) advance(ctx context.Context) (T, bool, error) {
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil || !ok {
			return v, false, err
		}
		i := o.index
		o.index++
		keep, err := o.pred(ctx, v, i)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if keep {
			return v, true, nil
		}
	}
}

func (o *whereOp[T]) release() error { return o.in.close() }

// --- Select ---

// Select transforms each value using fn.
func Select[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return selectIndexed(p, "Select", func(ctx context.Context, v I, _ int) (O, error) { return fn(ctx, v) })
}

// SelectIndexed transforms each value together with its position.
func SelectIndexed[I, O any](p *Pipeline[I], fn func(context.Context, I, int) (O, error)) *Pipeline[O] {
	return selectIndexed(p, "SelectIndexed", fn)
}

// Map is an alias of Select.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return Select(p, fn)
}

func selectIndexed[I, O any](p *Pipeline[I], op string, fn func(context.Context, I, int) (O, error)) *Pipeline[O] {
	return chain(p, op, func(_ context.Context, in Iterator[I]) operator[O] {
		return &selectOp[I, O]{in: input[I]{it: in}, fn: fn}
	})
}

type selectOp[I, O any] struct {
	in    input[I]
	fn    func(context.Context, I, int) (O, error)
	index int
}

func (o *selectOp[I, O]) advance(ctx context.Context) (O, bool, error) {
	var zero O
	v, ok, err := o.in.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	i := o.index
	o.index++
	out, err := o.fn(ctx, v, i)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (o *selectOp[I, O]) release() error { return o.in.close() }

// --- SelectMany ---

// SelectMany projects each value to a pipeline and flattens the results in
// order. Each inner pipeline is closed as soon as it is exhausted.
func SelectMany[I, O any](p *Pipeline[I], fn func(context.Context, I) (*Pipeline[O], error)) *Pipeline[O] {
	return chain(p, "SelectMany", func(ctx context.Context, in Iterator[I]) operator[O] {
		return &selectManyOp[I, O]{bound: ctx, in: input[I]{it: in}, fn: fn}
	})
}

// FlatMap projects each value to an Iterator and flattens the results.
func FlatMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (Iterator[O], error)) *Pipeline[O] {
	return SelectMany(p, func(ctx context.Context, v I) (*Pipeline[O], error) {
		it, err := fn(ctx, v)
		if err != nil {
			return nil, err
		}
		return From(it), nil
	})
}

type selectManyOp[I, O any] struct {
	bound context.Context
	in    input[I]
	fn    func(context.Context, I) (*Pipeline[O], error)
	cur   input[O]
}

func (o *selectManyOp[I, O]) advance(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		if o.cur.it != nil {
			v, ok, err := o.cur.next(ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return v, true, nil
			}
			err = o.cur.close()
			o.cur = input[O]{}
			if err != nil {
				return zero, false, err
			}
		}
		v, ok, err := o.in.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		inner, err := o.fn(ctx, v)
		if err != nil {
			return zero, false, err
		}
		o.cur = input[O]{it: inner.Iter(o.bound)}
	}
}

func (o *selectManyOp[I, O]) release() error {
	return errors.Aggregate(o.cur.close(), o.in.close())
}

// --- Tap ---

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
// Use for logging, metrics, or mid-pipeline publishing.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return chain(p, "Tap", func(_ context.Context, in Iterator[T]) operator[T] {
		return &tapOp[T]{in: input[T]{it: in}, fn: fn}
	})
}

type tapOp[T any] struct {
	in input[T]
	fn func(context.Context, T) error
}

func (o *tapOp[T]) advance(ctx context.Context) (T, bool, error) {
	v, ok, err := o.in.next(ctx)
	if err != nil || !ok {
		return v, false, err
	}
	if err := o.fn(ctx, v); err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

func (o *tapOp[T]) release() error { return o.in.close() }

// --- Reduce ---

// Reduce accumulates all values into a single result.
// The pipeline yields exactly one value: the final accumulator.
func Reduce[T, R any](p *Pipeline[T], init R, fn func(R, T) R) *Pipeline[R] {
	return chain(p, "Reduce", func(_ context.Context, in Iterator[T]) operator[R] {
		return &reduceOp[T, R]{in: input[T]{it: in}, acc: init, fn: fn}
	})
}

type reduceOp[T, R any] struct {
	in   input[T]
	acc  R
	fn   func(R, T) R
	done bool
}

func (o *reduceOp[T, R]) advance(ctx context.Context) (R, bool, error) {
	var zero R
	if o.done {
		return zero, false, nil
	}
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			o.done = true
			return o.acc, true, nil
		}
		o.acc = o.fn(o.acc, v)
	}
}

func (o *reduceOp[T, R]) release() error { return o.in.close() }

// --- Concat ---

// nary is a stage over several upstreams of the same element type.
type nary[T, O any] struct {
	ups []source[T]
	mk  func(ctx context.Context, ins []input[T]) operator[O]
}

func (s *nary[T, O]) open(ctx context.Context) Iterator[O] {
	ins := make([]input[T], len(s.ups))
	for i, up := range s.ups {
		ins[i] = input[T]{it: up.open(ctx)}
	}
	return drive[O](ctx, s.mk(ctx, ins))
}

func (s *nary[T, O]) discard() error { return discardAll(s.ups) }

// Concat joins multiple pipelines sequentially.
// All values from the first pipeline are yielded before the second, etc.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	srcs, err := claimAll("Concat", pipelines)
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&nary[T, T]{ups: srcs, mk: func(_ context.Context, ins []input[T]) operator[T] {
		return &concatOp[T]{ins: ins}
	}})
}

type concatOp[T any] struct {
	ins   []input[T]
	index int
}

func (o *concatOp[T]) advance(ctx context.Context) (T, bool, error) {
	for o.index < len(o.ins) {
		v, ok, err := o.ins[o.index].next(ctx)
		if err != nil {
			return v, false, err
		}
		if ok {
			return v, true, nil
		}
		if err := o.ins[o.index].close(); err != nil {
			var zero T
			return zero, false, err
		}
		o.index++
	}
	var zero T
	return zero, false, nil
}

func (o *concatOp[T]) release() error { return closeAll(o.ins) }
