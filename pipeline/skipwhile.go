package pipeline

import "context"

// SkipWhile bypasses values while pred holds and yields the rest, starting
// with the first value that failed the predicate.
func SkipWhile[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] {
	return skipWhile(p, "SkipWhile", func(_ context.Context, v T, _ int) (bool, error) { return pred(v), nil })
}

// SkipWhileIndexed is SkipWhile with the element position.
func SkipWhileIndexed[T any](p *Pipeline[T], pred func(T, int) bool) *Pipeline[T] {
	return skipWhile(p, "SkipWhileIndexed", func(_ context.Context, v T, i int) (bool, error) { return pred(v, i), nil })
}

// SkipWhileAwait is SkipWhile with a context-aware predicate.
func SkipWhileAwait[T any](p *Pipeline[T], pred func(context.Context, T) (bool, error)) *Pipeline[T] {
	return skipWhile(p, "SkipWhileAwait", func(ctx context.Context, v T, _ int) (bool, error) { return pred(ctx, v) })
}

func skipWhile[T any](p *Pipeline[T], op string, pred func(context.Context, T, int) (bool, error)) *Pipeline[T] {
	return chain(p, op, func(_ context.Context, in Iterator[T]) operator[T] {
		return &skipWhileOp[T]{in: input[T]{it: in}, pred: pred}
	})
}

type skipWhileOp[T any] struct {
	in       input[T]
	pred     func(context.Context, T, int) (bool, error)
	index    int
	yielding bool
}

func (o *skipWhileOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		if o.yielding {
			return v, true, nil
		}
		i := o.index
		o.index++
		skip, err := o.pred(ctx, v, i)
		if err != nil {
			return zero, false, err
		}
		if !skip {
			o.yielding = true
			return v, true, nil
		}
	}
}

func (o *skipWhileOp[T]) release() error { return o.in.close() }

// TakeWhile yields values while pred holds and stops reading the source at
// the first value that fails it.
func TakeWhile[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] {
	return chain(p, "TakeWhile", func(_ context.Context, in Iterator[T]) operator[T] {
		return &takeWhileOp[T]{in: input[T]{it: in}, pred: pred}
	})
}

type takeWhileOp[T any] struct {
	in   input[T]
	pred func(T) bool
	done bool
}

func (o *takeWhileOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	if o.done {
		return zero, false, nil
	}
	v, ok, err := o.in.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if !o.pred(v) {
		o.done = true
		return zero, false, nil
	}
	return v, true, nil
}

func (o *takeWhileOp[T]) release() error { return o.in.close() }
