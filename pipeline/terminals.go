package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/errors"
)

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion or context cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) (err error) {
			it := p.Iter(ctx)
			defer func() { err = closeWith(it, err) }()
			for {
				val, ok, err := it.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// Collect runs the pipeline and returns all values as a slice.
func Collect[T any](ctx context.Context, p *Pipeline[T]) (out []T, err error) {
	err = ForEach(ctx, p, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// ForEach pulls all values and calls fn for each. Convenience wrapper around Drain.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Count returns the number of elements.
func Count[T any](ctx context.Context, p *Pipeline[T]) (int, error) {
	n := 0
	err := ForEach(ctx, p, func(context.Context, T) error {
		n++
		return nil
	})
	return n, err
}

// First returns the first element. ok is false for an empty pipeline. The
// source is closed right after the first element.
func First[T any](ctx context.Context, p *Pipeline[T]) (v T, ok bool, err error) {
	it := p.Iter(ctx)
	defer func() { err = closeWith(it, err) }()
	return it.Next(ctx)
}

// Any reports whether the pipeline has at least one element.
func Any[T any](ctx context.Context, p *Pipeline[T]) (bool, error) {
	_, ok, err := First(ctx, p)
	return ok, err
}

// ElementAt returns the element at index. ok is false when the pipeline is
// shorter than index+1 or index is negative.
func ElementAt[T any](ctx context.Context, p *Pipeline[T], index int) (T, bool, error) {
	if index < 0 {
		var zero T
		return zero, false, p.Close()
	}
	return First(ctx, Take(Skip(p, index), 1))
}

// closeWith closes it and combines the close error with err.
func closeWith[T any](it Iterator[T], err error) error {
	return errors.Aggregate(err, it.Close())
}
