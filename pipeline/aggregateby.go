package pipeline

import (
	"context"
	"iter"

	"github.com/kbukum/seqkit/collections"
)

// KeyValue is a key paired with the value accumulated for it.
type KeyValue[K, V any] struct {
	Key   K
	Value V
}

// AggregateBy folds the elements of each key into an accumulator and yields
// one KeyValue per key, in the order keys were first seen. seed produces the
// initial accumulator of a new key. The source is read to the end before the
// first result.
func AggregateBy[T any, K comparable, A any](
	p *Pipeline[T],
	key func(context.Context, T) (K, error),
	seed func(K) A,
	fn func(context.Context, A, T) (A, error),
	cmp ...collections.Comparer[K],
) *Pipeline[KeyValue[K, A]] {
	c := comparerOf(cmp)
	return chain(p, "AggregateBy", func(_ context.Context, in Iterator[T]) operator[KeyValue[K, A]] {
		return &aggregateByOp[T, K, A]{in: input[T]{it: in}, key: key, seed: seed, fn: fn, cmp: c}
	})
}

// CountBy yields the number of elements per key, in first-seen key order.
func CountBy[T any, K comparable](p *Pipeline[T], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) *Pipeline[KeyValue[K, int]] {
	return AggregateBy(p, key,
		func(K) int { return 0 },
		func(_ context.Context, n int, _ T) (int, error) { return n + 1, nil },
		cmp...)
}

type aggregateByOp[T any, K comparable, A any] struct {
	in     input[T]
	key    func(context.Context, T) (K, error)
	seed   func(K) A
	fn     func(context.Context, A, T) (A, error)
	cmp    collections.Comparer[K]
	lookup *collections.SingleValueLookup[K, A]
	next   func() (K, A, bool)
	stop   func()
	built  bool
}

func (o *aggregateByOp[T, K, A]) advance(ctx context.Context) (KeyValue[K, A], bool, error) {
	var zero KeyValue[K, A]
	if !o.built {
		if err := o.build(ctx); err != nil {
			return zero, false, err
		}
		o.built = true
	}
	if o.next == nil {
		return zero, false, nil
	}
	k, a, ok := o.next()
	if !ok {
		return zero, false, nil
	}
	return KeyValue[K, A]{Key: k, Value: a}, true, nil
}

func (o *aggregateByOp[T, K, A]) build(ctx context.Context) error {
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		k, err := o.key(ctx, v)
		if err != nil {
			return err
		}
		if o.lookup == nil {
			o.lookup = collections.NewSingleValueLookup[K, A](o.cmp, active().lookupCapacity)
		}
		acc, created := o.lookup.Slot(k)
		if created {
			*acc = o.seed(k)
		}
		next, err := o.fn(ctx, *acc, v)
		if err != nil {
			return err
		}
		*acc = next
	}
	if o.lookup != nil {
		o.next, o.stop = iter.Pull2(o.lookup.All())
	}
	return nil
}

func (o *aggregateByOp[T, K, A]) release() error {
	if o.stop != nil {
		o.stop()
	}
	if o.lookup != nil {
		o.lookup.Close()
		o.lookup = nil
	}
	return o.in.close()
}

func comparerOf[K comparable](cmp []collections.Comparer[K]) collections.Comparer[K] {
	if len(cmp) == 0 {
		return collections.DefaultComparer[K]{}
	}
	return collections.OrDefault(cmp[0])
}
