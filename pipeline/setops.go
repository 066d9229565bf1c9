package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/errors"
)

func identity[T any](_ context.Context, v T) (T, error) { return v, nil }

// Except yields the distinct elements of first that do not appear in second.
// second is read to the end before first is read.
func Except[T comparable](first, second *Pipeline[T], cmp ...collections.Comparer[T]) *Pipeline[T] {
	return setOp(first, second, "Except", identity[T], comparerOf(cmp), exceptMode)
}

// ExceptBy yields the elements of first whose key does not appear in the
// keys of second, keeping the first element seen for each key.
func ExceptBy[T any, K comparable](first *Pipeline[T], second *Pipeline[K], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) *Pipeline[T] {
	return setOp(first, second, "ExceptBy", key, comparerOf(cmp), exceptMode)
}

// Intersect yields the distinct elements of first that also appear in
// second.
func Intersect[T comparable](first, second *Pipeline[T], cmp ...collections.Comparer[T]) *Pipeline[T] {
	return setOp(first, second, "Intersect", identity[T], comparerOf(cmp), intersectMode)
}

// IntersectBy yields the elements of first whose key appears in second, at
// most one per key.
func IntersectBy[T any, K comparable](first *Pipeline[T], second *Pipeline[K], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) *Pipeline[T] {
	return setOp(first, second, "IntersectBy", key, comparerOf(cmp), intersectMode)
}

type setMode uint8

const (
	exceptMode setMode = iota
	intersectMode
)

func setOp[T any, K comparable](
	first *Pipeline[T],
	second *Pipeline[K],
	op string,
	key func(context.Context, T) (K, error),
	cmp collections.Comparer[K],
	mode setMode,
) *Pipeline[T] {
	return chain2(first, second, op, func(_ context.Context, a Iterator[T], b Iterator[K]) operator[T] {
		return &setOpIter[T, K]{first: input[T]{it: a}, second: input[K]{it: b}, key: key, cmp: cmp, mode: mode}
	})
}

type setOpIter[T any, K comparable] struct {
	first  input[T]
	second input[K]
	key    func(context.Context, T) (K, error)
	cmp    collections.Comparer[K]
	mode   setMode
	set    *collections.Set[K]
}

func (o *setOpIter[T, K]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	if o.set == nil {
		o.set = collections.NewSet[K](o.cmp, active().lookupCapacity)
		for {
			k, ok, err := o.second.next(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				break
			}
			o.set.Add(k)
		}
	}
	for {
		v, ok, err := o.first.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		k, err := o.key(ctx, v)
		if err != nil {
			return zero, false, err
		}
		var keep bool
		if o.mode == exceptMode {
			keep = o.set.Add(k)
		} else {
			keep = o.set.Remove(k)
		}
		if keep {
			return v, true, nil
		}
	}
}

func (o *setOpIter[T, K]) release() error {
	if o.set != nil {
		o.set.Close()
		o.set = nil
	}
	return closePair(&o.first, &o.second)
}

// closePair closes the second input, then the first, and reports both
// failures.
func closePair[A, B any](first *input[A], second *input[B]) error {
	errSecond := second.close()
	errFirst := first.close()
	return errors.Aggregate(errSecond, errFirst)
}

// Distinct yields each distinct element once, in first-seen order.
func Distinct[T comparable](p *Pipeline[T], cmp ...collections.Comparer[T]) *Pipeline[T] {
	return distinctBy(p, "Distinct", identity[T], comparerOf(cmp))
}

// DistinctBy yields the first element seen for each key.
func DistinctBy[T any, K comparable](p *Pipeline[T], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) *Pipeline[T] {
	return distinctBy(p, "DistinctBy", key, comparerOf(cmp))
}

func distinctBy[T any, K comparable](p *Pipeline[T], op string, key func(context.Context, T) (K, error), cmp collections.Comparer[K]) *Pipeline[T] {
	return chain(p, op, func(_ context.Context, in Iterator[T]) operator[T] {
		return &distinctOp[T, K]{in: input[T]{it: in}, key: key, cmp: cmp}
	})
}

type distinctOp[T any, K comparable] struct {
	in  input[T]
	key func(context.Context, T) (K, error)
	cmp collections.Comparer[K]
	set *collections.Set[K]
}

func (o *distinctOp[T, K]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		k, err := o.key(ctx, v)
		if err != nil {
			return zero, false, err
		}
		if o.set == nil {
			o.set = collections.NewSet[K](o.cmp, active().lookupCapacity)
		}
		if o.set.Add(k) {
			return v, true, nil
		}
	}
}

func (o *distinctOp[T, K]) release() error {
	if o.set != nil {
		o.set.Close()
		o.set = nil
	}
	return o.in.close()
}
