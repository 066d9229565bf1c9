package pipeline

import (
	"context"
	"iter"

	"github.com/kbukum/seqkit/collections"
)

// GroupBy groups elements by key and yields one grouping per key in the
// order keys were first seen. Groupings, and views taken from them, stay
// valid until the iterator is closed.
func GroupBy[T any, K comparable](p *Pipeline[T], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) *Pipeline[*collections.Grouping[K, T]] {
	return groupBy(p, "GroupBy", key, func(_ context.Context, v T) (T, error) { return v, nil }, cmp)
}

// GroupByElement is GroupBy with an element projection applied before an
// element is added to its grouping.
func GroupByElement[T any, K comparable, E any](
	p *Pipeline[T],
	key func(context.Context, T) (K, error),
	elem func(context.Context, T) (E, error),
	cmp ...collections.Comparer[K],
) *Pipeline[*collections.Grouping[K, E]] {
	return groupBy(p, "GroupByElement", key, elem, cmp)
}

func groupBy[T any, K comparable, E any](
	p *Pipeline[T],
	op string,
	key func(context.Context, T) (K, error),
	elem func(context.Context, T) (E, error),
	cmp []collections.Comparer[K],
) *Pipeline[*collections.Grouping[K, E]] {
	c := comparerOf(cmp)
	return chain(p, op, func(_ context.Context, in Iterator[T]) operator[*collections.Grouping[K, E]] {
		return &groupByOp[T, K, E]{in: input[T]{it: in}, key: key, elem: elem, cmp: c}
	})
}

type groupByOp[T any, K comparable, E any] struct {
	in     input[T]
	key    func(context.Context, T) (K, error)
	elem   func(context.Context, T) (E, error)
	cmp    collections.Comparer[K]
	lookup *collections.Lookup[K, E]
	next   func() (*collections.Grouping[K, E], bool)
	stop   func()
}

func (o *groupByOp[T, K, E]) advance(ctx context.Context) (*collections.Grouping[K, E], bool, error) {
	if o.next == nil {
		lookup, err := buildLookup(ctx, &o.in, o.key, o.elem, o.cmp, false)
		if err != nil {
			if lookup != nil {
				lookup.Close()
			}
			return nil, false, err
		}
		o.lookup = lookup
		o.next, o.stop = iter.Pull(lookup.All())
	}
	g, ok := o.next()
	return g, ok, nil
}

func (o *groupByOp[T, K, E]) release() error {
	if o.stop != nil {
		o.stop()
	}
	if o.lookup != nil {
		o.lookup.Close()
		o.lookup = nil
	}
	return o.in.close()
}

// buildLookup drains in into a new lookup. With skipNil, elements whose key
// is nil are left out.
func buildLookup[T any, K comparable, E any](
	ctx context.Context,
	in *input[T],
	key func(context.Context, T) (K, error),
	elem func(context.Context, T) (E, error),
	cmp collections.Comparer[K],
	skipNil bool,
) (*collections.Lookup[K, E], error) {
	lookup := collections.NewLookup[K, E](cmp, active().lookupCapacity)
	for {
		v, ok, err := in.next(ctx)
		if err != nil {
			return lookup, err
		}
		if !ok {
			return lookup, nil
		}
		k, err := key(ctx, v)
		if err != nil {
			return lookup, err
		}
		if skipNil && collections.IsNil(k) {
			continue
		}
		e, err := elem(ctx, v)
		if err != nil {
			return lookup, err
		}
		g, _ := lookup.GetOrCreate(k)
		g.Add(e)
	}
}

// ToLookup drains p into a Lookup. The caller owns the result and must
// Close it.
func ToLookup[T any, K comparable](ctx context.Context, p *Pipeline[T], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) (lookup *collections.Lookup[K, T], err error) {
	it := p.Iter(ctx)
	defer func() {
		err = closeWith(it, err)
		if err != nil && lookup != nil {
			lookup.Close()
			lookup = nil
		}
	}()
	in := input[T]{it: it}
	return buildLookup(ctx, &in, key, func(_ context.Context, v T) (T, error) { return v, nil }, comparerOf(cmp), false)
}
