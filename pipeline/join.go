package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/collections"
)

// Join correlates outer and inner elements with equal keys and yields
// result for every matching pair, in outer order and then inner order.
// Inner elements with a nil key never match. inner is only read once outer
// has produced its first element.
func Join[O, I any, K comparable, R any](
	outer *Pipeline[O],
	inner *Pipeline[I],
	outerKey func(context.Context, O) (K, error),
	innerKey func(context.Context, I) (K, error),
	result func(context.Context, O, I) (R, error),
	cmp ...collections.Comparer[K],
) *Pipeline[R] {
	c := comparerOf(cmp)
	return chain2(outer, inner, "Join", func(_ context.Context, a Iterator[O], b Iterator[I]) operator[R] {
		return &joinOp[O, I, K, R]{
			outer: input[O]{it: a}, inner: input[I]{it: b},
			outerKey: outerKey, innerKey: innerKey, result: result, cmp: c,
		}
	})
}

type joinOp[O, I any, K comparable, R any] struct {
	outer    input[O]
	inner    input[I]
	outerKey func(context.Context, O) (K, error)
	innerKey func(context.Context, I) (K, error)
	result   func(context.Context, O, I) (R, error)
	cmp      collections.Comparer[K]

	lookup  *collections.Lookup[K, I]
	current O
	matches collections.View[I]
	pos     int
}

func (o *joinOp[O, I, K, R]) advance(ctx context.Context) (R, bool, error) {
	var zero R
	for {
		if o.pos < o.matches.Len() {
			e := o.matches.At(o.pos)
			o.pos++
			r, err := o.result(ctx, o.current, e)
			if err != nil {
				return zero, false, err
			}
			return r, true, nil
		}
		v, ok, err := o.outer.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		if o.lookup == nil {
			lookup, err := buildLookup(ctx, &o.inner, o.innerKey, identity[I], o.cmp, true)
			o.lookup = lookup
			if err != nil {
				return zero, false, err
			}
		}
		k, err := o.outerKey(ctx, v)
		if err != nil {
			return zero, false, err
		}
		o.current, o.matches, o.pos = v, collections.View[I]{}, 0
		if collections.IsNil(k) {
			continue
		}
		if g := o.lookup.Get(k); g != nil {
			o.matches = g.Elements()
		}
	}
}

func (o *joinOp[O, I, K, R]) release() error {
	o.matches = collections.View[I]{}
	if o.lookup != nil {
		o.lookup.Close()
		o.lookup = nil
	}
	return closePair(&o.outer, &o.inner)
}

// GroupJoin yields result once per outer element, together with a view of
// the inner elements sharing its key. An outer element without matches is
// paired with an empty view. The view is only valid during the call to
// result.
func GroupJoin[O, I any, K comparable, R any](
	outer *Pipeline[O],
	inner *Pipeline[I],
	outerKey func(context.Context, O) (K, error),
	innerKey func(context.Context, I) (K, error),
	result func(context.Context, O, collections.View[I]) (R, error),
	cmp ...collections.Comparer[K],
) *Pipeline[R] {
	c := comparerOf(cmp)
	return chain2(outer, inner, "GroupJoin", func(_ context.Context, a Iterator[O], b Iterator[I]) operator[R] {
		return &groupJoinOp[O, I, K, R]{
			outer: input[O]{it: a}, inner: input[I]{it: b},
			outerKey: outerKey, innerKey: innerKey, result: result, cmp: c,
		}
	})
}

type groupJoinOp[O, I any, K comparable, R any] struct {
	outer    input[O]
	inner    input[I]
	outerKey func(context.Context, O) (K, error)
	innerKey func(context.Context, I) (K, error)
	result   func(context.Context, O, collections.View[I]) (R, error)
	cmp      collections.Comparer[K]
	lookup   *collections.Lookup[K, I]
}

func (o *groupJoinOp[O, I, K, R]) advance(ctx context.Context) (R, bool, error) {
	var zero R
	v, ok, err := o.outer.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if o.lookup == nil {
		lookup, err := buildLookup(ctx, &o.inner, o.innerKey, identity[I], o.cmp, true)
		o.lookup = lookup
		if err != nil {
			return zero, false, err
		}
	}
	k, err := o.outerKey(ctx, v)
	if err != nil {
		return zero, false, err
	}
	var matches collections.View[I]
	if !collections.IsNil(k) {
		if g := o.lookup.Get(k); g != nil {
			matches = g.Elements()
		}
	}
	r, err := o.result(ctx, v, matches)
	if err != nil {
		return zero, false, err
	}
	return r, true, nil
}

func (o *groupJoinOp[O, I, K, R]) release() error {
	if o.lookup != nil {
		o.lookup.Close()
		o.lookup = nil
	}
	return closePair(&o.outer, &o.inner)
}
