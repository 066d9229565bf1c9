package pipeline

import (
	"context"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/errors"
)

// union is the chain head of Union and UnionBy. A plain Union head (keyed is
// false) absorbs further Union calls made with the same comparer.
type union[T any, K comparable] struct {
	ups   []source[T]
	key   func(context.Context, T) (K, error)
	cmp   collections.Comparer[K]
	keyed bool
}

func (s *union[T, K]) open(ctx context.Context) Iterator[T] {
	ins := make([]input[T], len(s.ups))
	for i, up := range s.ups {
		ins[i] = input[T]{it: up.open(ctx)}
	}
	return drive[T](ctx, &unionOp[T, K]{ins: ins, key: s.key, cmp: s.cmp})
}

func (s *union[T, K]) discard() error { return discardAll(s.ups) }

// Union yields the distinct elements of first followed by the distinct
// elements of second not already yielded. Chained Union calls with the same
// comparer share one stage.
func Union[T comparable](first, second *Pipeline[T], cmp ...collections.Comparer[T]) *Pipeline[T] {
	c := comparerOf(cmp)
	if !first.valid() || !second.valid() {
		return Fail[T](staleOf("Union", first, second))
	}
	if first == second {
		return Fail[T](errors.InvalidArgument("second", "same handle as first"))
	}
	if head, ok := plainUnion(first, c); ok {
		next, _ := first.reissue()
		src, _ := second.claim("Union")
		head.ups = appendFlattened(head.ups, src, c)
		return next
	}
	a, _ := first.claim("Union")
	b, _ := second.claim("Union")
	head := &union[T, T]{key: identity[T], cmp: c}
	head.ups = appendFlattened(append(head.ups, a), b, c)
	return newPipeline[T](head)
}

// UnionBy is Union with distinctness decided by key. UnionBy stages are
// never merged with neighbouring unions.
func UnionBy[T any, K comparable](first, second *Pipeline[T], key func(context.Context, T) (K, error), cmp ...collections.Comparer[K]) *Pipeline[T] {
	srcs, err := claimAll("UnionBy", []*Pipeline[T]{first, second})
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&union[T, K]{ups: srcs, key: key, cmp: comparerOf(cmp), keyed: true})
}

func plainUnion[T comparable](p *Pipeline[T], c collections.Comparer[T]) (*union[T, T], bool) {
	head, ok := headOf[*union[T, T]](p)
	if !ok || head.keyed || !collections.SameComparer(head.cmp, c) {
		return nil, false
	}
	return head, true
}

// appendFlattened adds src to ups, splicing in its sources when src is a
// plain union head with a matching comparer.
func appendFlattened[T comparable](ups []source[T], src source[T], c collections.Comparer[T]) []source[T] {
	if head, ok := src.(*union[T, T]); ok && !head.keyed && collections.SameComparer(head.cmp, c) {
		return append(ups, head.ups...)
	}
	return append(ups, src)
}

func staleOf[T any](op string, ps ...*Pipeline[T]) error {
	for _, p := range ps {
		if !p.valid() {
			_, err := p.claim(op)
			return err
		}
	}
	return errors.StaleHandle(op)
}

type unionOp[T any, K comparable] struct {
	ins   []input[T]
	key   func(context.Context, T) (K, error)
	cmp   collections.Comparer[K]
	set   *collections.Set[K]
	index int
}

func (o *unionOp[T, K]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	for o.index < len(o.ins) {
		v, ok, err := o.ins[o.index].next(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			if err := o.ins[o.index].close(); err != nil {
				return zero, false, err
			}
			o.index++
			continue
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
	return zero, false, nil
}

func (o *unionOp[T, K]) release() error {
	if o.set != nil {
		o.set.Close()
		o.set = nil
	}
	return closeAll(o.ins)
}
