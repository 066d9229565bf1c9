package pipeline

import (
	"cmp"
	"context"
	"slices"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/errors"
)

// ordered is the chain head of OrderBy and its ThenBy clauses, kept
// primary clause first.
type ordered[T any] struct {
	up      source[T]
	clauses []clause[T]
}

func (s *ordered[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &orderOp[T]{in: input[T]{it: s.up.open(ctx)}, clauses: s.clauses})
}

func (s *ordered[T]) discard() error { return s.up.discard() }

// clause computes the sort keys of one ordering level.
type clause[T any] interface {
	keys(ctx context.Context, items []T) (sortKeys, error)
}

// sortKeys compares elements by position and owns its key storage.
type sortKeys interface {
	compare(i, j int) int
	release()
}

type keyClause[T, K any] struct {
	key        func(context.Context, T) (K, error)
	compare    func(a, b K) int
	descending bool
}

func (c *keyClause[T, K]) keys(ctx context.Context, items []T) (sortKeys, error) {
	keys := collections.Rent[K](len(items))[:0]
	for _, v := range items {
		k, err := c.key(ctx, v)
		if err != nil {
			collections.Return(keys, true)
			return nil, err
		}
		keys = append(keys, k)
	}
	return &keyArray[K]{keys: keys, fn: c.compare, descending: c.descending}, nil
}

type keyArray[K any] struct {
	keys       []K
	fn         func(a, b K) int
	descending bool
}

func (k *keyArray[K]) compare(i, j int) int {
	c := k.fn(k.keys[i], k.keys[j])
	if k.descending {
		return -c
	}
	return c
}

func (k *keyArray[K]) release() {
	collections.Return(k.keys, true)
	k.keys = nil
}

// OrderBy sorts the elements in ascending key order. The sort is stable:
// elements with equal keys keep their source order.
func OrderBy[T any, K cmp.Ordered](p *Pipeline[T], key func(context.Context, T) (K, error)) *Pipeline[T] {
	return orderBy(p, "OrderBy", &keyClause[T, K]{key: key, compare: cmp.Compare[K]})
}

// OrderByDescending sorts the elements in descending key order.
func OrderByDescending[T any, K cmp.Ordered](p *Pipeline[T], key func(context.Context, T) (K, error)) *Pipeline[T] {
	return orderBy(p, "OrderByDescending", &keyClause[T, K]{key: key, compare: cmp.Compare[K], descending: true})
}

// OrderByFunc sorts by key using compare.
func OrderByFunc[T, K any](p *Pipeline[T], key func(context.Context, T) (K, error), compare func(a, b K) int) *Pipeline[T] {
	return orderBy(p, "OrderByFunc", &keyClause[T, K]{key: key, compare: compare})
}

// ThenBy adds an ascending tie-breaker to a pipeline returned by OrderBy or
// ThenBy. Any other pipeline is closed and the result fails with
// errors.ErrCodeNotOrdered.
func ThenBy[T any, K cmp.Ordered](p *Pipeline[T], key func(context.Context, T) (K, error)) *Pipeline[T] {
	return thenBy(p, "ThenBy", &keyClause[T, K]{key: key, compare: cmp.Compare[K]})
}

// ThenByDescending adds a descending tie-breaker.
func ThenByDescending[T any, K cmp.Ordered](p *Pipeline[T], key func(context.Context, T) (K, error)) *Pipeline[T] {
	return thenBy(p, "ThenByDescending", &keyClause[T, K]{key: key, compare: cmp.Compare[K], descending: true})
}

// ThenByFunc adds a tie-breaker ordered by compare.
func ThenByFunc[T, K any](p *Pipeline[T], key func(context.Context, T) (K, error), compare func(a, b K) int) *Pipeline[T] {
	return thenBy(p, "ThenByFunc", &keyClause[T, K]{key: key, compare: compare})
}

func orderBy[T any](p *Pipeline[T], op string, c clause[T]) *Pipeline[T] {
	src, err := p.claim(op)
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&ordered[T]{up: src, clauses: []clause[T]{c}})
}

func thenBy[T any](p *Pipeline[T], op string, c clause[T]) *Pipeline[T] {
	head, ok := headOf[*ordered[T]](p)
	if !ok {
		return Fail[T](errors.Aggregate(errors.NotOrdered(), p.Close()))
	}
	return narrow(p, op, func() { head.clauses = append(head.clauses, c) })
}

type orderOp[T any] struct {
	in      input[T]
	clauses []clause[T]
	items   *collections.Builder[T]
	perm    []int
	pos     int
}

func (o *orderOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	if o.items == nil {
		if err := o.sort(ctx); err != nil {
			return zero, false, err
		}
	}
	if o.pos >= len(o.perm) {
		return zero, false, nil
	}
	v := o.items.At(o.perm[o.pos])
	o.pos++
	return v, true, nil
}

// sort buffers the whole source, computes every clause's keys and sorts a
// permutation. Keys are released before the first element is yielded.
func (o *orderOp[T]) sort(ctx context.Context) error {
	o.items = collections.NewBuilder[T](0)
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		o.items.Add(v)
	}
	n := o.items.Len()
	if n == 0 {
		return nil
	}

	levels := make([]sortKeys, 0, len(o.clauses))
	defer func() {
		for _, k := range levels {
			k.release()
		}
	}()
	for _, c := range o.clauses {
		k, err := c.keys(ctx, o.items.Items())
		if err != nil {
			return err
		}
		levels = append(levels, k)
	}

	o.perm = collections.Rent[int](n)[:n]
	for i := range o.perm {
		o.perm[i] = i
	}
	slices.SortFunc(o.perm, func(i, j int) int {
		for _, k := range levels {
			if c := k.compare(i, j); c != 0 {
				return c
			}
		}
		return cmp.Compare(i, j)
	})
	return nil
}

func (o *orderOp[T]) release() error {
	if o.perm != nil {
		collections.Return(o.perm, false)
		o.perm = nil
	}
	if o.items != nil {
		o.items.Release()
	}
	return o.in.close()
}
