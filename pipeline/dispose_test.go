package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/kbukum/seqkit/collections"
)

// disposable closes a pipeline either through its handle or through a fresh
// enumeration that is never advanced.
type disposable struct {
	close     func() error
	iterClose func(ctx context.Context) error
}

func disposer[T any](p *Pipeline[T]) disposable {
	return disposable{
		close:     p.Close,
		iterClose: func(ctx context.Context) error { return p.Iter(ctx).Close() },
	}
}

func TestDisposeBeforeStart(t *testing.T) {
	type build func(first, second *Pipeline[int], hit func()) disposable

	keyOf := func(hit func()) func(context.Context, int) (int, error) {
		return func(_ context.Context, n int) (int, error) {
			hit()
			return n, nil
		}
	}
	comparer := func(hit func()) collections.Comparer[int] {
		return collections.ComparerFunc[int]{
			EqualFunc: func(a, b int) bool { hit(); return a == b },
			HashFunc:  func(k int) uint64 { hit(); return uint64(k) },
		}
	}

	tests := []struct {
		name   string
		binary bool
		build  build
	}{
		{"Where", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(Where(a, func(int) bool { hit(); return true }))
		}},
		{"SelectMany", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(SelectMany(a, func(_ context.Context, n int) (*Pipeline[int], error) {
				hit()
				return Of(n), nil
			}))
		}},
		{"Tap", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(Tap(a, func(context.Context, int) error { hit(); return nil }))
		}},
		{"SkipWhile", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(SkipWhile(a, func(int) bool { hit(); return true }))
		}},
		{"TakeWhile", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(TakeWhile(a, func(int) bool { hit(); return true }))
		}},
		{"GroupBy", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(GroupBy(a, keyOf(hit)))
		}},
		{"GroupByElement", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(GroupByElement(a, keyOf(hit), keyOf(hit)))
		}},
		{"AggregateBy", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(AggregateBy(a, keyOf(hit),
				func(int) int { hit(); return 0 },
				func(_ context.Context, acc, n int) (int, error) { hit(); return acc + n, nil }))
		}},
		{"CountBy", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(CountBy(a, keyOf(hit)))
		}},
		{"DistinctBy", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(DistinctBy(a, keyOf(hit)))
		}},
		{"OrderByThenBy", false, func(a, _ *Pipeline[int], hit func()) disposable {
			return disposer(ThenByDescending(OrderBy(a, keyOf(hit)), keyOf(hit)))
		}},
		{"AppendPrepend", false, func(a, _ *Pipeline[int], _ func()) disposable {
			return disposer(Append(Prepend(a, 0), 9))
		}},
		{"TakeLast", false, func(a, _ *Pipeline[int], _ func()) disposable {
			return disposer(TakeLast(a, 2))
		}},
		{"Join", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(Join(a, b, keyOf(hit), keyOf(hit),
				func(_ context.Context, o, i int) (int, error) { hit(); return o + i, nil }))
		}},
		{"GroupJoin", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(GroupJoin(a, b, keyOf(hit), keyOf(hit),
				func(_ context.Context, o int, _ collections.View[int]) (int, error) { hit(); return o, nil }))
		}},
		{"Except", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(Except(a, b, comparer(hit)))
		}},
		{"ExceptBy", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(ExceptBy(a, b, keyOf(hit)))
		}},
		{"Intersect", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(Intersect(a, b, comparer(hit)))
		}},
		{"IntersectBy", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(IntersectBy(a, b, keyOf(hit)))
		}},
		{"Union", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(Union(a, b, comparer(hit)))
		}},
		{"UnionBy", true, func(a, b *Pipeline[int], hit func()) disposable {
			return disposer(UnionBy(a, b, keyOf(hit)))
		}},
	}

	for _, tc := range tests {
		for _, viaIter := range []bool{false, true} {
			name := tc.name + "/Close"
			if viaIter {
				name = tc.name + "/IterClose"
			}
			t.Run(name, func(t *testing.T) {
				var calls atomic.Int32
				var order []string

				first, fp := tracked(1, 2, 3)
				fp.onClose = func() { order = append(order, "first") }
				usages := []*usage{fp}

				var second *Pipeline[int]
				if tc.binary {
					var sp *usage
					second, sp = tracked(2, 3, 4)
					sp.onClose = func() { order = append(order, "second") }
					usages = append(usages, sp)
				}

				d := tc.build(first, second, func() { calls.Add(1) })
				var err error
				if viaIter {
					err = d.iterClose(context.Background())
				} else {
					err = d.close()
				}
				if err != nil {
					t.Fatalf("close: %v", err)
				}

				if n := calls.Load(); n != 0 {
					t.Errorf("callbacks ran %d times", n)
				}
				for i, p := range usages {
					if p.reads.Load() != 0 || p.closes.Load() != 1 {
						t.Errorf("source %d: reads=%d closes=%d, want 0 and 1", i, p.reads.Load(), p.closes.Load())
					}
				}
				if tc.binary {
					assertEqual(t, order, []string{"second", "first"})
				}
			})
		}
	}
}
