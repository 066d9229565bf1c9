package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/seqkit/errors"
)

type person struct {
	Name string
	Age  int
}

func age(_ context.Context, p person) (int, error) { return p.Age, nil }

func name(_ context.Context, p person) (string, error) { return p.Name, nil }

func names(t *testing.T, p *Pipeline[person]) []string {
	t.Helper()
	var out []string
	for _, v := range collect(t, p) {
		out = append(out, v.Name)
	}
	return out
}

var people = []person{
	{"dan", 30}, {"amy", 25}, {"cal", 30}, {"bea", 25}, {"eve", 40},
}

func TestOrderBy_Stable(t *testing.T) {
	got := names(t, OrderBy(FromSlice(people), age))
	assertEqual(t, got, []string{"amy", "bea", "dan", "cal", "eve"})
}

func TestOrderByDescending_Stable(t *testing.T) {
	got := names(t, OrderByDescending(FromSlice(people), age))
	assertEqual(t, got, []string{"eve", "dan", "cal", "amy", "bea"})
}

func TestThenBy(t *testing.T) {
	got := names(t, ThenBy(OrderBy(FromSlice(people), age), name))
	assertEqual(t, got, []string{"amy", "bea", "cal", "dan", "eve"})
}

func TestThenByDescending(t *testing.T) {
	got := names(t, ThenByDescending(OrderByDescending(FromSlice(people), age), name))
	assertEqual(t, got, []string{"eve", "dan", "cal", "bea", "amy"})
}

func TestOrderByFunc(t *testing.T) {
	p := OrderByFunc(Of("b", "C", "a"), func(_ context.Context, s string) (string, error) { return s, nil },
		func(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) })
	assertEqual(t, collect(t, p), []string{"a", "b", "C"})
}

func TestThenByFunc(t *testing.T) {
	byLen := func(_ context.Context, s string) (int, error) { return len(s), nil }
	self := func(_ context.Context, s string) (string, error) { return s, nil }
	p := ThenByFunc(OrderBy(Of("ccc", "b", "aa", "a"), byLen), self, func(a, b string) int {
		return -strings.Compare(a, b)
	})
	assertEqual(t, collect(t, p), []string{"b", "a", "aa", "ccc"})
}

func TestThenBy_NotOrdered(t *testing.T) {
	src, usage := tracked(person{"x", 1})
	_, err := Collect(context.Background(), ThenBy(src, age))
	if !hasCode(err, errors.ErrCodeNotOrdered) {
		t.Errorf("expected not ordered, got %v", err)
	}
	if usage.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", usage.closes.Load())
	}
}

func TestThenBy_StaleOrderedHandle(t *testing.T) {
	ordered := OrderBy(FromSlice(people), age)
	_ = ThenBy(ordered, name)
	_, err := Collect(context.Background(), ThenBy(ordered, name))
	if !hasCode(err, errors.ErrCodeStaleHandle) {
		t.Errorf("expected stale handle, got %v", err)
	}
}

func TestOrderBy_KeyError(t *testing.T) {
	src, usage := tracked(3, 1, 2)
	p := OrderBy(src, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errBoom
		}
		return n, nil
	})
	got, err := Collect(context.Background(), p)
	if !errors.Is(err, errBoom) {
		t.Errorf("expected boom, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("nothing should be yielded, got %v", got)
	}
	if usage.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", usage.closes.Load())
	}
}

func TestOrderBy_Empty(t *testing.T) {
	if got := collect(t, OrderBy(Empty[int](), func(_ context.Context, n int) (int, error) { return n, nil })); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestOrderBy_ReadsWholeSourceFirst(t *testing.T) {
	src, usage := tracked(5, 4, 3)
	v, ok, err := First(context.Background(), OrderBy(src, func(_ context.Context, n int) (int, error) { return n, nil }))
	if err != nil || !ok || v != 3 {
		t.Fatalf("First = (%d, %v, %v)", v, ok, err)
	}
	if usage.reads.Load() != 3 {
		t.Errorf("reads = %d, want 3", usage.reads.Load())
	}
}
