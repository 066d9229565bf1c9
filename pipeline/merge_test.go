package pipeline

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/seqkit/errors"
)

// waitIter blocks in Next until its context is canceled.
type waitIter struct {
	closes atomic.Int32
}

func (w *waitIter) Next(ctx context.Context) (int, bool, error) {
	<-ctx.Done()
	return 0, false, ctx.Err()
}

func (w *waitIter) Close() error {
	w.closes.Add(1)
	return nil
}

func sorted(v []int) []int {
	out := slices.Clone(v)
	slices.Sort(out)
	return out
}

func TestMerge(t *testing.T) {
	got := collect(t, Merge(FromSlice([]int{1, 2}), FromSlice([]int{10, 20, 30})))
	assertEqual(t, sorted(got), []int{1, 2, 10, 20, 30})
}

func TestMerge_KeepsOrderWithinSource(t *testing.T) {
	got := collect(t, Merge(Range(0, 50), Range(100, 50)))
	var low, high []int
	for _, v := range got {
		if v < 100 {
			low = append(low, v)
		} else {
			high = append(high, v)
		}
	}
	if !slices.IsSorted(low) || !slices.IsSorted(high) {
		t.Errorf("per-source order lost: %v", got)
	}
	if len(low) != 50 || len(high) != 50 {
		t.Errorf("got %d and %d elements, want 50 and 50", len(low), len(high))
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := collect(t, Merge[int]()); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
	if got := collect(t, Merge(Empty[int](), Empty[int]())); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestMerge_FailureCancelsAndClosesAll(t *testing.T) {
	bad, badProbe := failing[int](errBoom)
	wait := &waitIter{}

	done := make(chan error, 1)
	go func() {
		_, err := Collect(context.Background(), Merge(From[int](wait), bad))
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if errors.IsCanceled(err) {
			t.Errorf("sibling cancellation leaked into the result: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("merge did not cancel its blocked source")
	}
	if wait.closes.Load() != 1 {
		t.Errorf("blocked source closes = %d, want 1", wait.closes.Load())
	}
	if badProbe.closes.Load() != 1 {
		t.Errorf("failed source closes = %d, want 1", badProbe.closes.Load())
	}
}

func TestMerge_PanicBecomesError(t *testing.T) {
	p := Select(Of(1), func(context.Context, int) (int, error) { panic("kaboom") })
	_, err := Collect(context.Background(), Merge(p, Of(2)))
	if !hasCode(err, errors.ErrCodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestMerge_CloseWithoutEnumeration(t *testing.T) {
	a, pa := tracked(1)
	b, pb := tracked(2)
	if err := Merge(a, b).Close(); err != nil {
		t.Fatal(err)
	}
	for i, p := range []*usage{pa, pb} {
		if p.reads.Load() != 0 || p.closes.Load() != 1 {
			t.Errorf("source %d: reads=%d closes=%d", i, p.reads.Load(), p.closes.Load())
		}
	}
}

func TestMerge_EarlyClose(t *testing.T) {
	v, ok, err := First(context.Background(), Merge(Range(0, 1_000_000), Range(0, 1_000_000)))
	if err != nil || !ok {
		t.Fatalf("First = (%d, %v, %v)", v, ok, err)
	}
}

func TestMerge_StaleInput(t *testing.T) {
	a, pa := tracked(1)
	b := Of(2)
	_ = b.Close()
	_, err := Collect(context.Background(), Merge(a, b))
	if !hasCode(err, errors.ErrCodeStaleHandle) {
		t.Errorf("expected stale handle, got %v", err)
	}
	if pa.closes.Load() != 1 {
		t.Errorf("claimed source closes = %d, want 1", pa.closes.Load())
	}
}

func TestMergeAll(t *testing.T) {
	subs := Of(FromSlice([]int{1, 2}), Of(3), Empty[int](), Range(10, 3))
	got := collect(t, MergeAll(subs))
	assertEqual(t, sorted(got), []int{1, 2, 3, 10, 11, 12})
}

func TestMergeAll_ClosesEverySubSequence(t *testing.T) {
	var usages []*usage
	outer := Select(Range(0, 3), func(_ context.Context, n int) (*Pipeline[int], error) {
		p, pr := tracked(n, n+10)
		usages = append(usages, pr)
		return p, nil
	})
	got := collect(t, MergeAll(outer))
	assertEqual(t, sorted(got), []int{0, 1, 2, 10, 11, 12})
	for i, p := range usages {
		if p.closes.Load() != 1 {
			t.Errorf("sub %d closes = %d, want 1", i, p.closes.Load())
		}
	}
}

func TestBuffer(t *testing.T) {
	got := collect(t, Buffer(FromSlice([]int{1, 2, 3, 4, 5}), 2))
	want := []int{1, 2, 3, 4, 5}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuffer_NeverEnumerated(t *testing.T) {
	src, usage := tracked(1, 2, 3)
	if err := Buffer(src, 0).Close(); err != nil {
		t.Fatal(err)
	}
	if usage.reads.Load() != 0 || usage.closes.Load() != 1 {
		t.Errorf("reads=%d closes=%d, want 0 and 1", usage.reads.Load(), usage.closes.Load())
	}
}

func TestBuffer_Error(t *testing.T) {
	src, usage := failing(errBoom, 1, 2)
	got, err := Collect(context.Background(), Buffer(src, 1))
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	assertEqual(t, got, []int{1, 2})
	if usage.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", usage.closes.Load())
	}
}

// blockingIter blocks every Next until ctx is cancelled.
type blockingIter struct {
	started chan struct{}
	once    sync.Once
}

func (it *blockingIter) Next(ctx context.Context) (int, bool, error) {
	it.once.Do(func() { close(it.started) })
	<-ctx.Done()
	return 0, false, ctx.Err()
}

func (it *blockingIter) Close() error { return nil }

func TestBuffer_CancelMidStream(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		src := &blockingIter{started: make(chan struct{})}
		it := Buffer(From[int](src), 4).Iter(ctx)
		go func() {
			<-src.started
			cancel()
		}()

		_, ok, err := it.Next(context.Background())
		if ok || !errors.IsCanceled(err) {
			t.Fatalf("run %d: Next = (%v, %v), want a cancellation", i, ok, err)
		}
		if err := it.Close(); err != nil {
			t.Fatalf("run %d: Close: %v", i, err)
		}
		cancel()
	}
}

func TestBuffer_EarlyClose(t *testing.T) {
	src, usage := tracked(1, 2, 3, 4, 5, 6, 7, 8)
	v, ok, err := First(context.Background(), Buffer(src, 1))
	if err != nil || !ok || v != 1 {
		t.Fatalf("First = (%d, %v, %v)", v, ok, err)
	}
	if usage.closes.Load() != 1 {
		t.Errorf("closes = %d, want 1", usage.closes.Load())
	}
}
