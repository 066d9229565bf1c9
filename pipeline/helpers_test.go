package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/kbukum/seqkit/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// usage records how a tracked source was used.
type usage struct {
	reads  atomic.Int32
	closes atomic.Int32
	// closeErr is returned by Close when set.
	closeErr error
	// onClose runs on every Close when set.
	onClose func()
}

// trackedIter yields items and reports reads and closes to a usage.
type trackedIter[T any] struct {
	items []T
	index int
	p     *usage
	// failAt makes the Next that would read index failAt return err.
	failAt int
	err    error
}

func (it *trackedIter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if it.err != nil && it.index == it.failAt {
		return zero, false, it.err
	}
	if it.index >= len(it.items) {
		return zero, false, nil
	}
	v := it.items[it.index]
	it.index++
	it.p.reads.Add(1)
	return v, true, nil
}

func (it *trackedIter[T]) Close() error {
	it.p.closes.Add(1)
	if it.p.onClose != nil {
		it.p.onClose()
	}
	return it.p.closeErr
}

// tracked returns a pipeline over items and the usage observing it.
func tracked[T any](items ...T) (*Pipeline[T], *usage) {
	p := &usage{}
	return From[T](&trackedIter[T]{items: items, p: p}), p
}

// failing returns a pipeline that yields items and then fails with err.
func failing[T any](err error, items ...T) (*Pipeline[T], *usage) {
	p := &usage{}
	return From[T](&trackedIter[T]{items: items, p: p, failAt: len(items), err: err}), p
}

// closeFailing returns a pipeline over items whose Close fails with err.
func closeFailing[T any](err error, items ...T) (*Pipeline[T], *usage) {
	p := &usage{closeErr: err}
	return From[T](&trackedIter[T]{items: items, p: p}), p
}

func collect[T any](t *testing.T, p *Pipeline[T]) []T {
	t.Helper()
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return got
}

func assertEqual[T any](t *testing.T, got, want T) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func intSliceEqual(a, b []int) bool {
	return cmp.Equal(a, b)
}

func hasCode(err error, code errors.ErrorCode) bool {
	return errors.Is(err, &errors.AppError{Code: code})
}
