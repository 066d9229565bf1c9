package pipeline

import (
	"context"
	"math"

	"github.com/kbukum/seqkit/collections"
	"github.com/kbukum/seqkit/errors"
)

// partition selects the positions [min, max] of its source. min < 0 marks a
// window proven empty; max < 0 means unbounded. Consecutive Skip and Take
// calls narrow the window of one node instead of stacking stages.
type partition[T any] struct {
	up       source[T]
	min, max int
}

func (s *partition[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &partitionOp[T]{in: input[T]{it: s.up.open(ctx)}, min: s.min, max: s.max})
}

func (s *partition[T]) discard() error { return s.up.discard() }

// lastPartition selects the positions [min, max] counted backwards from the
// last element, which is position 0.
type lastPartition[T any] struct {
	up       source[T]
	min, max int
}

func (s *lastPartition[T]) open(ctx context.Context) Iterator[T] {
	return drive[T](ctx, &lastPartitionOp[T]{in: input[T]{it: s.up.open(ctx)}, min: s.min, max: s.max})
}

func (s *lastPartition[T]) discard() error { return s.up.discard() }

// window is the bounds arithmetic shared by both partition kinds.
type window struct{ min, max int }

func (w window) empty() bool { return w.min < 0 }

// skip moves the lower bound up by n. ok is false when the new bound does not
// fit in an int and the caller has to stack a new node instead.
func (w window) skip(n int) (window, bool) {
	if w.empty() {
		return w, true
	}
	if w.min > math.MaxInt-n {
		return w, false
	}
	w.min += n
	if w.max >= 0 && w.min > w.max {
		w.min = -1
	}
	return w, true
}

// take caps the window at n elements past the lower bound.
func (w window) take(n int) window {
	if w.empty() {
		return w
	}
	last := math.MaxInt
	if w.min <= math.MaxInt-(n-1) {
		last = w.min + n - 1
	}
	if w.max < 0 || last < w.max {
		w.max = last
	}
	return w
}

// Skip bypasses the first n elements. n <= 0 leaves p unchanged.
func Skip[T any](p *Pipeline[T], n int) *Pipeline[T] {
	if n <= 0 {
		return p
	}
	if head, ok := headOf[*partition[T]](p); ok {
		if w, fits := (window{head.min, head.max}).skip(n); fits {
			return narrow(p, "Skip", func() { head.min, head.max = w.min, w.max })
		}
	}
	return wrapPartition(p, "Skip", window{min: n, max: -1})
}

// Take yields at most n elements and stops reading the source after the
// n-th. n <= 0 closes the source without reading it.
func Take[T any](p *Pipeline[T], n int) *Pipeline[T] {
	if head, ok := headOf[*partition[T]](p); ok {
		w := window{-1, -1}
		if n > 0 {
			w = (window{head.min, head.max}).take(n)
		}
		return narrow(p, "Take", func() { head.min, head.max = w.min, w.max })
	}
	if n <= 0 {
		return wrapPartition(p, "Take", window{min: -1, max: -1})
	}
	return wrapPartition(p, "Take", window{min: 0, max: n - 1})
}

// SkipLast bypasses the last n elements. n <= 0 leaves p unchanged.
func SkipLast[T any](p *Pipeline[T], n int) *Pipeline[T] {
	if n <= 0 {
		return p
	}
	if head, ok := headOf[*lastPartition[T]](p); ok {
		if w, fits := (window{head.min, head.max}).skip(n); fits {
			return narrow(p, "SkipLast", func() { head.min, head.max = w.min, w.max })
		}
	}
	return wrapLastPartition(p, "SkipLast", window{min: n, max: -1})
}

// TakeLast yields the last n elements. The source is read to the end before
// the first element is returned.
func TakeLast[T any](p *Pipeline[T], n int) *Pipeline[T] {
	if head, ok := headOf[*lastPartition[T]](p); ok {
		w := window{-1, -1}
		if n > 0 {
			w = (window{head.min, head.max}).take(n)
		}
		return narrow(p, "TakeLast", func() { head.min, head.max = w.min, w.max })
	}
	if n <= 0 {
		return wrapLastPartition(p, "TakeLast", window{min: -1, max: -1})
	}
	return wrapLastPartition(p, "TakeLast", window{min: 0, max: n - 1})
}

// headOf reports whether p's stage is a chain head of type S.
func headOf[S source[T], T any](p *Pipeline[T]) (S, bool) {
	var zero S
	if p == nil {
		return zero, false
	}
	s, ok := p.src.(S)
	return s, ok
}

// narrow applies update to the head behind p and returns its new handle.
func narrow[T any](p *Pipeline[T], op string, update func()) *Pipeline[T] {
	next, ok := p.reissue()
	if !ok {
		return Fail[T](errors.StaleHandle(op))
	}
	update()
	return next
}

func wrapPartition[T any](p *Pipeline[T], op string, w window) *Pipeline[T] {
	src, err := p.claim(op)
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&partition[T]{up: src, min: w.min, max: w.max})
}

func wrapLastPartition[T any](p *Pipeline[T], op string, w window) *Pipeline[T] {
	src, err := p.claim(op)
	if err != nil {
		return Fail[T](err)
	}
	return newPipeline[T](&lastPartition[T]{up: src, min: w.min, max: w.max})
}

type partitionOp[T any] struct {
	in       input[T]
	min, max int
	index    int
}

func (o *partitionOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	if o.min < 0 {
		return zero, false, o.in.close()
	}
	for o.index < o.min {
		_, ok, err := o.in.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		o.index++
	}
	if o.max >= 0 && o.index > o.max {
		return zero, false, nil
	}
	v, ok, err := o.in.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if o.index < math.MaxInt {
		o.index++
	}
	return v, true, nil
}

func (o *partitionOp[T]) release() error { return o.in.close() }

type lastPartitionOp[T any] struct {
	in       input[T]
	min, max int
	ring     *collections.Ring[T]
	filled   bool
	left     int
}

func (o *lastPartitionOp[T]) advance(ctx context.Context) (T, bool, error) {
	var zero T
	switch {
	case o.min < 0:
		return zero, false, o.in.close()
	case o.max < 0:
		return o.skipLast(ctx)
	}
	if !o.filled {
		limit := o.max
		if limit < math.MaxInt {
			limit++
		}
		o.ring = collections.NewRing[T](limit)
		for {
			v, ok, err := o.in.next(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				break
			}
			o.ring.Push(v)
		}
		o.filled = true
		o.left = o.ring.Len() - o.min
	}
	if o.left <= 0 {
		return zero, false, nil
	}
	o.left--
	v, _ := o.ring.Pop()
	return v, true, nil
}

// skipLast streams with a lag of min elements: each arrival past the first
// min pushes out the element it holds back.
func (o *lastPartitionOp[T]) skipLast(ctx context.Context) (T, bool, error) {
	if o.ring == nil {
		o.ring = collections.NewRing[T](o.min)
	}
	for {
		v, ok, err := o.in.next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		if old, evicted := o.ring.Push(v); evicted {
			return old, true, nil
		}
	}
}

func (o *lastPartitionOp[T]) release() error {
	if o.ring != nil {
		o.ring.Clear()
	}
	return o.in.close()
}
