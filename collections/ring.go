package collections

import (
	"math"

	"github.com/emirpasic/gods/queues/circularbuffer"
)

const initialRingSize = 16

// Ring is a FIFO queue that holds at most Limit items. Storage starts small
// and doubles up to the limit, so a large limit over a short source does not
// allocate the whole window up front.
type Ring[T any] struct {
	q     *circularbuffer.Queue
	size  int
	limit int
}

// NewRing returns an empty ring holding at most limit items. limit must be
// at least 1.
func NewRing[T any](limit int) *Ring[T] {
	if limit < 1 {
		limit = 1
	}
	size := min(limit, initialRingSize)
	return &Ring[T]{q: circularbuffer.New(size), size: size, limit: limit}
}

// NewQueue returns an unbounded FIFO whose storage starts at capacity items
// and doubles as it fills. Push never evicts.
func NewQueue[T any](capacity int) *Ring[T] {
	size := max(capacity, 1)
	return &Ring[T]{q: circularbuffer.New(size), size: size, limit: math.MaxInt}
}

// Push appends v. When the ring already holds Limit items the oldest one is
// evicted and returned.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.q.Full() {
		if r.size < r.limit {
			r.growTo(min(r.limit, r.size*2))
		} else {
			evicted, ok = r.Pop()
		}
	}
	r.q.Enqueue(v)
	return evicted, ok
}

func (r *Ring[T]) growTo(size int) {
	next := circularbuffer.New(size)
	for {
		v, ok := r.q.Dequeue()
		if !ok {
			break
		}
		next.Enqueue(v)
	}
	r.q = next
	r.size = size
}

// Pop removes and returns the oldest item.
func (r *Ring[T]) Pop() (T, bool) {
	v, ok := r.q.Dequeue()
	if !ok {
		var zero T
		return zero, false
	}
	t, _ := v.(T) // nil interface values come back as the zero T
	return t, true
}

// Len returns the number of queued items.
func (r *Ring[T]) Len() int { return r.q.Size() }

// Full reports whether the ring holds Limit items.
func (r *Ring[T]) Full() bool { return r.q.Size() == r.limit }

// Limit returns the maximum number of items the ring holds.
func (r *Ring[T]) Limit() int { return r.limit }

// Clear drops every queued item.
func (r *Ring[T]) Clear() { r.q.Clear() }
