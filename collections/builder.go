package collections

import (
	"iter"

	"github.com/kbukum/seqkit/errors"
)

// Builder is an owned, growable buffer. Its storage is rented from the array
// pool and handed back by Release.
type Builder[T any] struct {
	items []T
	// gen changes on every Release; views remember the value they saw.
	gen uint64
}

// NewBuilder returns a builder with room for at least capacity items.
func NewBuilder[T any](capacity int) *Builder[T] {
	b := &Builder[T]{}
	if capacity > 0 {
		b.items = Rent[T](capacity)
	}
	return b
}

// Add appends v, growing through the pool when the buffer is full.
func (b *Builder[T]) Add(v T) {
	if len(b.items) == cap(b.items) {
		b.grow()
	}
	b.items = append(b.items, v)
}

func (b *Builder[T]) grow() {
	next := Rent[T](max(4, cap(b.items)*2))
	next = append(next, b.items...)
	Return(b.items, true)
	b.items = next
}

// Len returns the number of items added so far.
func (b *Builder[T]) Len() int { return len(b.items) }

// At returns the i-th item.
func (b *Builder[T]) At(i int) T { return b.items[i] }

// Items exposes the backing slice. It is only valid until the next Add or
// Release.
func (b *Builder[T]) Items() []T { return b.items }

// View returns a borrowed read-only view of the builder's current and future
// contents.
func (b *Builder[T]) View() View[T] {
	return View[T]{owner: b, gen: b.gen}
}

// Release returns the storage to the pool and invalidates every view.
func (b *Builder[T]) Release() {
	if b.items != nil {
		Return(b.items, true)
		b.items = nil
	}
	b.gen++
}

// View is a read-only window onto a Builder owned by someone else. The zero
// View is empty.
type View[T any] struct {
	owner *Builder[T]
	gen   uint64
}

func (v View[T]) live() *Builder[T] {
	if v.owner == nil {
		return nil
	}
	if v.owner.gen != v.gen {
		panic(errors.ViewReleased())
	}
	return v.owner
}

// Len returns the number of visible items.
func (v View[T]) Len() int {
	if b := v.live(); b != nil {
		return b.Len()
	}
	return 0
}

// At returns the i-th item.
func (v View[T]) At(i int) T {
	b := v.live()
	if b == nil {
		panic(errors.InvalidArgument("index", "view is empty"))
	}
	return b.At(i)
}

// All iterates the items in insertion order.
func (v View[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(v.At(i)) {
				return
			}
		}
	}
}

// Clone copies the visible items into a new slice the caller owns.
func (v View[T]) Clone() []T {
	n := v.Len()
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, v.live().items)
	return out
}
