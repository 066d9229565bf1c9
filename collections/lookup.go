package collections

import "iter"

// Grouping is a key together with the elements that shared it, in the order
// they were added.
type Grouping[K, E any] struct {
	key      K
	elements Builder[E]
}

// Key returns the grouping key.
func (g *Grouping[K, E]) Key() K { return g.key }

// Len returns the number of elements in the grouping.
func (g *Grouping[K, E]) Len() int { return g.elements.Len() }

// Add appends an element to the grouping.
func (g *Grouping[K, E]) Add(e E) { g.elements.Add(e) }

// Elements returns a view over the grouping's elements. The view is valid
// until the owning Lookup is closed.
func (g *Grouping[K, E]) Elements() View[E] { return g.elements.View() }

// Lookup is a multi-value hash map from keys to groupings that preserves the
// order in which keys were first seen.
type Lookup[K, E any] struct {
	t table[K, Grouping[K, E]]
}

// NewLookup returns an empty lookup. capacity is the initial bucket count;
// zero picks DefaultCapacity.
func NewLookup[K, E any](cmp Comparer[K], capacity int) *Lookup[K, E] {
	return &Lookup[K, E]{t: newTable[K, Grouping[K, E]](cmp, capacity)}
}

// GetOrCreate returns the grouping for key, creating it at the end of the
// insertion order when it does not exist. created reports which happened.
func (l *Lookup[K, E]) GetOrCreate(key K) (g *Grouping[K, E], created bool) {
	h := l.t.hashOf(key)
	if e := l.t.find(key, h); e != nil {
		return &e.value, false
	}
	e := l.t.insert(key, h)
	e.value.key = key
	return &e.value, true
}

// Get returns the grouping for key, or nil when no element had that key.
func (l *Lookup[K, E]) Get(key K) *Grouping[K, E] {
	if e := l.t.find(key, l.t.hashOf(key)); e != nil {
		return &e.value
	}
	return nil
}

// Len returns the number of distinct keys.
func (l *Lookup[K, E]) Len() int { return l.t.live }

// All yields groupings in first-seen key order.
func (l *Lookup[K, E]) All() iter.Seq[*Grouping[K, E]] {
	return func(yield func(*Grouping[K, E]) bool) {
		for e := range l.t.entries() {
			if !yield(&e.value) {
				return
			}
		}
	}
}

// Close releases every grouping's storage and the bucket array. Views
// obtained from the groupings are invalid afterwards.
func (l *Lookup[K, E]) Close() {
	for e := range l.t.entries() {
		e.value.elements.Release()
	}
	l.t.release()
}
