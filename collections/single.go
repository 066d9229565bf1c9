package collections

import "iter"

// SingleValueLookup maps each key to exactly one value, remembering the
// order in which keys were first seen.
type SingleValueLookup[K, V any] struct {
	t table[K, V]
}

// NewSingleValueLookup returns an empty lookup with the given initial
// bucket count.
func NewSingleValueLookup[K, V any](cmp Comparer[K], capacity int) *SingleValueLookup[K, V] {
	return &SingleValueLookup[K, V]{t: newTable[K, V](cmp, capacity)}
}

// Slot returns a pointer to the value stored for key, adding a zero value
// when the key is new. created reports whether the key was added.
func (l *SingleValueLookup[K, V]) Slot(key K) (v *V, created bool) {
	h := l.t.hashOf(key)
	if e := l.t.find(key, h); e != nil {
		return &e.value, false
	}
	return &l.t.insert(key, h).value, true
}

// Get returns the value for key.
func (l *SingleValueLookup[K, V]) Get(key K) (V, bool) {
	if e := l.t.find(key, l.t.hashOf(key)); e != nil {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of keys.
func (l *SingleValueLookup[K, V]) Len() int { return l.t.live }

// All yields key/value pairs in first-seen key order.
func (l *SingleValueLookup[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := range l.t.entries() {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Close returns the table storage to the pool.
func (l *SingleValueLookup[K, V]) Close() { l.t.release() }
