package collections

// Set is a dedup set over a Comparer.
type Set[K any] struct {
	t table[K, struct{}]
}

// NewSet returns an empty set with the given initial bucket count.
func NewSet[K any](cmp Comparer[K], capacity int) *Set[K] {
	return &Set[K]{t: newTable[K, struct{}](cmp, capacity)}
}

// Add inserts k and reports whether it was not already present.
func (s *Set[K]) Add(k K) bool {
	h := s.t.hashOf(k)
	if s.t.find(k, h) != nil {
		return false
	}
	s.t.insert(k, h)
	return true
}

// Remove deletes k and reports whether it was present.
func (s *Set[K]) Remove(k K) bool { return s.t.remove(k) }

// Contains reports whether k is present.
func (s *Set[K]) Contains(k K) bool { return s.t.find(k, s.t.hashOf(k)) != nil }

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int { return s.t.live }

// Close returns the table storage to the pool.
func (s *Set[K]) Close() { s.t.release() }
