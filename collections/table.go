package collections

import "iter"

// DefaultCapacity is the bucket count a table starts with when the caller
// does not ask for a specific size.
const DefaultCapacity = 7

// entry is one key in a table. It sits on two lists: the bucket chain
// (hashNext) and the circular insertion ring (next), where the table's last
// entry points back at the first.
type entry[K, V any] struct {
	key      K
	hash     uint64
	value    V
	hashNext *entry[K, V]
	next     *entry[K, V]
	dead     bool
}

// table is the hash structure shared by Lookup, SingleValueLookup and Set.
type table[K, V any] struct {
	cmp     Comparer[K]
	nilable bool
	buckets []*entry[K, V]
	last    *entry[K, V]
	count   int
	// live counts entries that were not removed.
	live int
}

func newTable[K, V any](cmp Comparer[K], capacity int) table[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity%2 == 0 {
		capacity++
	}
	return table[K, V]{
		cmp:     cmp,
		nilable: nilable[K](),
		buckets: rentBuckets[K, V](capacity),
	}
}

func rentBuckets[K, V any](n int) []*entry[K, V] {
	return Rent[*entry[K, V]](n)[:n]
}

// hashOf maps nil keys to 0 without consulting the comparer, which may not
// accept them.
func (t *table[K, V]) hashOf(k K) uint64 {
	if t.nilable && IsNil(k) {
		return 0
	}
	return t.cmp.Hash(k)
}

func (t *table[K, V]) equal(a, b K) bool {
	if t.nilable {
		an, bn := IsNil(a), IsNil(b)
		if an || bn {
			return an && bn
		}
	}
	return t.cmp.Equal(a, b)
}

func (t *table[K, V]) find(k K, h uint64) *entry[K, V] {
	for e := t.buckets[h%uint64(len(t.buckets))]; e != nil; e = e.hashNext {
		if e.hash == h && t.equal(e.key, k) {
			return e
		}
	}
	return nil
}

// insert adds a new entry at the tail of the insertion ring. The caller
// has already checked that k is absent.
func (t *table[K, V]) insert(k K, h uint64) *entry[K, V] {
	if t.count == len(t.buckets) {
		t.resize()
	}
	e := &entry[K, V]{key: k, hash: h}
	i := h % uint64(len(t.buckets))
	e.hashNext = t.buckets[i]
	t.buckets[i] = e
	if t.last == nil {
		e.next = e
	} else {
		e.next = t.last.next
		t.last.next = e
	}
	t.last = e
	t.count++
	t.live++
	return e
}

// remove unlinks k from its bucket. The entry stays on the insertion ring
// marked dead until the next resize drops it.
func (t *table[K, V]) remove(k K) bool {
	h := t.hashOf(k)
	i := h % uint64(len(t.buckets))
	var prev *entry[K, V]
	for e := t.buckets[i]; e != nil; e = e.hashNext {
		if e.hash == h && t.equal(e.key, k) {
			if prev == nil {
				t.buckets[i] = e.hashNext
			} else {
				prev.hashNext = e.hashNext
			}
			e.dead = true
			e.hashNext = nil
			t.live--
			return true
		}
		prev = e
	}
	return false
}

// resize grows the bucket array to 2n+1 and rehashes every live entry in
// insertion order, rebuilding the ring without dead entries.
func (t *table[K, V]) resize() {
	size := len(t.buckets)*2 + 1
	next := rentBuckets[K, V](size)
	first := t.first()
	var last *entry[K, V]
	count := 0
	for e, n := first, t.count; n > 0; n-- {
		following := e.next
		if !e.dead {
			i := e.hash % uint64(size)
			e.hashNext = next[i]
			next[i] = e
			if last == nil {
				e.next = e
			} else {
				e.next = last.next
				last.next = e
			}
			last = e
			count++
		}
		e = following
	}
	Return(t.buckets, true)
	t.buckets = next
	t.last = last
	t.count = count
}

func (t *table[K, V]) first() *entry[K, V] {
	if t.last == nil {
		return nil
	}
	return t.last.next
}

// entries walks live entries in insertion order.
func (t *table[K, V]) entries() iter.Seq[*entry[K, V]] {
	return func(yield func(*entry[K, V]) bool) {
		if t.last == nil {
			return
		}
		e := t.last.next
		for {
			if !e.dead && !yield(e) {
				return
			}
			if e == t.last {
				return
			}
			e = e.next
		}
	}
}

func (t *table[K, V]) release() {
	if t.buckets != nil {
		Return(t.buckets, true)
		t.buckets = nil
	}
	t.last = nil
	t.count = 0
	t.live = 0
}
