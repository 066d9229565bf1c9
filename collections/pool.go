package collections

import (
	"math/bits"
	"reflect"
	"sync"
)

// Arrays are pooled per element type and per power-of-two size class.
// Arrays larger than maxPooledClass are left to the garbage collector.
const maxPooledClass = 20

type poolKey struct {
	elem  reflect.Type
	class int
}

var arrayPools sync.Map // poolKey -> *sync.Pool

func sizeClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func poolFor[T any](class int) *sync.Pool {
	key := poolKey{elem: reflect.TypeFor[T](), class: class}
	if p, ok := arrayPools.Load(key); ok {
		return p.(*sync.Pool)
	}
	p, _ := arrayPools.LoadOrStore(key, &sync.Pool{})
	return p.(*sync.Pool)
}

// Rent returns a zero-length slice with capacity of at least n, reusing a
// pooled array when one is available.
func Rent[T any](n int) []T {
	class := sizeClass(n)
	if class > maxPooledClass {
		return make([]T, 0, n)
	}
	if v := poolFor[T](class).Get(); v != nil {
		return (*v.(*[]T))[:0]
	}
	return make([]T, 0, 1<<class)
}

// Return hands s back to the pool. When clear is set the backing array is
// zeroed first so pooled storage does not keep elements reachable.
func Return[T any](s []T, clear bool) {
	c := cap(s)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	class := sizeClass(c)
	if class > maxPooledClass {
		return
	}
	s = s[:c]
	if clear {
		var zero T
		for i := range s {
			s[i] = zero
		}
	}
	s = s[:0]
	poolFor[T](class).Put(&s)
}
