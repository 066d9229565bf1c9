package collections

import (
	"hash/maphash"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Comparer decides key equality for lookups and sets. Equal keys must hash
// to the same value.
type Comparer[K any] interface {
	Equal(a, b K) bool
	Hash(k K) uint64
}

var seed = maphash.MakeSeed()

// DefaultComparer compares keys with == and hashes them with maphash.
type DefaultComparer[K comparable] struct{}

func (DefaultComparer[K]) Equal(a, b K) bool { return a == b }

func (DefaultComparer[K]) Hash(k K) uint64 { return maphash.Comparable(seed, k) }

// StringComparer is an ordinal string comparer hashed with xxhash.
type StringComparer struct{}

func (StringComparer) Equal(a, b string) bool { return a == b }

func (StringComparer) Hash(s string) uint64 { return xxhash.Sum64String(s) }

// FoldStringComparer treats strings equal under Unicode case folding.
type FoldStringComparer struct{}

func (FoldStringComparer) Equal(a, b string) bool { return strings.EqualFold(a, b) }

func (FoldStringComparer) Hash(s string) uint64 { return xxhash.Sum64String(strings.ToLower(s)) }

// ComparerFunc adapts a pair of functions to a Comparer.
type ComparerFunc[K any] struct {
	EqualFunc func(a, b K) bool
	HashFunc  func(k K) uint64
}

func (c ComparerFunc[K]) Equal(a, b K) bool { return c.EqualFunc(a, b) }

func (c ComparerFunc[K]) Hash(k K) uint64 { return c.HashFunc(k) }

// OrDefault returns cmp, or DefaultComparer when cmp is nil.
func OrDefault[K comparable](cmp Comparer[K]) Comparer[K] {
	if cmp == nil {
		return DefaultComparer[K]{}
	}
	return cmp
}

// SameComparer reports whether two comparers are known to agree. Comparers
// whose dynamic type is not comparable (for example ComparerFunc) are never
// considered the same.
func SameComparer[K any](a, b Comparer[K]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// nilable reports whether K's zero value is nil.
func nilable[K any]() bool {
	switch reflect.TypeFor[K]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// IsNil reports whether k is a nil pointer, interface, map, slice, func or
// channel. It is false for every value of a non-nilable type.
func IsNil[K any](k K) bool {
	if !nilable[K]() {
		return false
	}
	return reflect.ValueOf(&k).Elem().IsNil()
}
