package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_EvictsOldestPopUntilEmpty(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 3; i++ {
		_, evicted := r.Push(i)
		require.False(t, evicted)
	}
	require.True(t, r.Full())

	old, evicted := r.Push(4)
	require.True(t, evicted)
	require.Equal(t, 1, old)
	require.Equal(t, 3, r.Len())

	var got []int
	for {
		v, ok := r.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []int{2, 3, 4}, got)
}

func TestRing_GrowsPastInitialSize(t *testing.T) {
	r := NewRing[int](100)
	for i := 0; i < 40; i++ {
		_, evicted := r.Push(i)
		require.False(t, evicted)
	}
	require.Equal(t, 40, r.Len())
	require.False(t, r.Full())

	v, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, 0, v)
}

func TestRing_LimitAndClear(t *testing.T) {
	r := NewRing[*string](0)
	require.Equal(t, 1, r.Limit())

	r.Push(nil)
	v, ok := r.Pop()
	require.True(t, ok)
	require.Nil(t, v)

	r.Push(new(string))
	r.Clear()
	require.Equal(t, 0, r.Len())
	_, ok = r.Pop()
	require.False(t, ok)
}

func TestQueue_Unbounded(t *testing.T) {
	q := NewQueue[int](2)
	for i := 0; i < 1000; i++ {
		_, evicted := q.Push(i)
		require.False(t, evicted)
	}
	require.Equal(t, 1000, q.Len())
	require.False(t, q.Full())

	for i := 0; i < 1000; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.Pop()
	require.False(t, ok)
}
