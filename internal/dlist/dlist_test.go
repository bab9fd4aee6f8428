package dlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(l *List[int]) []int {
	var out []int
	for e := l.Front(); e != nil; e = l.Next(e) {
		out = append(out, e.Value)
	}
	return out
}

func TestList_FIFOOrder(t *testing.T) {
	l := New[int]()
	require.True(t, l.Empty())

	a := &Elem[int]{Value: 1}
	b := &Elem[int]{Value: 2}
	c := &Elem[int]{Value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	require.Equal(t, []int{1, 2, 3}, collect(l))
	require.False(t, l.Empty())
}

func TestList_RemoveMiddle(t *testing.T) {
	l := New[int]()
	a := &Elem[int]{Value: 1}
	b := &Elem[int]{Value: 2}
	c := &Elem[int]{Value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	l.Remove(b)
	require.Equal(t, []int{1, 3}, collect(l))
	require.False(t, b.Linked())
}

func TestList_RestartMovesToTail(t *testing.T) {
	l := New[int]()
	a := &Elem[int]{Value: 1}
	b := &Elem[int]{Value: 2}
	c := &Elem[int]{Value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	l.Remove(a)
	l.PushBack(a)
	require.Equal(t, []int{2, 3, 1}, collect(l))
}

func TestList_EmptyAfterDrain(t *testing.T) {
	l := New[int]()
	a := &Elem[int]{Value: 1}
	l.PushBack(a)
	l.Remove(a)
	require.True(t, l.Empty())
	require.Nil(t, l.Front())
}
