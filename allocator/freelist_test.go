package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuangTung97/pframe/frame"
)

func TestFreeList_New(t *testing.T) {
	l := NewFreeList()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, nullPtr, l.head)
	assert.Equal(t, []frame.PageNum(nil), l.Values())

	p, ok := l.Pop()
	assert.False(t, ok)
	assert.Equal(t, frame.InvalidPageNum, p)
}

func TestFreeList_Push_Pop(t *testing.T) {
	l := NewFreeList()
	l.Reset(100, 110)

	assert.True(t, l.Push(100))
	assert.True(t, l.Push(105))
	assert.True(t, l.Push(101))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []frame.PageNum{101, 105, 100}, l.Values())
	assert.True(t, l.Contains(105))
	assert.False(t, l.Contains(102))

	p, ok := l.Pop()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(101), p)
	assert.False(t, l.Contains(101))
	assert.Equal(t, []frame.PageNum{105, 100}, l.Values())

	p, ok = l.Pop()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(105), p)

	p, ok = l.Pop()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(100), p)

	_, ok = l.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestFreeList_Push_Rejects(t *testing.T) {
	l := NewFreeList()
	l.Reset(100, 110)

	assert.True(t, l.Push(103))
	assert.False(t, l.Push(103))
	assert.False(t, l.Push(99))
	assert.False(t, l.Push(110))
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.Contains(99))
}

func TestFreeList_Reset(t *testing.T) {
	l := NewFreeList()
	l.Reset(0, 4)
	l.Push(1)
	l.Push(2)

	l.Reset(10, 12)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, frame.PageNum(10), l.base)
	assert.Equal(t, []uint32{notListed, notListed}, l.next)
	assert.False(t, l.Contains(1))
}
