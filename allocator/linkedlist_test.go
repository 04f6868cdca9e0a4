package allocator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuangTung97/pframe/frame"
)

func TestLinkedList_Init(t *testing.T) {
	l := NewLinkedList()
	l.Init(10, 14)
	assert.Equal(t, uint64(4), l.Remaining())
	assert.Equal(t, []frame.PageNum{13, 12, 11, 10}, l.list.Values())
}

func TestLinkedList_Alloc_Dealloc(t *testing.T) {
	l := NewLinkedList()
	l.Init(10, 14)

	p, ok := l.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(13), p)

	p, ok = l.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(12), p)

	l.Dealloc(13)
	assert.Equal(t, uint64(3), l.Remaining())

	p, ok = l.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(13), p)

	p, ok = l.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(11), p)

	p, ok = l.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(10), p)

	_, ok = l.Alloc()
	assert.False(t, ok)
}

func TestLinkedList_Dealloc_Faults(t *testing.T) {
	l := NewLinkedList()
	l.Init(10, 14)

	assert.Panics(t, func() {
		l.Dealloc(12)
	})
	assert.Panics(t, func() {
		l.Dealloc(14)
	})
}

func TestLinkedList_Visible(t *testing.T) {
	l := NewLinkedList()
	l.Init(1, 4)
	_, _ = l.Alloc()

	var buf bytes.Buffer
	l.Visible(&buf)
	expected := "[LinkedListAllocator] Linked list:\n" +
		"0x2 -> 0x1 -> None\n" +
		"[LinkedListAllocator] Linked list ended\n"
	assert.Equal(t, expected, buf.String())
}
