package allocator

import (
	"math"

	"github.com/QuangTung97/pframe/frame"
)

const (
	nullPtr uint32 = math.MaxUint32

	// notListed marks a slot whose page is not on the list.
	notListed uint32 = math.MaxUint32 - 1

	// MaxFreeListPages is the largest range a FreeList can track.
	MaxFreeListPages = uint64(notListed)
)

// FreeList is a singly linked LIFO list of free page numbers. The links live
// in a side table indexed by page offset, so Push and Pop are O(1) and the
// list can tell whether a page is already on it.
type FreeList struct {
	base frame.PageNum
	next []uint32
	head uint32
	size uint32
}

// NewFreeList ...
func NewFreeList() *FreeList {
	l := &FreeList{}
	l.Reset(0, 0)
	return l
}

// Reset empties the list and makes it able to hold pages in [low, high).
func (l *FreeList) Reset(low, high frame.PageNum) {
	n := rangeLen(low, high)
	if n > MaxFreeListPages {
		panic("free list range must < MaxFreeListPages")
	}

	l.base = low
	l.next = make([]uint32, n)
	for i := range l.next {
		l.next[i] = notListed
	}
	l.head = nullPtr
	l.size = 0
}

func (l *FreeList) index(ppn frame.PageNum) (uint32, bool) {
	if ppn < l.base || uint64(ppn-l.base) >= uint64(len(l.next)) {
		return 0, false
	}
	return uint32(ppn - l.base), true
}

// Push adds ppn to the head of the list. It returns false when ppn is outside
// the list range or already on the list.
func (l *FreeList) Push(ppn frame.PageNum) bool {
	i, ok := l.index(ppn)
	if !ok || l.next[i] != notListed {
		return false
	}
	l.next[i] = l.head
	l.head = i
	l.size++
	return true
}

// Pop removes the most recently pushed page.
func (l *FreeList) Pop() (frame.PageNum, bool) {
	if l.size == 0 {
		return frame.InvalidPageNum, false
	}
	i := l.head
	l.head = l.next[i]
	l.next[i] = notListed
	l.size--
	return l.base + frame.PageNum(i), true
}

// Contains ...
func (l *FreeList) Contains(ppn frame.PageNum) bool {
	i, ok := l.index(ppn)
	return ok && l.next[i] != notListed
}

// Len ...
func (l *FreeList) Len() int {
	return int(l.size)
}

// Values returns the list content from head (next to be popped) to tail.
func (l *FreeList) Values() []frame.PageNum {
	var result []frame.PageNum
	for i, n := l.head, l.size; n > 0; i, n = l.next[i], n-1 {
		result = append(result, l.base+frame.PageNum(i))
	}
	return result
}
