package allocator

import (
	"bufio"
	"fmt"
	"io"

	"github.com/QuangTung97/pframe/frame"
)

// LinkedList keeps every free page on a FreeList. Pages are pushed in
// ascending order at Init, so the first Alloc returns high-1.
type LinkedList struct {
	list FreeList
}

// NewLinkedList ...
func NewLinkedList() *LinkedList {
	l := &LinkedList{}
	l.list.Reset(0, 0)
	return l
}

// Init ...
func (l *LinkedList) Init(low, high frame.PageNum) {
	l.list.Reset(low, high)
	for ppn := low; ppn < high; ppn++ {
		l.list.Push(ppn)
	}
}

// Alloc ...
func (l *LinkedList) Alloc() (frame.PageNum, bool) {
	return l.list.Pop()
}

// Dealloc ...
func (l *LinkedList) Dealloc(ppn frame.PageNum) {
	if !l.list.Push(ppn) {
		frame.Fault("linkedlist_alloc", "frame ppn=%#x has not been allocated", uint64(ppn))
	}
}

// Remaining ...
func (l *LinkedList) Remaining() uint64 {
	return uint64(l.list.Len())
}

// Visible ...
func (l *LinkedList) Visible(w io.Writer) {
	out := bufio.NewWriter(w)
	defer out.Flush()

	_, _ = out.WriteString("[LinkedListAllocator] Linked list:\n")
	for _, ppn := range l.list.Values() {
		fmt.Fprintf(out, "%#x -> ", uint64(ppn))
	}
	_, _ = out.WriteString("None\n[LinkedListAllocator] Linked list ended\n")
}
