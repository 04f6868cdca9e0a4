package pagecache

import (
	"math"

	"github.com/QuangTung97/pframe"
)

const nullPtr uint32 = math.MaxUint32

type lruEntry struct {
	next uint32
	prev uint32

	key   uint64
	frame *pframe.FrameTracker
}

// lruList is a doubly linked list threaded through a slice by index. Slots of
// deleted entries are recycled through freeSlots.
type lruList struct {
	entries   []lruEntry
	freeSlots []uint32

	head uint32 // most recently used
	tail uint32 // least recently used
	size int
}

func newLRUList() lruList {
	return lruList{
		head: nullPtr,
		tail: nullPtr,
	}
}

func (l *lruList) pushFront(key uint64, f *pframe.FrameTracker) uint32 {
	var index uint32
	if n := len(l.freeSlots); n > 0 {
		index = l.freeSlots[n-1]
		l.freeSlots = l.freeSlots[:n-1]
	} else {
		index = uint32(len(l.entries))
		l.entries = append(l.entries, lruEntry{})
	}

	l.entries[index] = lruEntry{
		key:   key,
		frame: f,
	}
	l.linkFront(index)
	l.size++
	return index
}

func (l *lruList) linkFront(index uint32) {
	e := &l.entries[index]
	e.prev = nullPtr
	e.next = l.head

	if l.head != nullPtr {
		l.entries[l.head].prev = index
	} else {
		l.tail = index
	}
	l.head = index
}

func (l *lruList) unlink(index uint32) {
	e := &l.entries[index]

	if e.next != nullPtr {
		l.entries[e.next].prev = e.prev
	} else {
		l.tail = e.prev
	}

	if e.prev != nullPtr {
		l.entries[e.prev].next = e.next
	} else {
		l.head = e.next
	}
}

// remove unlinks the entry and returns its frame to the caller.
func (l *lruList) remove(index uint32) *pframe.FrameTracker {
	l.unlink(index)

	f := l.entries[index].frame
	l.entries[index] = lruEntry{next: nullPtr, prev: nullPtr}
	l.freeSlots = append(l.freeSlots, index)
	l.size--
	return f
}

func (l *lruList) touch(index uint32) {
	if l.head == index {
		return
	}
	l.unlink(index)
	l.linkFront(index)
}

func (l *lruList) last() (uint32, bool) {
	if l.tail == nullPtr {
		return 0, false
	}
	return l.tail, true
}

func (l *lruList) keyOf(index uint32) uint64 {
	return l.entries[index].key
}

func (l *lruList) frameOf(index uint32) *pframe.FrameTracker {
	return l.entries[index].frame
}

// keys returns keys from most to least recently used.
func (l *lruList) keys() []uint64 {
	var result []uint64
	for n := l.head; n != nullPtr; n = l.entries[n].next {
		result = append(result, l.entries[n].key)
	}
	return result
}
