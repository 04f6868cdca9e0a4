// Package physmem provides access to the contents of physical page frames.
//
// The frame allocators only deal in page numbers; zeroing a frame before it
// is handed out goes through the Memory interface defined here. Arena is the
// implementation used outside a real kernel: one anonymous memory mapping
// standing in for the RAM between two page numbers.
package physmem

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/QuangTung97/pframe/frame"
)

// Memory gives access to the bytes of physical pages.
type Memory interface {
	// Range returns the pages this memory backs.
	Range() frame.Range

	// Page returns the PageSize bytes of the page.
	Page(ppn frame.PageNum) []byte

	// ZeroPage sets every byte of the page to zero.
	ZeroPage(ppn frame.PageNum)
}

// Arena maps the pages of a frame.Range to a contiguous block of memory.
type Arena struct {
	pages frame.Range
	data  []byte

	closeOnce sync.Once
	unmap     func([]byte) error
}

var _ Memory = &Arena{}

// NewArena maps enough memory to back every page in r.
func NewArena(r frame.Range) (*Arena, error) {
	n := r.Len()
	if n > uint64(math.MaxInt)/frame.PageSize {
		return nil, errors.Errorf("physmem: range %v too large to map", r)
	}

	size := int(n * frame.PageSize)
	a := &Arena{
		pages: frame.Range{Low: r.Low, High: r.Low + frame.PageNum(n)},
		unmap: func([]byte) error { return nil },
	}
	if size == 0 {
		return a, nil
	}

	data, unmap, err := mapMemory(size)
	if err != nil {
		return nil, errors.Wrapf(err, "physmem: map %d bytes for %v", size, r)
	}
	a.data = data
	a.unmap = unmap
	return a, nil
}

// Range returns the pages backed by the arena.
func (a *Arena) Range() frame.Range {
	return a.pages
}

// Page ...
func (a *Arena) Page(ppn frame.PageNum) []byte {
	if !a.pages.Contains(ppn) || a.data == nil {
		frame.Fault("physmem", "frame ppn=%#x is not backed by arena %v", uint64(ppn), a.pages)
	}
	offset := uint64(ppn-a.pages.Low) << frame.PageShift
	return a.data[offset : offset+frame.PageSize : offset+frame.PageSize]
}

// ZeroPage ...
func (a *Arena) ZeroPage(ppn frame.PageNum) {
	Memset(a.Page(ppn), 0)
}

// Close unmaps the arena. Pages must not be accessed afterwards.
func (a *Arena) Close() error {
	var err error
	a.closeOnce.Do(func() {
		data := a.data
		a.data = nil
		err = a.unmap(data)
	})
	return err
}

// Memset sets every byte of b to value. Instead of a byte loop it makes
// log2(len(b)) copy calls.
func Memset(b []byte, value byte) {
	if len(b) == 0 {
		return
	}

	b[0] = value
	for index := 1; index < len(b); index *= 2 {
		copy(b[index:], b[:index])
	}
}
