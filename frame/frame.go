// Package frame defines physical page numbers and the fault path taken when
// an allocator detects that its ownership invariants were violated.
package frame

import (
	"fmt"
	"math"
)

const (
	// PageShift is equal to log2(PageSize). It converts a physical address
	// to a page number (shift right) and back (shift left).
	PageShift = 12

	// PageSize defines the size of a physical page frame in bytes.
	PageSize = 1 << PageShift
)

// PageNum describes a physical page frame index.
type PageNum uint64

const (
	// InvalidPageNum is never handed out by any allocator.
	InvalidPageNum = PageNum(math.MaxUint64)
)

// Valid returns true if this is a valid page number.
func (p PageNum) Valid() bool {
	return p != InvalidPageNum
}

// Addr returns the physical address of the first byte of the page.
func (p PageNum) Addr() uint64 {
	return uint64(p) << PageShift
}

// String ...
func (p PageNum) String() string {
	return fmt.Sprintf("%#x", uint64(p))
}

// FloorPageNum returns the page that contains physAddr.
func FloorPageNum(physAddr uint64) PageNum {
	return PageNum(physAddr >> PageShift)
}

// CeilPageNum returns the first page that starts at or after physAddr.
func CeilPageNum(physAddr uint64) PageNum {
	return PageNum((physAddr + PageSize - 1) >> PageShift)
}

// Range is the half-open page number range [Low, High).
type Range struct {
	Low  PageNum
	High PageNum
}

// RangeFromAddrs returns the pages that lie completely inside [start, end).
func RangeFromAddrs(start, end uint64) Range {
	return Range{
		Low:  CeilPageNum(start),
		High: FloorPageNum(end),
	}
}

// Len returns the number of pages in the range. Inverted ranges are empty.
func (r Range) Len() uint64 {
	if r.High <= r.Low {
		return 0
	}
	return uint64(r.High - r.Low)
}

// Contains ...
func (r Range) Contains(p PageNum) bool {
	return p >= r.Low && p < r.High
}

// String ...
func (r Range) String() string {
	return fmt.Sprintf("[%#x, %#x)", uint64(r.Low), uint64(r.High))
}
