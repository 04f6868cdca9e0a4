package allocator

import (
	"fmt"
	"io"

	"github.com/QuangTung97/pframe/frame"
)

// Stack hands out never-used pages by bumping a watermark and reuses freed
// pages most-recently-freed first.
type Stack struct {
	start    frame.PageNum
	current  frame.PageNum
	end      frame.PageNum
	recycled []frame.PageNum
}

// NewStack ...
func NewStack() *Stack {
	return &Stack{}
}

// Init ...
func (s *Stack) Init(low, high frame.PageNum) {
	s.start = low
	s.current = low
	s.end = low + frame.PageNum(rangeLen(low, high))
	s.recycled = s.recycled[:0]
}

// Alloc ...
func (s *Stack) Alloc() (frame.PageNum, bool) {
	if n := len(s.recycled); n > 0 {
		ppn := s.recycled[n-1]
		s.recycled = s.recycled[:n-1]
		return ppn, true
	}
	if s.current == s.end {
		return frame.InvalidPageNum, false
	}
	s.current++
	return s.current - 1, true
}

// Dealloc checks the page against the watermark and scans the recycled
// stack, so the cost is linear in the number of recycled pages.
func (s *Stack) Dealloc(ppn frame.PageNum) {
	if ppn >= s.current || ppn < s.start {
		frame.Fault("stack_alloc", "frame ppn=%#x has not been allocated", uint64(ppn))
	}
	for _, v := range s.recycled {
		if v == ppn {
			frame.Fault("stack_alloc", "frame ppn=%#x has not been allocated", uint64(ppn))
		}
	}
	s.recycled = append(s.recycled, ppn)
}

// Remaining ...
func (s *Stack) Remaining() uint64 {
	return uint64(len(s.recycled)) + uint64(s.end-s.current)
}

// MetadataSize returns the bytes used by the recycled stack.
func (s *Stack) MetadataSize() uint64 {
	return uint64(len(s.recycled)) * 8
}

// Visible ...
func (s *Stack) Visible(w io.Writer) {
	fmt.Fprintf(w, "[StackFrameAllocator] current=%#x, end=%#x\n", uint64(s.current), uint64(s.end))
	fmt.Fprintln(w, "[StackFrameAllocator] recycled stack:")
	for _, ppn := range s.recycled {
		fmt.Fprintf(w, "    %#x\n", uint64(ppn))
	}
	fmt.Fprintln(w, "[StackFrameAllocator] recycled stack ended")
}
