// Package segment groups page frames into segments and hands out whole
// segments with a first-fit policy.
//
// Segments are ownership groups, not physically contiguous blocks. They are
// built once by draining every frame left in a pframe.Registry, with sizes
// cycling through 1, 2, 4, 8 and 16 frames.
package segment

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/frame"
	"github.com/QuangTung97/pframe/internal/logger"
)

var sizePick = [...]int{1, 2, 4, 8, 16}

// Segment ...
type Segment struct {
	size   int
	frames []*pframe.FrameTracker
}

// Tracker identifies one segment handed out by Alloc.
type Tracker struct {
	index int
}

// Index ...
func (t Tracker) Index() int {
	return t.index
}

// Allocator ...
type Allocator struct {
	registry *pframe.Registry

	mu       sync.Mutex
	segments []Segment
	inUse    []bool
}

// New returns an empty segment allocator on top of registry.
func New(registry *pframe.Registry) *Allocator {
	return &Allocator{
		registry: registry,
	}
}

// exclusive runs fn while holding the segment table lock. fn must not call
// back into the allocator.
func (a *Allocator) exclusive(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

func nextSegmentSize(count int, remaining uint64) int {
	size := sizePick[count%len(sizePick)]
	if uint64(size) > remaining {
		return int(remaining)
	}
	return size
}

// Init moves every frame left in the registry into segments.
func (a *Allocator) Init() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.segments) != 0 {
		frame.Fault("segment_alloc", "segment allocator already initialized")
	}

	frames := 0
	for count := 0; ; count++ {
		remaining := a.registry.Remaining()
		if remaining == 0 {
			break
		}

		size := nextSegmentSize(count, remaining)
		seg := Segment{
			size:   size,
			frames: make([]*pframe.FrameTracker, 0, size),
		}
		for i := 0; i < size; i++ {
			f, ok := a.registry.Alloc()
			if !ok {
				frame.Fault("segment_alloc", "frames exhausted while building segment %d", count)
			}
			seg.frames = append(seg.frames, f)
		}

		a.segments = append(a.segments, seg)
		a.inUse = append(a.inUse, false)
		frames += size
	}

	logger.L.Info("segment allocator initialized", "segments", len(a.segments), "frames", frames)
}

// Alloc returns the first free segment whose size is strictly greater than
// size and marks it in use. The frames of the segment are zeroed.
func (a *Allocator) Alloc(size int) (Tracker, bool) {
	result := Tracker{index: -1}
	a.exclusive(func() {
		for i := range a.segments {
			seg := &a.segments[i]
			if a.inUse[i] || seg.size <= size {
				continue
			}

			a.inUse[i] = true
			for _, f := range seg.frames {
				f.Clear()
			}
			result = Tracker{index: i}
			return
		}
	})
	return result, result.index >= 0
}

// mustBeInUse requires the lock to be held.
func (a *Allocator) mustBeInUse(t Tracker) *Segment {
	if t.index < 0 || t.index >= len(a.segments) {
		frame.Fault("segment_alloc", "segment index %d is out of range", t.index)
	}
	if !a.inUse[t.index] {
		frame.Fault("segment_alloc", "segment %d has not been allocated", t.index)
	}
	return &a.segments[t.index]
}

// Dealloc marks the segment free again so a later Alloc can reuse it.
func (a *Allocator) Dealloc(t Tracker) {
	a.exclusive(func() {
		a.mustBeInUse(t)
		a.inUse[t.index] = false
	})
}

// Size ...
func (a *Allocator) Size(t Tracker) int {
	var size int
	a.exclusive(func() {
		size = a.mustBeInUse(t).size
	})
	return size
}

// Frames returns the page numbers of an allocated segment.
func (a *Allocator) Frames(t Tracker) []frame.PageNum {
	var result []frame.PageNum
	a.exclusive(func() {
		seg := a.mustBeInUse(t)
		result = make([]frame.PageNum, 0, len(seg.frames))
		for _, f := range seg.frames {
			result = append(result, f.PageNum())
		}
	})
	return result
}

// Bytes returns the contents of the i-th frame of an allocated segment.
func (a *Allocator) Bytes(t Tracker, i int) []byte {
	var f *pframe.FrameTracker
	a.exclusive(func() {
		f = a.mustBeInUse(t).frames[i]
	})
	return f.Bytes()
}

// Len returns the number of segments.
func (a *Allocator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.segments)
}

// Free returns the number of segments not in use.
func (a *Allocator) Free() int {
	n := 0
	a.exclusive(func() {
		for _, used := range a.inUse {
			if !used {
				n++
			}
		}
	})
	return n
}

// Sizes returns the size of every segment in index order.
func (a *Allocator) Sizes() []int {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := make([]int, 0, len(a.segments))
	for i := range a.segments {
		result = append(result, a.segments[i].size)
	}
	return result
}

// Visible dumps the segment table to w.
func (a *Allocator) Visible(w io.Writer) {
	out := bufio.NewWriter(w)
	defer out.Flush()

	a.exclusive(func() {
		_, _ = out.WriteString("[SegmentAllocator] segments:\n")
		for i := range a.segments {
			seg := &a.segments[i]
			fmt.Fprintf(out, "    #%d size=%d in_use=%t first=%v\n", i, seg.size, a.inUse[i], seg.frames[0].PageNum())
		}
		_, _ = out.WriteString("[SegmentAllocator] segments ended\n")
	})
}

// Close returns every frame to the registry. No segment may be in use.
func (a *Allocator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, used := range a.inUse {
		if used {
			frame.Fault("segment_alloc", "segment %d is still in use", i)
		}
	}
	for i := range a.segments {
		pframe.ReleaseAll(a.segments[i].frames)
	}
	a.segments = nil
	a.inUse = nil
}
