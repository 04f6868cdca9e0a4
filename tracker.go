package pframe

import (
	"fmt"
	"sync/atomic"

	"github.com/QuangTung97/pframe/frame"
)

// FrameTracker owns one allocated page. The page goes back to the registry
// when Release is called; a tracker must be released exactly once, and must be
// passed around by pointer so it has a single owner.
type FrameTracker struct {
	registry *Registry
	ppn      frame.PageNum

	// atomic.Bool carries a noCopy marker, so vet flags copies of a tracker.
	released atomic.Bool
}

func newFrameTracker(r *Registry, ppn frame.PageNum) *FrameTracker {
	r.memory.ZeroPage(ppn)
	return &FrameTracker{
		registry: r,
		ppn:      ppn,
	}
}

// PageNum ...
func (t *FrameTracker) PageNum() frame.PageNum {
	return t.ppn
}

func (t *FrameTracker) mustBeLive() {
	if t.released.Load() {
		frame.Fault("frame_tracker", "frame ppn=%#x used after release", uint64(t.ppn))
	}
}

// Bytes returns the contents of the page.
func (t *FrameTracker) Bytes() []byte {
	t.mustBeLive()
	return t.registry.memory.Page(t.ppn)
}

// Clear zeroes the page again.
func (t *FrameTracker) Clear() {
	t.mustBeLive()
	t.registry.memory.ZeroPage(t.ppn)
}

// Released ...
func (t *FrameTracker) Released() bool {
	return t.released.Load()
}

// Release returns the page to the registry. Releasing a tracker twice is a
// fatal fault.
func (t *FrameTracker) Release() {
	if !t.released.CompareAndSwap(false, true) {
		frame.Fault("frame_tracker", "frame ppn=%#x released twice", uint64(t.ppn))
	}
	t.registry.dealloc(t.ppn)
}

// String ...
func (t *FrameTracker) String() string {
	return fmt.Sprintf("FrameTracker:PPN=%#x", uint64(t.ppn))
}

// ReleaseAll releases every non-nil tracker in frames.
func ReleaseAll(frames []*FrameTracker) {
	for _, f := range frames {
		if f != nil {
			f.Release()
		}
	}
}
