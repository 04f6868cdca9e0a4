package boot

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/physmem"
	"github.com/QuangTung97/pframe/segment"
)

// ErrSelfTest is returned when a boot self test fails.
var ErrSelfTest = errors.New("boot: self test failed")

const (
	selfTestFrames = 5
	selfTestFill   = 0xa5
)

var selfTestSegmentRequests = []int{0, 1, 3}

// FrameSelfTest allocates a few frames, dumps the allocator state, releases
// them and allocates again, checking that reused frames come back zeroed.
func FrameSelfTest(reg *pframe.Registry, w io.Writer) error {
	fmt.Fprintln(w, "---frame allocator test started---")

	frames, err := allocFrames(reg, w)
	if err != nil {
		return err
	}
	for _, f := range frames {
		physmem.Memset(f.Bytes(), selfTestFill)
	}

	fmt.Fprintln(w, "[frame_allocator_test] after allocation, frames state:")
	reg.Visible(w)

	pframe.ReleaseAll(frames)
	fmt.Fprintln(w, "[frame_allocator_test] after release, frames state:")
	reg.Visible(w)

	frames, err = allocFrames(reg, w)
	if err != nil {
		return err
	}
	defer pframe.ReleaseAll(frames)

	for _, f := range frames {
		if !isZero(f.Bytes()) {
			return errors.Wrapf(ErrSelfTest, "%v was not zeroed on allocation", f)
		}
	}

	fmt.Fprintln(w, "---frame allocator test passed!---")
	return nil
}

func allocFrames(reg *pframe.Registry, w io.Writer) ([]*pframe.FrameTracker, error) {
	frames := make([]*pframe.FrameTracker, 0, selfTestFrames)
	for i := 0; i < selfTestFrames; i++ {
		f, ok := reg.Alloc()
		if !ok {
			pframe.ReleaseAll(frames)
			return nil, errors.Wrapf(ErrSelfTest, "frame allocator exhausted after %d frames", i)
		}
		fmt.Fprintln(w, f)
		frames = append(frames, f)
	}
	return frames, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// SegmentSelfTest allocates segments for a few sizes, dumps the segment
// table and deallocates them again.
func SegmentSelfTest(a *segment.Allocator, w io.Writer) error {
	fmt.Fprintln(w, "---segment allocator test started---")
	a.Visible(w)

	held := make([]segment.Tracker, 0, len(selfTestSegmentRequests))
	defer func() {
		for _, t := range held {
			a.Dealloc(t)
		}
	}()

	for _, size := range selfTestSegmentRequests {
		t, ok := a.Alloc(size)
		if !ok {
			return errors.Wrapf(ErrSelfTest, "no free segment larger than %d frames", size)
		}
		held = append(held, t)
		fmt.Fprintf(w, "[segment_allocator_test] request=%d -> segment #%d size=%d\n", size, t.Index(), a.Size(t))
	}

	fmt.Fprintln(w, "[segment_allocator_test] after allocation, segments state:")
	a.Visible(w)

	for _, t := range held {
		a.Dealloc(t)
	}
	held = held[:0]

	if a.Free() != a.Len() {
		return errors.Wrapf(ErrSelfTest, "%d of %d segments still in use", a.Len()-a.Free(), a.Len())
	}

	fmt.Fprintln(w, "---segment allocator test passed!---")
	return nil
}
