// Package boot assembles the frame allocator stack described by a
// config.Config: the physical memory arena, the frame registry and, when
// configured, the segment allocator. It also hosts the boot self tests.
package boot

import (
	"io"

	"github.com/pkg/errors"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/config"
	"github.com/QuangTung97/pframe/frame"
	"github.com/QuangTung97/pframe/internal/logger"
	"github.com/QuangTung97/pframe/physmem"
	"github.com/QuangTung97/pframe/segment"
)

// System ...
type System struct {
	Config   config.Config
	Arena    *physmem.Arena
	Registry *pframe.Registry

	// Segments is nil unless Config.MemoryAllocator is config.MemorySegment.
	Segments *segment.Allocator
}

// Boot validates conf, maps the arena, initializes the registry and runs the
// self tests enabled in conf, writing their output to w.
func Boot(conf config.Config, w io.Writer) (*System, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	arena, err := physmem.NewArena(conf.Pages())
	if err != nil {
		return nil, errors.Wrap(err, "boot: map physical memory")
	}

	sys := &System{
		Config: conf,
		Arena:  arena,
	}

	err = Guard(func() error {
		sys.Registry = pframe.NewRegistry(pframe.RegistryConfig{
			Kind:         conf.FrameAllocator,
			Memory:       arena,
			LowWatermark: conf.LowWatermark,
		})
		sys.Registry.Init(conf.KernelEnd, conf.MemoryEnd)

		if conf.TestFrame {
			if err := FrameSelfTest(sys.Registry, w); err != nil {
				return err
			}
		}

		if conf.MemoryAllocator == config.MemorySegment {
			sys.Segments = segment.New(sys.Registry)
			sys.Segments.Init()
		}

		if conf.TestSegment {
			return sys.segmentSelfTest(w)
		}
		return nil
	})
	if err != nil {
		_ = sys.Close()
		return nil, err
	}

	logger.L.Info("boot completed",
		"frame_allocator", conf.FrameAllocator.String(),
		"memory_allocator", conf.MemoryAllocator.String(),
	)
	return sys, nil
}

func (s *System) segmentSelfTest(w io.Writer) error {
	if s.Segments != nil {
		return SegmentSelfTest(s.Segments, w)
	}

	segments := segment.New(s.Registry)
	segments.Init()
	defer segments.Close()
	return SegmentSelfTest(segments, w)
}

// Close releases the segments and unmaps the arena.
func (s *System) Close() error {
	if s.Segments != nil && s.Segments.Free() == s.Segments.Len() {
		s.Segments.Close()
	}
	return s.Arena.Close()
}

// Guard runs fn and turns a fault raised inside it into an error.
func Guard(fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fault, ok := r.(*frame.Error)
		if !ok {
			panic(r)
		}
		err = errors.WithStack(fault)
	}()
	return fn()
}
