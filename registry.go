// Package pframe manages the physical page frames of a kernel.
//
// A Registry owns one allocator.Strategy and is the only way to obtain a
// FrameTracker. Every strategy access happens inside one exclusive window, so
// a page is never handed to two owners even when callers run concurrently.
package pframe

import (
	"fmt"
	"io"
	"sync"

	"github.com/QuangTung97/pframe/allocator"
	"github.com/QuangTung97/pframe/frame"
	"github.com/QuangTung97/pframe/internal/logger"
	"github.com/QuangTung97/pframe/physmem"
)

// RegistryConfig ...
type RegistryConfig struct {
	Kind   allocator.Kind
	Memory physmem.Memory

	// LowWatermark is the fraction of the initialized pages below which
	// the registry logs a warning. The zero value disables it.
	LowWatermark Rational
}

// Stats counts registry operations since Init.
type Stats struct {
	Allocs       uint64 `json:"allocs"`
	Deallocs     uint64 `json:"deallocs"`
	FailedAllocs uint64 `json:"failed_allocs"`
}

// Registry ...
type Registry struct {
	mu sync.Mutex

	kind     allocator.Kind
	strategy allocator.Strategy
	memory   physmem.Memory

	initialized  bool
	pages        frame.Range
	lowWatermark Rational
	lowLimit     uint64
	belowLow     bool

	stats Stats
}

func registryValidateConfig(conf RegistryConfig) {
	if conf.Memory == nil {
		panic("Memory must not be nil")
	}
	if !conf.LowWatermark.IsZero() && conf.LowWatermark.Nominator > conf.LowWatermark.Denominator {
		panic("LowWatermark must <= 1")
	}
}

// NewRegistry returns a registry holding an uninitialized strategy.
func NewRegistry(conf RegistryConfig) *Registry {
	registryValidateConfig(conf)

	return &Registry{
		kind:         conf.Kind,
		strategy:     allocator.New(conf.Kind),
		memory:       conf.Memory,
		lowWatermark: conf.LowWatermark,
	}
}

// exclusive runs fn while holding the registry lock. fn must not call back
// into the registry.
func (r *Registry) exclusive(fn func(s allocator.Strategy)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.strategy)
}

// Init hands every page between the end of the kernel image and the end of
// physical memory to the strategy: [ceil(kernelEnd), floor(memoryEnd)).
func (r *Registry) Init(kernelEnd, memoryEnd uint64) {
	r.InitRange(frame.RangeFromAddrs(kernelEnd, memoryEnd))
}

// InitRange hands the pages of pages to the strategy. It must be called
// exactly once, before any Alloc.
func (r *Registry) InitRange(pages frame.Range) {
	r.exclusive(func(s allocator.Strategy) {
		if r.initialized {
			frame.Fault("frame_alloc", "frame allocator already initialized with %v", r.pages)
		}
		if backed := r.memory.Range(); pages.Len() > 0 &&
			(pages.Low < backed.Low || pages.High > backed.High) {
			frame.Fault("frame_alloc", "memory %v does not back every page of %v", backed, pages)
		}
		r.initialized = true
		r.pages = pages
		r.lowLimit = r.lowWatermark.MulUint64(pages.Len())
		s.Init(pages.Low, pages.High)
	})

	logger.L.Info("frame allocator initialized",
		"strategy", r.kind.String(),
		"range", pages.String(),
		"pages", pages.Len(),
	)
}

// Alloc takes a free page from the strategy and returns it zeroed. It returns
// false when no page is left.
func (r *Registry) Alloc() (*FrameTracker, bool) {
	var (
		ppn frame.PageNum
		ok  bool
	)
	r.exclusive(func(s allocator.Strategy) {
		ppn, ok = s.Alloc()
		if !ok {
			r.stats.FailedAllocs++
			return
		}
		r.stats.Allocs++
		r.checkLowWatermark(s.Remaining())
	})
	if !ok {
		logger.L.Debug("frame allocator exhausted", "strategy", r.kind.String())
		return nil, false
	}
	return newFrameTracker(r, ppn), true
}

// dealloc is called only by FrameTracker.Release.
func (r *Registry) dealloc(ppn frame.PageNum) {
	r.exclusive(func(s allocator.Strategy) {
		s.Dealloc(ppn)
		r.stats.Deallocs++
		if r.belowLow && s.Remaining() >= r.lowLimit {
			r.belowLow = false
		}
	})
}

func (r *Registry) checkLowWatermark(remaining uint64) {
	if r.belowLow || remaining >= r.lowLimit {
		return
	}
	r.belowLow = true
	logger.L.Warn("free frames below low watermark",
		"remaining", remaining,
		"watermark", r.lowLimit,
	)
}

// Remaining ...
func (r *Registry) Remaining() uint64 {
	var n uint64
	r.exclusive(func(s allocator.Strategy) {
		n = s.Remaining()
	})
	return n
}

// Range returns the pages handed to Init.
func (r *Registry) Range() frame.Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages
}

// Kind ...
func (r *Registry) Kind() allocator.Kind {
	return r.kind
}

// Stats ...
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Visible dumps the strategy state to w. Debug and test use only.
func (r *Registry) Visible(w io.Writer) {
	r.exclusive(func(s allocator.Strategy) {
		fmt.Fprintf(w, "[frame_alloc] strategy=%s range=%v remaining=%d\n", r.kind, r.pages, s.Remaining())
		s.Visible(w)
	})
}
