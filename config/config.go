// Package config holds the boot configuration of the frame allocator.
//
// The frame allocator strategy and the area allocator kind are chosen at
// build time with tags:
//
//	go build -tags pframe_bitmap      # bitmap frame allocator
//	go build -tags pframe_linkedlist  # linked list frame allocator
//	go build -tags pframe_segment     # segment-backed area allocator
//
// Without tags the stack frame allocator and frame-backed areas are used. A
// YAML file loaded with Load can override every default.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/allocator"
	"github.com/QuangTung97/pframe/frame"
)

const (
	// DefaultKernelEnd is the first address after the kernel image.
	DefaultKernelEnd uint64 = 0x80400000

	// DefaultMemoryEnd is the end of physical memory.
	DefaultMemoryEnd uint64 = 0x80800000
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// MemoryAllocator selects how map areas obtain their memory.
type MemoryAllocator int

const (
	// MemoryFrame backs areas with individual frames.
	MemoryFrame MemoryAllocator = iota
	// MemorySegment backs areas with segments.
	MemorySegment
)

var memoryAllocatorNames = []string{
	MemoryFrame:   "frame",
	MemorySegment: "segment",
}

// String ...
func (m MemoryAllocator) String() string {
	if m < 0 || int(m) >= len(memoryAllocatorNames) {
		return fmt.Sprintf("MemoryAllocator(%d)", int(m))
	}
	return memoryAllocatorNames[m]
}

// MarshalText ...
func (m MemoryAllocator) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText ...
func (m *MemoryAllocator) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range memoryAllocatorNames {
		if n == name {
			*m = MemoryAllocator(i)
			return nil
		}
	}
	return errors.Errorf("unknown memory allocator %q (want frame or segment)", string(text))
}

// Config ...
type Config struct {
	FrameAllocator  allocator.Kind  `yaml:"frame_allocator" json:"frame_allocator"`
	MemoryAllocator MemoryAllocator `yaml:"memory_allocator" json:"memory_allocator"`

	KernelEnd uint64 `yaml:"kernel_end" json:"kernel_end"`
	MemoryEnd uint64 `yaml:"memory_end" json:"memory_end"`

	LowWatermark pframe.Rational `yaml:"low_watermark" json:"low_watermark"`

	// TestFrame and TestSegment select the boot self tests.
	TestFrame   bool `yaml:"test_frame" json:"test_frame"`
	TestSegment bool `yaml:"test_segment" json:"test_segment"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		FrameAllocator:  DefaultFrameAllocator,
		MemoryAllocator: DefaultMemoryAllocator,
		KernelEnd:       DefaultKernelEnd,
		MemoryEnd:       DefaultMemoryEnd,
	}
}

// Pages returns the page range handed to the frame allocator.
func (c Config) Pages() frame.Range {
	return frame.RangeFromAddrs(c.KernelEnd, c.MemoryEnd)
}

// Validate ...
func (c Config) Validate() error {
	if !c.FrameAllocator.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "frame_allocator %v", c.FrameAllocator)
	}
	if c.MemoryAllocator != MemoryFrame && c.MemoryAllocator != MemorySegment {
		return errors.Wrapf(ErrInvalidConfig, "memory_allocator %v", c.MemoryAllocator)
	}
	if c.MemoryEnd <= c.KernelEnd {
		return errors.Wrapf(ErrInvalidConfig, "memory_end %#x must be above kernel_end %#x", c.MemoryEnd, c.KernelEnd)
	}
	if c.Pages().Len() == 0 {
		return errors.Wrapf(ErrInvalidConfig, "no whole page between %#x and %#x", c.KernelEnd, c.MemoryEnd)
	}
	w := c.LowWatermark
	if !w.IsZero() && w.Nominator > w.Denominator {
		return errors.Wrapf(ErrInvalidConfig, "low_watermark %d/%d must be <= 1", w.Nominator, w.Denominator)
	}
	return nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	conf := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&conf); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "config: decode")
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	conf, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: load %s", path)
	}
	return conf, nil
}
