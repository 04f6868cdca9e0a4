//go:build !pframe_segment

package config

// DefaultMemoryAllocator is the area allocator compiled in by default.
const DefaultMemoryAllocator = MemoryFrame
