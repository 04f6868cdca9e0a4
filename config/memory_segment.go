//go:build pframe_segment

package config

// DefaultMemoryAllocator is selected with the pframe_segment build tag.
const DefaultMemoryAllocator = MemorySegment
