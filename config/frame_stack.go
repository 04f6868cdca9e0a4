//go:build !pframe_bitmap && !pframe_linkedlist

package config

import "github.com/QuangTung97/pframe/allocator"

// DefaultFrameAllocator is the frame allocator compiled in by default.
const DefaultFrameAllocator = allocator.KindStack
