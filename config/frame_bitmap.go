//go:build pframe_bitmap && !pframe_linkedlist

package config

import "github.com/QuangTung97/pframe/allocator"

// DefaultFrameAllocator is selected with the pframe_bitmap build tag.
const DefaultFrameAllocator = allocator.KindBitmap
