//go:build pframe_linkedlist

package config

import "github.com/QuangTung97/pframe/allocator"

// DefaultFrameAllocator is selected with the pframe_linkedlist build tag.
const DefaultFrameAllocator = allocator.KindLinkedList
