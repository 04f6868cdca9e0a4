package allocator

import (
	"bufio"
	"io"
	"math"
	"math/bits"

	"github.com/QuangTung97/pframe/frame"
)

const bitmapRowWidth = 70

// Bitmap tracks one bit per page, set when the page is allocated. Alloc always
// returns the lowest free page.
type Bitmap struct {
	start frame.PageNum
	end   frame.PageNum

	// freeCount mirrors the number of clear bits so Remaining and
	// exhausted Alloc calls skip the scan.
	freeCount uint64
	bitset    []uint64
}

// NewBitmap ...
func NewBitmap() *Bitmap {
	return &Bitmap{}
}

// Init ...
func (b *Bitmap) Init(low, high frame.PageNum) {
	n := rangeLen(low, high)
	b.start = low
	b.end = low + frame.PageNum(n)
	b.freeCount = n
	b.bitset = make([]uint64, (n+63)>>6)
}

func (b *Bitmap) setBit(index uint64) {
	b.bitset[index>>6] |= 1 << (index & 0x3f)
}

func (b *Bitmap) clearBit(index uint64) {
	b.bitset[index>>6] &^= 1 << (index & 0x3f)
}

func (b *Bitmap) isBitSet(index uint64) bool {
	return b.bitset[index>>6]&(1<<(index&0x3f)) != 0
}

// Alloc ...
func (b *Bitmap) Alloc() (frame.PageNum, bool) {
	if b.freeCount == 0 {
		return frame.InvalidPageNum, false
	}

	// Padding bits of the last word are never set, but they come after every
	// in-range bit so the first clear bit found is always in range.
	for i, word := range b.bitset {
		if word == math.MaxUint64 {
			continue
		}
		index := uint64(i)<<6 + uint64(bits.TrailingZeros64(^word))
		b.setBit(index)
		b.freeCount--
		return b.start + frame.PageNum(index), true
	}
	return frame.InvalidPageNum, false
}

// Dealloc ...
func (b *Bitmap) Dealloc(ppn frame.PageNum) {
	if ppn < b.start || ppn >= b.end {
		frame.Fault("bitmap_alloc", "frame ppn=%#x is outside [%#x, %#x)", uint64(ppn), uint64(b.start), uint64(b.end))
	}

	index := uint64(ppn - b.start)
	if !b.isBitSet(index) {
		frame.Fault("bitmap_alloc", "frame ppn=%#x has not been allocated", uint64(ppn))
	}
	b.clearBit(index)
	b.freeCount++
}

// Remaining ...
func (b *Bitmap) Remaining() uint64 {
	return b.freeCount
}

// Visible prints the bitmap in rows of 70 pages, 1 for allocated.
func (b *Bitmap) Visible(w io.Writer) {
	out := bufio.NewWriter(w)
	defer out.Flush()

	_, _ = out.WriteString("[BitmapAllocator] bitmap:\n")
	n := uint64(b.end - b.start)
	for i := uint64(0); i < n; i++ {
		if b.isBitSet(i) {
			_ = out.WriteByte('1')
		} else {
			_ = out.WriteByte('0')
		}
		if (i+1)%bitmapRowWidth == 0 {
			_ = out.WriteByte('\n')
		}
	}
	_, _ = out.WriteString("\n[BitmapAllocator] bitmap ended\n")
}
