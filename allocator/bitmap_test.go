package allocator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuangTung97/pframe/frame"
)

func TestBitmap_Init(t *testing.T) {
	table := []struct {
		name          string
		low, high     frame.PageNum
		expectedWords int
	}{
		{name: "empty", low: 10, high: 10, expectedWords: 0},
		{name: "one", low: 10, high: 11, expectedWords: 1},
		{name: "one-word", low: 0, high: 64, expectedWords: 1},
		{name: "two-words", low: 0, high: 65, expectedWords: 2},
		{name: "inverted", low: 20, high: 10, expectedWords: 0},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			b := NewBitmap()
			b.Init(e.low, e.high)
			assert.Equal(t, e.expectedWords, len(b.bitset))
			assert.Equal(t, e.low, b.start)
			assert.Equal(t, rangeLen(e.low, e.high), b.freeCount)
		})
	}
}

func TestBitmap_BitSet(t *testing.T) {
	b := NewBitmap()
	b.Init(0, 256)

	b.setBit(0)
	assert.Equal(t, []uint64{1, 0, 0, 0}, b.bitset)

	b.clearBit(0)
	b.setBit(66)
	assert.Equal(t, []uint64{0, 4, 0, 0}, b.bitset)
	assert.True(t, b.isBitSet(66))
	assert.False(t, b.isBitSet(67))
}

func TestBitmap_AllocLowestFirst(t *testing.T) {
	b := NewBitmap()
	b.Init(100, 200)

	for i := 0; i < 5; i++ {
		ppn, ok := b.Alloc()
		assert.True(t, ok)
		assert.Equal(t, frame.PageNum(100+i), ppn)
	}

	b.Dealloc(102)
	b.Dealloc(101)

	ppn, ok := b.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(101), ppn)

	ppn, ok = b.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(102), ppn)

	ppn, ok = b.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(105), ppn)
	assert.Equal(t, uint64(94), b.Remaining())
}

func TestBitmap_AllocAcrossWords(t *testing.T) {
	b := NewBitmap()
	b.Init(0, 70)

	for i := 0; i < 70; i++ {
		ppn, ok := b.Alloc()
		assert.True(t, ok)
		assert.Equal(t, frame.PageNum(i), ppn)
	}
	_, ok := b.Alloc()
	assert.False(t, ok)
	assert.Equal(t, []uint64{^uint64(0), 1<<6 - 1}, b.bitset)

	b.Dealloc(65)
	ppn, ok := b.Alloc()
	assert.True(t, ok)
	assert.Equal(t, frame.PageNum(65), ppn)
}

func TestBitmap_Visible(t *testing.T) {
	b := NewBitmap()
	b.Init(0, 72)
	_, _ = b.Alloc()
	_, _ = b.Alloc()

	var buf bytes.Buffer
	b.Visible(&buf)

	expected := "[BitmapAllocator] bitmap:\n" +
		"11" + strings.Repeat("0", 68) + "\n" +
		"00" +
		"\n[BitmapAllocator] bitmap ended\n"
	assert.Equal(t, expected, buf.String())
}
