package pagecache

import (
	"math/bits"
)

// Seeds taken from FNV-1a, CityHash and Murmur3.
var sketchSeeds = [4]uint64{
	0xc3a5c85c97cb3127,
	0xb492b66fbe98f273,
	0x9ae16a3b2f90404f,
	0xcbf29ce484222325,
}

const (
	counterMask uint64 = 0xf
	halveMask   uint64 = 0x7777777777777777
	lowBitMask  uint64 = 0x1111111111111111

	minCounters = 16
)

// frequencySketch is a count-min sketch of 4-bit counters, 16 per word.
// Counters are halved every sampleSize increments so old popularity decays.
type frequencySketch struct {
	words      []uint64
	wordMask   uint64
	additions  uint64
	sampleSize uint64
}

func newFrequencySketch(counters uint64, capacity int) *frequencySketch {
	if counters < minCounters {
		counters = minCounters
	}
	numWords := uint64(1) << bits.Len64(counters-1) >> 4

	sampleSize := 10 * uint64(capacity)
	if sampleSize == 0 {
		sampleSize = 10
	}

	return &frequencySketch{
		words:      make([]uint64, numWords),
		wordMask:   numWords - 1,
		sampleSize: sampleSize,
	}
}

func (s *frequencySketch) wordIndex(key uint64, i int) uint64 {
	h := (key + sketchSeeds[i]) * sketchSeeds[i]
	h += h >> 32
	return h & s.wordMask
}

func counterShift(key uint64, i int) uint64 {
	// each key uses one group of four counters per word, one counter per row
	return ((key&3)<<2 + uint64(i)) << 2
}

func (s *frequencySketch) increment(key uint64) {
	added := false
	for i := range sketchSeeds {
		w := s.wordIndex(key, i)
		shift := counterShift(key, i)
		if (s.words[w]>>shift)&counterMask != counterMask {
			s.words[w] += 1 << shift
			added = true
		}
	}

	if !added {
		return
	}
	s.additions++
	if s.additions >= s.sampleSize {
		s.halve()
	}
}

func (s *frequencySketch) halve() {
	odd := uint64(0)
	for i, w := range s.words {
		odd += uint64(bits.OnesCount64(w & lowBitMask))
		s.words[i] = (w >> 1) & halveMask
	}
	if odd>>2 > s.additions {
		s.additions = 0
		return
	}
	s.additions = (s.additions - odd>>2) >> 1
}

func (s *frequencySketch) frequency(key uint64) uint32 {
	result := uint32(counterMask)
	for i := range sketchSeeds {
		w := s.wordIndex(key, i)
		c := uint32((s.words[w] >> counterShift(key, i)) & counterMask)
		if c < result {
			result = c
		}
	}
	return result
}
