package pframe

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestNewRational(t *testing.T) {
	r := NewRational(2, 3)
	assert.Equal(t, uint64(2), r.Nominator)
	assert.Equal(t, uint64(3), r.Denominator)
	assert.False(t, r.IsZero())
	assert.True(t, Rational{}.IsZero())
}

func TestRational_MulUint64(t *testing.T) {
	table := []struct {
		name     string
		r        Rational
		value    uint64
		expected uint64
	}{
		{name: "zero-value", r: Rational{}, value: 1000, expected: 0},
		{name: "zero-denominator", r: NewRational(1, 0), value: 1000, expected: 0},
		{name: "tenth", r: NewRational(1, 10), value: 1024, expected: 102},
		{name: "three-fifths", r: NewRational(3, 5), value: 22, expected: 13},
		{name: "no-overflow", r: NewRational(3, 4), value: 1 << 62, expected: 3 << 60},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			assert.Equal(t, e.expected, e.r.MulUint64(e.value))
		})
	}
}
