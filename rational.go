package pframe

// Rational ...
type Rational struct {
	Nominator   uint64 `yaml:"nominator" json:"nominator"`
	Denominator uint64 `yaml:"denominator" json:"denominator"`
}

// NewRational ...
func NewRational(nominator uint64, denominator uint64) Rational {
	return Rational{
		Nominator:   nominator,
		Denominator: denominator,
	}
}

// IsZero returns true for a rational that scales every value to zero,
// including the zero value of the struct.
func (r Rational) IsZero() bool {
	return r.Nominator == 0 || r.Denominator == 0
}

// MulUint64 ...
func (r Rational) MulUint64(v uint64) uint64 {
	if r.IsZero() {
		return 0
	}
	hi, lo := v/r.Denominator, v%r.Denominator
	return hi*r.Nominator + lo*r.Nominator/r.Denominator
}
