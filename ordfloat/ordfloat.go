// Package ordfloat provides a 32-bit float wrapper with a total order.
//
// Bitcoin fee rates and branch-and-bound scores are naturally expressed as
// float32, but Go's float32 only has a partial order (NaN compares false
// against everything, including itself). Sorting a priority queue or using a
// score as a map key needs a total order instead. Float32 supplies one by
// construction: NaN is rejected at the boundary, so every value that exists
// is comparable, and -0.0 and 0.0 compare and hash as equal (Go's built-in
// == already treats them that way for floats).
package ordfloat

import "fmt"

// Float32 is a float32 guaranteed not to be NaN, with a total order.
type Float32 float32

// Zero is the additive identity.
const Zero Float32 = 0

// New wraps v, panicking if v is NaN.
//
// Panicking here is a deliberate precondition check, not error handling:
// every caller in this module derives v from arithmetic over already-valid
// Float32/weight/value inputs, so a NaN can only mean a logic bug upstream.
func New(v float32) Float32 {
	if v != v { // NaN is the only float that doesn't equal itself.
		panic("ordfloat: NaN is not a valid Float32")
	}
	return Float32(v)
}

// Float32Val returns the underlying float32.
func (f Float32) Float32Val() float32 { return float32(f) }

// Less reports whether f sorts strictly before o.
func (f Float32) Less(o Float32) bool { return f < o }

// Compare returns -1, 0, or 1 as f is less than, equal to, or greater than o.
func (f Float32) Compare(o Float32) int {
	switch {
	case f < o:
		return -1
	case f > o:
		return 1
	default:
		return 0
	}
}

// Add returns f + o.
func (f Float32) Add(o Float32) Float32 { return New(float32(f) + float32(o)) }

// Sub returns f - o.
func (f Float32) Sub(o Float32) Float32 { return New(float32(f) - float32(o)) }

// Min returns the lesser of f and o.
func Min(f, o Float32) Float32 {
	if o < f {
		return o
	}
	return f
}

// Max returns the greater of f and o.
func Max(f, o Float32) Float32 {
	if o > f {
		return o
	}
	return f
}

func (f Float32) String() string {
	return fmt.Sprintf("%g", float32(f))
}
