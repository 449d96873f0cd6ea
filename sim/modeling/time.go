package modeling

import "math"

// VTimeInSec is the simulation time, in seconds.
type VTimeInSec float64

// Infinity is the time advance of a passive model.
var Infinity = VTimeInSec(math.Inf(1))

// IsInf reports whether t is positive infinity.
func (t VTimeInSec) IsInf() bool {
	return math.IsInf(float64(t), 1)
}

// MinTime returns the smaller of a and b.
func MinTime(a, b VTimeInSec) VTimeInSec {
	if a < b {
		return a
	}

	return b
}
