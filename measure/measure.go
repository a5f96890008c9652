// SPDX-License-Identifier: MIT

package measure

import "math"

// Scalar quantities. Distinct types so that a Distance cannot be passed
// where a Duration is expected without an explicit conversion.
type (
	// Cost is a unitless objective value (penalised or not).
	Cost int64

	// Distance is a travelled length in instance units.
	Distance int64

	// Duration is an elapsed time in instance units.
	Duration int64

	// Load is a demand or capacity amount in one load dimension.
	Load int64

	// Coordinate is a planar coordinate used for centroids and angles.
	Coordinate int64
)

// Sentinels standing in for +infinity. Saturating arithmetic keeps sums
// involving a sentinel pinned at the sentinel.
const (
	MaxCost     Cost     = math.MaxInt64
	MaxDistance Distance = math.MaxInt64
	MaxDuration Duration = math.MaxInt64
	MaxLoad     Load     = math.MaxInt64
)

// addSat returns a+b clamped to [math.MinInt64, math.MaxInt64].
func addSat[T ~int64](a, b T) T {
	if b > 0 && a > T(math.MaxInt64)-b {
		return T(math.MaxInt64)
	}
	if b < 0 && a < T(math.MinInt64)-b {
		return T(math.MinInt64)
	}

	return a + b
}

// mulSat returns a*b clamped to [math.MinInt64, math.MaxInt64].
// Both operands are expected to be non-negative in practice (penalty
// application), but the negative quadrants are handled for completeness.
func mulSat[T ~int64](a, b T) T {
	if a == 0 || b == 0 {
		return 0
	}
	hi, lo := int64(a), int64(b)
	p := hi * lo
	if p/lo != hi {
		if (hi > 0) == (lo > 0) {
			return T(math.MaxInt64)
		}

		return T(math.MinInt64)
	}

	return T(p)
}

// AddCost returns a+b, saturating at MaxCost.
func AddCost(a, b Cost) Cost { return addSat(a, b) }

// AddDistance returns a+b, saturating at MaxDistance.
func AddDistance(a, b Distance) Distance { return addSat(a, b) }

// AddDuration returns a+b, saturating at MaxDuration.
func AddDuration(a, b Duration) Duration { return addSat(a, b) }

// AddLoad returns a+b, saturating at MaxLoad.
func AddLoad(a, b Load) Load { return addSat(a, b) }

// MulCost returns a*b, saturating at MaxCost. Used for penalty application
// (unit penalty times violation amount).
func MulCost(a, b Cost) Cost { return mulSat(a, b) }

// MaxOf returns the larger of a and b.
func MaxOf[T ~int64](a, b T) T {
	if a > b {
		return a
	}

	return b
}

// MinOf returns the smaller of a and b.
func MinOf[T ~int64](a, b T) T {
	if a < b {
		return a
	}

	return b
}
