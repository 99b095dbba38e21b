package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
)

func BetweenInc[T constraints.Integer | constraints.Float](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FloatEuclidianMod returns r in [0, m) for m > 0.
func FloatEuclidianMod(d, m float64) float64 {
	r := math.Mod(d, m)
	if (r < 0 && m > 0) || (r > 0 && m < 0) {
		r += m
	}
	// -1e-17 + 360 rounds to 360
	if r == m {
		return 0
	}
	return r
}

// WrapLongitude maps any longitude onto [-180, 180).
func WrapLongitude(lon float64) float64 {
	return FloatEuclidianMod(lon+180, 360) - 180
}

// IsFinite is false for NaN and ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
