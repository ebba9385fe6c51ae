package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Numeric fallbacks. Each helper names the default it substitutes so that
// degenerate inputs never turn into NaN further down the pipeline.

// ratioOr returns num/den, or fallback when den is zero or the result is not finite.
func ratioOr(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fallback
	}
	return r
}

// stdOrOne returns std, or 1 when the column has no spread. Spread below
// constantTolerance relative to the column mean counts as none.
func stdOrOne(std, mean float64) float64 {
	if std <= constantTolerance*math.Max(1, math.Abs(mean)) || math.IsNaN(std) {
		return 1
	}
	return std
}

const constantTolerance = 1e-12

// round rounds half away from zero to the given number of decimal places.
// NaN rounds to 0.
func round(x float64, places int) float64 {
	r, err := stats.Round(x, places)
	if err != nil {
		return 0
	}
	return r
}

// clamp limits x to [lo, hi]; NaN maps to lo.
func clamp(x, lo, hi float64) float64 {
	switch {
	case math.IsNaN(x), x < lo:
		return lo
	case x > hi:
		return hi
	}
	return x
}

// floorZero floors negative values at 0.
func floorZero(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	return x
}

// isConstant reports whether every value equals the first one.
func isConstant(xs []float64) bool {
	if len(xs) == 0 {
		return true
	}
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
