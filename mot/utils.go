package mot

import "math"

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFinitePoint(p Point) bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// isPositive reports whether v is a usable positive parameter (NaN and +Inf are not)
func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
