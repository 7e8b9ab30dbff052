package geom

import "math"

// NormalizeAngle maps a to the equivalent angle in [-π, π].
func NormalizeAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

// AngleDelta returns the signed shortest rotation from one angle to another,
// in [-π, π]. Positive values turn counter-clockwise in a y-up frame.
func AngleDelta(from, to float64) float64 {
	return NormalizeAngle(to - from)
}
