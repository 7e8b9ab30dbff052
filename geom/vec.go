package geom

import (
	"fmt"
	"math"
)

// Vec is a 2D point or vector.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

func (v Vec) Neg() Vec {
	return Vec{-v.X, -v.Y}
}

// Scale multiplies both components by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s}
}

// Div divides both components by s.
func (v Vec) Div(s float64) Vec {
	return Vec{v.X / s, v.Y / s}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product of v and o.
func (v Vec) Cross(o Vec) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec) DistanceSq(o Vec) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

func (v Vec) Distance(o Vec) float64 {
	return math.Sqrt(v.DistanceSq(o))
}

// Near reports whether o is strictly closer than d to v.
func (v Vec) Near(o Vec, d float64) bool {
	return v.DistanceSq(o) < d*d
}

// Normalize returns the unit vector pointing along v. The zero vector stays zero.
func (v Vec) Normalize() Vec {
	l := v.Length()
	if l == 0 {
		return Vec{}
	}
	return v.Div(l)
}

// WithLength returns v rescaled to length l.
func (v Vec) WithLength(l float64) Vec {
	return v.Normalize().Scale(l)
}

// Limit caps the length of v at max.
func (v Vec) Limit(max float64) Vec {
	if v.LengthSq() > max*max {
		return v.WithLength(max)
	}
	return v
}

// Heading returns the angle of v in radians, in (-π, π].
func (v Vec) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle returns the unit vector for angle a (radians).
func FromAngle(a float64) Vec {
	return Vec{math.Cos(a), math.Sin(a)}
}

// Rotate turns v by a radians counter-clockwise.
func (v Vec) Rotate(a float64) Vec {
	cs, sn := math.Cos(a), math.Sin(a)
	return Vec{v.X*cs - v.Y*sn, v.X*sn + v.Y*cs}
}

// Less orders vectors by X, then by Y.
func (v Vec) Less(o Vec) bool {
	if v.X != o.X {
		return v.X < o.X
	}
	return v.Y < o.Y
}

// Compare returns -1, 0 or +1 following the Less order.
// It can be passed to slices.SortFunc.
func Compare(a, b Vec) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Clamp pins v into the closed rectangle spanned by lo and hi.
func (v Vec) Clamp(lo, hi Vec) Vec {
	return Vec{
		X: math.Min(math.Max(v.X, lo.X), hi.X),
		Y: math.Min(math.Max(v.Y, lo.Y), hi.Y),
	}
}

// Lerp interpolates linearly between v and o.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return v.Scale(1 - t).Add(o.Scale(t))
}
