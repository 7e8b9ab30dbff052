package geom

import (
	"fmt"
	"math"
)

// Box is a half-open axis-aligned rectangle [Left, Left+Width) × [Top, Top+Height).
//
// A negative Width or Height describes the same region as its positive
// counterpart anchored at the other edge; containment and intersection
// normalize before comparing.
type Box struct {
	Left, Top, Width, Height float64
}

// NewBox returns a box from its top-left corner and size.
func NewBox(left, top, width, height float64) Box {
	return Box{Left: left, Top: top, Width: width, Height: height}
}

// BoxAround returns the square of side size centered on c.
func BoxAround(c Vec, size float64) Box {
	return Box{Left: c.X - size/2, Top: c.Y - size/2, Width: size, Height: size}
}

// BoxFromCorners returns the box spanned by two opposite corners.
func BoxFromCorners(a, b Vec) Box {
	return Box{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// BoxOf returns the box with zero size located at p. Merging further points
// into it with Extend yields their exact bounding box.
func BoxOf(p Vec) Box {
	return Box{Left: p.X, Top: p.Y}
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%g, %g, %g, %g)", b.Left, b.Top, b.Width, b.Height)
}

func (b Box) Right() float64  { return b.Left + b.Width }
func (b Box) Bottom() float64 { return b.Top + b.Height }

func (b Box) Center() Vec {
	return Vec{b.Left + b.Width/2, b.Top + b.Height/2}
}

func (b Box) Area() float64 {
	return math.Abs(b.Width * b.Height)
}

// Min returns the smallest corner.
func (b Box) Min() Vec {
	minX, _, minY, _ := b.extents()
	return Vec{minX, minY}
}

// Max returns the largest corner. It is not itself contained in b.
func (b Box) Max() Vec {
	_, maxX, _, maxY := b.extents()
	return Vec{maxX, maxY}
}

// IsEmpty reports whether b contains no point.
func (b Box) IsEmpty() bool {
	return b.Width == 0 || b.Height == 0
}

// IsFinite reports whether every field is finite.
func (b Box) IsFinite() bool {
	return Vec{b.Left, b.Top}.IsFinite() && Vec{b.Width, b.Height}.IsFinite()
}

func (b Box) extents() (minX, maxX, minY, maxY float64) {
	minX, maxX = b.Left, b.Left+b.Width
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY = b.Top, b.Top+b.Height
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return minX, maxX, minY, maxY
}

// Contains reports whether p lies in the half-open region of b.
func (b Box) Contains(p Vec) bool {
	minX, maxX, minY, maxY := b.extents()
	return p.X >= minX && p.X < maxX && p.Y >= minY && p.Y < maxY
}

// Intersects reports whether b and o share a region of positive area.
func (b Box) Intersects(o Box) bool {
	minX, maxX, minY, maxY := b.extents()
	minX2, maxX2, minY2, maxY2 := o.extents()
	return minX < maxX2 && maxX > minX2 && minY < maxY2 && maxY > minY2
}

// Intersection returns the overlap of b and o, or the zero box when they are disjoint.
func (b Box) Intersection(o Box) Box {
	minX, maxX, minY, maxY := b.extents()
	minX2, maxX2, minY2, maxY2 := o.extents()
	left := math.Max(minX, minX2)
	top := math.Max(minY, minY2)
	width := math.Min(maxX, maxX2) - left
	height := math.Min(maxY, maxY2) - top
	if width < 0 || height < 0 {
		return Box{}
	}
	return Box{Left: left, Top: top, Width: width, Height: height}
}

// Merge returns the smallest box enclosing b and o.
func (b Box) Merge(o Box) Box {
	minX, maxX, minY, maxY := b.extents()
	minX2, maxX2, minY2, maxY2 := o.extents()
	left := math.Min(minX, minX2)
	top := math.Min(minY, minY2)
	return Box{
		Left:   left,
		Top:    top,
		Width:  math.Max(maxX, maxX2) - left,
		Height: math.Max(maxY, maxY2) - top,
	}
}

// Extend returns the smallest box enclosing b and the point p.
func (b Box) Extend(p Vec) Box {
	return b.Merge(BoxOf(p))
}

// Scale resizes b by factor around its center.
func (b Box) Scale(factor float64) Box {
	w := b.Width * factor
	h := b.Height * factor
	return Box{
		Left:   b.Left - (w-b.Width)/2,
		Top:    b.Top - (h-b.Height)/2,
		Width:  w,
		Height: h,
	}
}

// Inflate grows both dimensions of b by d, keeping the center fixed.
func (b Box) Inflate(d float64) Box {
	return Box{
		Left:   b.Left - d/2,
		Top:    b.Top - d/2,
		Width:  b.Width + d,
		Height: b.Height + d,
	}
}

// Translate moves b by v.
func (b Box) Translate(v Vec) Box {
	return Box{Left: b.Left + v.X, Top: b.Top + v.Y, Width: b.Width, Height: b.Height}
}

// ClampVec pins p into the closed rectangle of b.
func (b Box) ClampVec(p Vec) Vec {
	return p.Clamp(b.Min(), b.Max())
}
