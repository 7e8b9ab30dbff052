package geom

import (
	"fmt"
	"math"
)

// Cell is the signed integer coordinate of a grid square.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Y)
}

// Add offsets c by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{c.X + dx, c.Y + dy}
}

// Adjacent reports whether o is c itself or one of its eight neighbors.
func (c Cell) Adjacent(o Cell) bool {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// CellOf returns floor(p / size) on both axes for a square cell of the given size.
func CellOf(p Vec, size float64) Cell {
	return CellOf2(p, size, size)
}

// CellOf2 is CellOf for rectangular cells.
func CellOf2(p Vec, w, h float64) Cell {
	return Cell{
		X: int(math.Floor(p.X / w)),
		Y: int(math.Floor(p.Y / h)),
	}
}

// Origin returns the lower corner of the cell in world coordinates.
func (c Cell) Origin(size float64) Vec {
	return Vec{float64(c.X) * size, float64(c.Y) * size}
}

// CellRange returns the inclusive range of cells touched by b:
// the cells of b.Min() and of b.Max(). b.Max() itself is outside of the
// half-open box, so a box ending exactly on a cell line still reports the
// next cell; callers only ever over-scan by one cell, which the exact
// predicate filters.
func CellRange(b Box, w, h float64) (lo, hi Cell) {
	return CellOf2(b.Min(), w, h), CellOf2(b.Max(), w, h)
}
