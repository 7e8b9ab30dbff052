// Package geom provides the 2D value types shared by every spatial index.
//
// Vec is a point or a displacement. Box is a half-open axis-aligned rectangle
// [Left, Left+Width) × [Top, Top+Height). Cell is the integer coordinate of a
// fixed-size grid square and is always derived with floor division, so a
// point lying exactly on the line between two cells belongs to the cell that
// starts at that line.
//
// All types are plain values: they are compared by components and are safe
// to copy and share between goroutines.
package geom
