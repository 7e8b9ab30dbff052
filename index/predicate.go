package index

import "github.com/hupe1980/spatialgo/geom"

// Predicate selects element positions.
type Predicate interface {
	Match(p geom.Vec) bool
}

// Bounded is a Predicate that can only ever match inside Bounds.
// Backends use Bounds to prune and Match to decide.
type Bounded interface {
	Predicate
	Bounds() geom.Box
}

// PredicateFunc adapts a function to Predicate. It is unbounded, so every
// backend evaluates it against all elements.
type PredicateFunc func(p geom.Vec) bool

// Match implements Predicate.
func (f PredicateFunc) Match(p geom.Vec) bool { return f(p) }

// Within matches positions strictly closer than Radius to Center.
type Within struct {
	Center geom.Vec
	Radius float64
}

// Near is shorthand for Within{center, radius}.
func Near(center geom.Vec, radius float64) Within {
	return Within{Center: center, Radius: radius}
}

// Match implements Predicate.
func (w Within) Match(p geom.Vec) bool {
	return w.Center.Near(p, w.Radius)
}

// Bounds returns the square of side 2*Radius centered on Center.
func (w Within) Bounds() geom.Box {
	return geom.BoxAround(w.Center, 2*w.Radius)
}

// InBox matches positions inside a half-open box.
type InBox struct {
	Box geom.Box
}

// Match implements Predicate.
func (b InBox) Match(p geom.Vec) bool { return b.Box.Contains(p) }

// Bounds implements Bounded.
func (b InBox) Bounds() geom.Box { return b.Box }

// And matches positions accepted by every predicate. It is bounded by the
// intersection of the bounded operands when at least one is bounded.
func And(preds ...Predicate) Predicate {
	return and(preds)
}

type and []Predicate

func (a and) Match(p geom.Vec) bool {
	for _, pr := range a {
		if !pr.Match(p) {
			return false
		}
	}
	return true
}

// BoundsOf returns the pruning box of pred and whether it has one.
func BoundsOf(pred Predicate) (geom.Box, bool) {
	switch v := pred.(type) {
	case Bounded:
		return v.Bounds(), true
	case and:
		var (
			box   geom.Box
			found bool
		)
		for _, pr := range v {
			b, ok := BoundsOf(pr)
			if !ok {
				continue
			}
			if !found {
				box, found = b, true
				continue
			}
			box = box.Intersection(b)
		}
		return box, found
	default:
		return geom.Box{}, false
	}
}
