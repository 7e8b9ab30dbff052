package sim

import (
	"math"

	"github.com/hupe1980/spatialgo/geom"
)

// Body is the kinematic state of a simulated point mass. Its position is
// kept by the owning Agent so that it can be handed to an index unchanged.
type Body struct {
	Vel  geom.Vec
	Mass float64
}

// Speed returns the length of the velocity.
func (b Body) Speed() float64 { return b.Vel.Length() }

// Heading returns the direction of travel in radians.
func (b Body) Heading() float64 { return b.Vel.Heading() }

// TurnTo returns the signed shortest rotation from the current heading to heading.
func (b Body) TurnTo(heading float64) float64 { return geom.AngleDelta(b.Heading(), heading) }

// Inertia returns mass times speed.
func (b Body) Inertia() float64 { return b.Mass * b.Speed() }

// KineticEnergy returns ½·m·v².
func (b Body) KineticEnergy() float64 { return 0.5 * b.Mass * b.Vel.LengthSq() }

// ApplyForce integrates force over dt into the velocity.
// A non-positive mass is treated as unit mass.
func (b *Body) ApplyForce(force geom.Vec, dt float64) {
	m := b.Mass
	if m <= 0 || math.IsNaN(m) {
		m = 1
	}
	b.Vel = b.Vel.Add(force.Scale(dt / m))
}

// Agent is one member of a Flock.
type Agent struct {
	Pos geom.Vec
	Body
}
