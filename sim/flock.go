package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/spatialgo"
	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
)

// Params contains the steering parameters of a flock.
type Params struct {
	// World is the box agents live in. They bounce off its edges.
	World geom.Box

	// Radius is the perception radius: the Near radius of every agent's query.
	Radius float64

	// SeparationRadius is the distance below which neighbors push each other apart.
	SeparationRadius float64

	// Separation, Alignment and Cohesion weight the three steering rules.
	Separation float64
	Alignment  float64
	Cohesion   float64

	MaxSpeed float64
	MaxForce float64

	// Dt is the time step of one frame.
	Dt float64
}

// DefaultParams contains the default flock parameters for a 1000×1000 world.
var DefaultParams = Params{
	World:            geom.NewBox(0, 0, 1000, 1000),
	Radius:           25,
	SeparationRadius: 10,
	Separation:       1.5,
	Alignment:        1.0,
	Cohesion:         1.0,
	MaxSpeed:         4,
	MaxForce:         0.1,
	Dt:               1,
}

// StepStats summarizes one Step.
type StepStats struct {
	Frame   spatialgo.FrameStats
	Queries int
	// Pairs is the number of ordered neighbor pairs found, self pairs excluded.
	Pairs int64
	// Isolated is the number of agents that had no neighbor.
	Isolated int
	// Turn is the mean absolute heading change in radians.
	Turn float64
}

// Flock is a boids simulation that issues one radius query per agent per frame.
type Flock struct {
	params Params
	space  *spatialgo.Space[int]

	agents  []Agent
	next    []Agent
	elems   []index.Element[int]
	pairs   []int32
	turns   []float64
	visited []bool

	mu     sync.Mutex
	linked *roaring.Bitmap
}

// NewFlock places n agents uniformly at random in the world with random
// headings, seeded for reproducibility.
func NewFlock(space *spatialgo.Space[int], n int, seed uint64, optFns ...func(p *Params)) (*Flock, error) {
	params := DefaultParams
	for _, fn := range optFns {
		fn(&params)
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	agents := make([]Agent, n)
	w := params.World
	for i := range agents {
		agents[i] = Agent{
			Pos: geom.V(w.Left+rng.Float64()*w.Width, w.Top+rng.Float64()*w.Height),
			Body: Body{
				Vel:  geom.FromAngle(rng.Float64() * 2 * math.Pi).Scale(params.MaxSpeed * (0.5 + rng.Float64()/2)),
				Mass: 1,
			},
		}
	}

	return NewFlockFrom(space, agents, optFns...)
}

// NewFlockFrom creates a flock from explicit agents. The slice is copied.
func NewFlockFrom(space *spatialgo.Space[int], agents []Agent, optFns ...func(p *Params)) (*Flock, error) {
	params := DefaultParams
	for _, fn := range optFns {
		fn(&params)
	}

	if err := params.validate(); err != nil {
		return nil, err
	}
	if space == nil {
		return nil, spatialgo.ErrNilIndex
	}

	f := &Flock{
		params:  params,
		space:   space,
		agents:  append([]Agent(nil), agents...),
		next:    make([]Agent, len(agents)),
		elems:   make([]index.Element[int], len(agents)),
		pairs:   make([]int32, len(agents)),
		turns:   make([]float64, len(agents)),
		visited: make([]bool, len(agents)),
		linked:  roaring.New(),
	}

	return f, nil
}

func (p Params) validate() error {
	switch {
	case p.World.IsEmpty() || !p.World.IsFinite():
		return &index.ConfigError{Field: "world", Value: p.World, Reason: "must be a non-empty finite box"}
	case !(p.Radius > 0):
		return &index.ConfigError{Field: "radius", Value: p.Radius, Reason: "must be positive"}
	case p.SeparationRadius < 0 || p.SeparationRadius > p.Radius:
		return &index.ConfigError{Field: "separation radius", Value: p.SeparationRadius, Reason: "must be within [0, radius]"}
	case !(p.MaxSpeed > 0) || !(p.MaxForce > 0) || !(p.Dt > 0):
		return &index.ConfigError{Field: "max speed, max force and dt", Value: []float64{p.MaxSpeed, p.MaxForce, p.Dt}, Reason: "must be positive"}
	}
	return nil
}

// Params returns the flock parameters.
func (f *Flock) Params() Params { return f.params }

// Len returns the number of agents.
func (f *Flock) Len() int { return len(f.agents) }

// Agents returns the agents as of the end of the last Step.
// The slice is owned by the flock.
func (f *Flock) Agents() []Agent { return f.agents }

// Space returns the space the flock queries.
func (f *Flock) Space() *spatialgo.Space[int] { return f.space }

// Step advances the simulation by one frame: load every agent into the
// space, query each agent's neighborhood, steer and move.
func (f *Flock) Step(ctx context.Context) (StepStats, error) {
	for i, a := range f.agents {
		f.elems[i] = index.Element[int]{Pos: a.Pos, Data: i}
	}

	var stats StepStats

	fs, err := f.space.Load(ctx, f.elems)
	stats.Frame = fs
	if err != nil {
		return stats, err
	}

	clear(f.pairs)
	clear(f.turns)
	clear(f.visited)
	f.linked.Clear()

	err = f.space.ForEachNeighbor(ctx, f.params.Radius, func(nb *spatialgo.Neighborhood[int]) error {
		i := nb.Element.Data
		force, n := f.steer(i, nb)
		f.pairs[i] = int32(n)
		f.visited[i] = true

		if n > 0 {
			f.mu.Lock()
			f.linked.Add(uint32(i))
			f.mu.Unlock()
		}

		a := f.agents[i]
		a.ApplyForce(force, f.params.Dt)
		a.Vel = a.Vel.Limit(f.params.MaxSpeed)
		f.turns[i] = math.Abs(f.agents[i].TurnTo(a.Heading()))
		f.next[i] = f.move(a)

		return nil
	})
	if err != nil {
		return stats, err
	}

	// Agents dropped by the space keep coasting.
	for i, ok := range f.visited {
		if !ok {
			f.next[i] = f.move(f.agents[i])
		}
	}

	f.agents, f.next = f.next, f.agents

	stats.Queries = f.space.Len()
	for _, n := range f.pairs {
		stats.Pairs += int64(n)
	}
	stats.Isolated = len(f.agents) - int(f.linked.GetCardinality())
	if len(f.turns) > 0 {
		var sum float64
		for _, d := range f.turns {
			sum += d
		}
		stats.Turn = sum / float64(len(f.turns))
	}

	return stats, nil
}

// steer applies separation, alignment and cohesion for agent i against the
// neighbors reported by the space. It returns the steering force and the
// number of neighbors other than i.
func (f *Flock) steer(i int, nb *spatialgo.Neighborhood[int]) (geom.Vec, int) {
	p := f.params
	self := f.agents[i]

	var sep, align, center geom.Vec
	n := 0
	for _, e := range nb.Neighbors() {
		other := f.agents[e.Data]
		n++

		align = align.Add(other.Vel)
		center = center.Add(other.Pos)

		d := self.Pos.Sub(other.Pos)
		if dsq := d.LengthSq(); dsq > 0 && dsq < p.SeparationRadius*p.SeparationRadius {
			sep = sep.Add(d.Div(dsq))
		}
	}

	if n == 0 {
		return geom.Vec{}, 0
	}

	inv := 1 / float64(n)
	align = f.seek(align.Scale(inv), self.Vel)
	cohesion := f.seek(center.Scale(inv).Sub(self.Pos), self.Vel)
	separate := geom.Vec{}
	if sep.LengthSq() > 0 {
		separate = f.seek(sep, self.Vel)
	}

	return separate.Scale(p.Separation).
		Add(align.Scale(p.Alignment)).
		Add(cohesion.Scale(p.Cohesion)), n
}

// seek returns the force steering vel toward desired at full speed.
func (f *Flock) seek(desired, vel geom.Vec) geom.Vec {
	if desired.LengthSq() == 0 {
		return geom.Vec{}
	}
	return desired.WithLength(f.params.MaxSpeed).Sub(vel).Limit(f.params.MaxForce)
}

// move advances a by one time step and reflects it off the world edges.
// Positions stay inside the half-open world box.
func (f *Flock) move(a Agent) Agent {
	w := f.params.World
	a.Pos = a.Pos.Add(a.Vel.Scale(f.params.Dt))

	lo, hi := w.Min(), w.Max()
	if a.Pos.X < lo.X || a.Pos.X >= hi.X {
		a.Vel.X = -a.Vel.X
	}
	if a.Pos.Y < lo.Y || a.Pos.Y >= hi.Y {
		a.Vel.Y = -a.Vel.Y
	}
	a.Pos = a.Pos.Clamp(lo, geom.V(math.Nextafter(hi.X, lo.X), math.Nextafter(hi.Y, lo.Y)))

	return a
}

// Within returns the set of agents strictly closer than radius to center,
// as of the last Step.
func (f *Flock) Within(center geom.Vec, radius float64) (*roaring.Bitmap, error) {
	res := index.NewResults(0)
	if err := f.space.Query(res, index.Near(center, radius), 0); err != nil {
		return nil, err
	}

	out := roaring.New()
	for _, ref := range res.Refs() {
		out.Add(uint32(f.space.At(ref).Data))
	}
	return out, nil
}

// Nearest returns the agent closest to p, or -1 for an empty flock.
func (f *Flock) Nearest(p geom.Vec) int {
	best, bestD := -1, math.Inf(1)
	for i, a := range f.agents {
		if d := a.Pos.DistanceSq(p); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// KineticEnergy returns the total kinetic energy of the flock.
func (f *Flock) KineticEnergy() float64 {
	var e float64
	for _, a := range f.agents {
		e += a.KineticEnergy()
	}
	return e
}
