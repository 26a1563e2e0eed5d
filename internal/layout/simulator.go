// Package layout relaxes a graph toward a readable force-directed layout, one
// step per animation frame.
//
// A step is synchronous and O(n²+e). The graph is mutated in place and must
// only be advanced by one caller at a time; see internal/scene for the caller
// used by the server.
package layout

import (
	"math"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/motion"
)

// Params are the physics constants shared by every mode.
type Params struct {
	Repulsion     float64 `json:"repulsion" toml:"repulsion"`
	Attraction    float64 `json:"attraction" toml:"attraction"`
	CenterGravity float64 `json:"center_gravity" toml:"center_gravity"`
	// Damping must be below 1 for the layout to settle.
	Damping float64 `json:"damping" toml:"damping"`
}

// DefaultParams returns the tuned constants for canvases of a few hundred
// pixels holding tens of nodes.
func DefaultParams() Params {
	return Params{
		Repulsion:     800,
		Attraction:    0.004,
		CenterGravity: 0.002,
		Damping:       0.85,
	}
}

// Simulator advances graphs with a fixed set of Params. A zero Params has no
// forces and full damping, so start from DefaultParams.
type Simulator struct {
	Params Params

	// scratch accumulator reused across steps
	force []motion.Vec
}

// New returns a Simulator using p.
func New(p Params) *Simulator {
	return &Simulator{Params: p}
}

// Step advances g by one frame with DefaultParams.
func Step(g *graph.Graph, width, height float64, mode ModeConfig) {
	New(DefaultParams()).Step(g, width, height, mode)
}

// Step runs one relaxation step on g for a width x height canvas: pairwise
// repulsion, edge springs and centre gravity are summed into a per-node
// force, then velocities are damped and positions advanced. Fixed nodes
// exert force but never move. A node whose position is not finite exerts
// and feels no force until integration puts it back at the centre. Every free
// node ends inside [radius, dim-radius] on both axes.
func (s *Simulator) Step(g *graph.Graph, width, height float64, mode ModeConfig) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}
	if cap(s.force) < n {
		s.force = make([]motion.Vec, n)
	}
	force := s.force[:n]
	clear(force)

	intensity := mode.NodeMovement
	center := motion.Vec{X: width / 2, Y: height / 2}

	s.repel(g.Nodes, force, intensity)
	s.attract(g, force, intensity)
	s.gravitate(g.Nodes, force, center)
	s.integrate(g.Nodes, force, width, height, center)
}

func (s *Simulator) repel(nodes []graph.Node, force []motion.Vec, intensity float64) {
	k := s.Params.Repulsion * intensity
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			d := nodes[j].Position.Sub(nodes[i].Position)
			if !d.Finite() {
				continue
			}
			dist := math.Max(d.Len(), 1)
			push := motion.Normalize(d).Mul(k / (dist * dist))
			force[i] = force[i].Sub(push)
			force[j] = force[j].Add(push)
		}
	}
}

func (s *Simulator) attract(g *graph.Graph, force []motion.Vec, intensity float64) {
	idx := g.Index()
	k := s.Params.Attraction * intensity
	for _, e := range g.Edges {
		si, ok := idx[e.Source]
		if !ok {
			continue
		}
		ti, ok := idx[e.Target]
		if !ok || si == ti {
			continue
		}
		d := g.Nodes[ti].Position.Sub(g.Nodes[si].Position)
		if !d.Finite() {
			continue
		}
		// Linear in distance with no rest length.
		pull := d.Mul(k * e.Strength)
		force[si] = force[si].Add(pull)
		force[ti] = force[ti].Sub(pull)
	}
}

func (s *Simulator) gravitate(nodes []graph.Node, force []motion.Vec, center motion.Vec) {
	for i := range nodes {
		d := center.Sub(nodes[i].Position)
		if !d.Finite() {
			continue
		}
		force[i] = force[i].Add(d.Mul(s.Params.CenterGravity))
	}
}

func (s *Simulator) integrate(nodes []graph.Node, force []motion.Vec, width, height float64, center motion.Vec) {
	for i := range nodes {
		nd := &nodes[i]
		if nd.Fixed {
			nd.Velocity = motion.Vec{}
			continue
		}

		v := nd.Velocity.Add(force[i]).Mul(s.Params.Damping)
		if !v.Finite() {
			v = motion.Vec{}
		}

		p := nd.Position.Add(v)
		if !p.Finite() {
			p = center
		}
		clamped := motion.Vec{
			X: clamp(p.X, nd.Radius, width),
			Y: clamp(p.Y, nd.Radius, height),
		}
		// A wall absorbs the velocity along its axis so a node pressed
		// against it does not keep building momentum.
		if clamped.X != p.X {
			v.X = 0
		}
		if clamped.Y != p.Y {
			v.Y = 0
		}
		nd.Position = clamped
		nd.Velocity = v
	}
}

// clamp bounds x to [r, dim-r]. When the node is wider than the canvas the
// range is empty and x pins to the middle.
func clamp(x, r, dim float64) float64 {
	lo, hi := r, dim-r
	if lo > hi {
		return dim / 2
	}
	return math.Max(lo, math.Min(hi, x))
}

// KineticEnergy returns the sum of squared node velocities, a cheap measure
// of how far the layout is from settling.
func KineticEnergy(g *graph.Graph) float64 {
	var e float64
	for i := range g.Nodes {
		v := g.Nodes[i].Velocity
		e += v.X*v.X + v.Y*v.Y
	}
	return e
}
