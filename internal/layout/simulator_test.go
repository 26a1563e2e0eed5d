package layout

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/motion"
)

const (
	testW = 800.0
	testH = 600.0
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func demo(seed uint64, count int) *graph.Graph {
	return graph.BuildDemo(testW, testH, count, seeded(seed))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func TestStepEmptyGraph(t *testing.T) {
	g := &graph.Graph{}
	Step(g, testW, testH, Ambient())
	assert.Empty(t, g.Nodes)
}

func TestStepStaysFinite(t *testing.T) {
	for _, mode := range []ModeConfig{Ambient(), Interactive()} {
		g := demo(1, 25)
		// Two nodes on top of each other exercise the distance floor.
		g.Nodes[1].Position = g.Nodes[0].Position
		sim := New(DefaultParams())
		for i := 0; i < 3000; i++ {
			sim.Step(g, testW, testH, mode)
		}
		for _, n := range g.Nodes {
			require.True(t, finite(n.Position.X) && finite(n.Position.Y), "node %s position %v", n.ID, n.Position)
			require.True(t, finite(n.Velocity.X) && finite(n.Velocity.Y), "node %s velocity %v", n.ID, n.Velocity)
		}
	}
}

func TestStepSingleNode(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{{ID: "solo", Radius: 5, Position: motion.Vec{X: 10, Y: 10}}}}
	for i := 0; i < 1500; i++ {
		Step(g, testW, testH, Interactive())
	}
	// Gravity alone pulls the node toward the centre.
	assert.InDelta(t, testW/2, g.Nodes[0].Position.X, 1)
	assert.InDelta(t, testH/2, g.Nodes[0].Position.Y, 1)
}

func TestStepRecoversFromNaN(t *testing.T) {
	g := demo(2, 10)
	g.Nodes[3].Position = motion.Vec{X: math.NaN(), Y: 100}
	g.Nodes[4].Velocity = motion.Vec{X: math.Inf(1), Y: 0}

	sim := New(DefaultParams())
	for i := 0; i < 50; i++ {
		sim.Step(g, testW, testH, Ambient())
	}
	for _, n := range g.Nodes {
		require.True(t, n.Position.Finite(), "node %s position %v", n.ID, n.Position)
		require.True(t, n.Velocity.Finite(), "node %s velocity %v", n.ID, n.Velocity)
	}
}

func TestBoundaryContainment(t *testing.T) {
	g := demo(3, 20)
	// Start some nodes far outside the canvas.
	g.Nodes[0].Position = motion.Vec{X: -5000, Y: 9000}
	g.Nodes[1].Position = motion.Vec{X: 1e6, Y: -1e6}

	sim := New(DefaultParams())
	for i := 0; i < 400; i++ {
		sim.Step(g, testW, testH, Interactive())
		for _, n := range g.Nodes {
			require.GreaterOrEqual(t, n.Position.X, n.Radius)
			require.LessOrEqual(t, n.Position.X, testW-n.Radius)
			require.GreaterOrEqual(t, n.Position.Y, n.Radius)
			require.LessOrEqual(t, n.Position.Y, testH-n.Radius)
		}
	}
}

func TestTinyCanvasPinsToMiddle(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{{ID: "a", Radius: 12, Position: motion.Vec{X: 3, Y: 40}}}}
	Step(g, 10, 100, Ambient())
	assert.Equal(t, 5.0, g.Nodes[0].Position.X)
	assert.GreaterOrEqual(t, g.Nodes[0].Position.Y, 12.0)
}

func TestFixedNodeInvariance(t *testing.T) {
	recs := graph.Records{
		Agent:       &graph.Agent{ID: "hub", Name: "hub"},
		Experiences: make([]graph.Experience, 6),
		Patterns:    make([]graph.Pattern, 3),
		Knowledge:   make([]graph.Knowledge, 2),
	}
	g := graph.Build(recs, testW, testH, seeded(4))

	// A fixed node sitting off-centre and partly out of bounds must not be
	// pulled in by gravity or the clamp.
	g.Nodes = append(g.Nodes, graph.Node{ID: "anchor", Fixed: true, Radius: 20, Position: motion.Vec{X: 5, Y: 5}})
	before := map[string]motion.Vec{}
	for _, n := range g.Nodes {
		if n.Fixed {
			before[n.ID] = n.Position
		}
	}
	require.Len(t, before, 2)

	sim := New(DefaultParams())
	for i := 0; i < 1000; i++ {
		sim.Step(g, testW, testH, Interactive())
	}
	for _, n := range g.Nodes {
		if n.Fixed {
			assert.Equal(t, before[n.ID], n.Position, "fixed node %s moved", n.ID)
			assert.Equal(t, motion.Vec{}, n.Velocity)
		}
	}
}

func TestFixedNodeStillRepels(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{
		{ID: "anchor", Fixed: true, Radius: 10, Position: motion.Vec{X: 400, Y: 300}},
		{ID: "free", Radius: 5, Position: motion.Vec{X: 420, Y: 300}},
	}}
	Step(g, testW, testH, Interactive())
	assert.Greater(t, g.Nodes[1].Velocity.X, 0.0, "free node should be pushed away from the anchor")
}

func TestDanglingEdgeTolerance(t *testing.T) {
	clean := demo(5, 12)
	dirty := clean.Clone()
	dirty.Edges = append(dirty.Edges,
		graph.Edge{Source: "demo-0", Target: "missing", Strength: 1},
		graph.Edge{Source: "ghost", Target: "demo-3", Strength: 1},
	)
	dirty.Edges = append([]graph.Edge{{Source: "nowhere", Target: "nobody", Strength: 0.7}}, dirty.Edges...)

	a, b := New(DefaultParams()), New(DefaultParams())
	for i := 0; i < 300; i++ {
		a.Step(clean, testW, testH, Ambient())
		b.Step(dirty, testW, testH, Ambient())
	}
	for i := range clean.Nodes {
		assert.Equal(t, clean.Nodes[i].Position, dirty.Nodes[i].Position)
		assert.Equal(t, clean.Nodes[i].Velocity, dirty.Nodes[i].Velocity)
	}
}

func TestDuplicateEdgesSum(t *testing.T) {
	pair := func(edges int) *graph.Graph {
		g := &graph.Graph{Nodes: []graph.Node{
			{ID: "a", Radius: 5, Position: motion.Vec{X: 200, Y: 300}},
			{ID: "b", Radius: 5, Position: motion.Vec{X: 600, Y: 300}},
		}}
		for i := 0; i < edges; i++ {
			g.Edges = append(g.Edges, graph.Edge{Source: "a", Target: "b", Strength: 1})
		}
		return g
	}
	p := Params{Attraction: 0.01, Damping: 1}
	one, two := pair(1), pair(2)
	New(p).Step(one, testW, testH, Interactive())
	New(p).Step(two, testW, testH, Interactive())

	assert.InDelta(t, 2*one.Nodes[0].Velocity.X, two.Nodes[0].Velocity.X, 1e-12)
	assert.Greater(t, one.Nodes[0].Velocity.X, 0.0)
	assert.Less(t, one.Nodes[1].Velocity.X, 0.0)
}

func TestRadiusUntouched(t *testing.T) {
	g := demo(6, 10)
	radii := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		radii[i] = n.Radius
	}
	for i := 0; i < 100; i++ {
		Step(g, testW, testH, Interactive())
	}
	for i, n := range g.Nodes {
		assert.Equal(t, radii[i], n.Radius)
	}
}

func windowMeans(energies []float64, window int) []float64 {
	var means []float64
	for start := 0; start+window <= len(energies); start += window {
		var sum float64
		for _, e := range energies[start : start+window] {
			sum += e
		}
		means = append(means, sum/float64(window))
	}
	return means
}

func TestConvergenceUnderDamping(t *testing.T) {
	const (
		steps  = 8000
		window = 200
	)
	for seed := uint64(0); seed < 5; seed++ {
		g := demo(seed, 15)
		sim := New(DefaultParams())

		energies := make([]float64, 0, steps)
		for i := 0; i < steps; i++ {
			sim.Step(g, testW, testH, Ambient())
			energies = append(energies, KineticEnergy(g))
		}

		// Individual windows may rise again while clusters untangle, but
		// the later half of the run carries less energy than the earlier.
		means := windowMeans(energies, window)
		half := len(means) / 2
		var early, late float64
		for _, m := range means[:half] {
			early += m
		}
		for _, m := range means[half:] {
			late += m
		}
		assert.Less(t, late, early, "seed %d: energy did not fall over the run", seed)

		first, last := means[0], means[len(means)-1]
		assert.Less(t, last, first/100, "seed %d: layout did not settle (first %.4g, last %.4g)", seed, first, last)
	}
}

func TestDampingAloneDrainsEnergy(t *testing.T) {
	g := demo(6, 12)
	for i := range g.Nodes {
		g.Nodes[i].Velocity = motion.Vec{X: float64(i%5) - 2, Y: float64(i%3) - 1}
	}
	sim := New(Params{Damping: 0.85})

	prev := KineticEnergy(g)
	for i := 0; i < 200; i++ {
		sim.Step(g, testW, testH, Interactive())
		e := KineticEnergy(g)
		require.LessOrEqual(t, e, prev, "step %d", i)
		prev = e
	}
	assert.Less(t, prev, 1e-9)
}

func TestFixedNonFiniteAnchorDoesNotFreezeLayout(t *testing.T) {
	g := demo(8, 10)
	g.Nodes = append(g.Nodes, graph.Node{
		ID: "hub", Type: graph.TypeAgent, Fixed: true, Radius: 18,
		Position: motion.Vec{X: math.NaN(), Y: 300},
	})
	g.Edges = append(g.Edges, graph.Edge{Source: "hub", Target: g.Nodes[0].ID, Strength: 0.3})

	start := make([]motion.Vec, len(g.Nodes))
	for i, n := range g.Nodes {
		start[i] = n.Position
	}

	sim := New(DefaultParams())
	for i := 0; i < 200; i++ {
		sim.Step(g, testW, testH, Interactive())
	}

	moved := 0
	for i, n := range g.Nodes {
		if n.Fixed {
			continue
		}
		require.True(t, n.Position.Finite(), n.ID)
		require.True(t, n.Velocity.Finite(), n.ID)
		if n.Position != start[i] {
			moved++
		}
	}
	assert.Equal(t, 10, moved)
}

func TestNonFiniteNodeExertsNoForce(t *testing.T) {
	clean := demo(9, 8)
	dirty := clean.Clone()
	dirty.Nodes = append(dirty.Nodes, graph.Node{
		ID: "lost", Radius: 6, Position: motion.Vec{X: math.Inf(-1), Y: 10},
	})
	dirty.Edges = append(dirty.Edges, graph.Edge{Source: "lost", Target: clean.Nodes[2].ID, Strength: 1})

	Step(clean, testW, testH, Interactive())
	Step(dirty, testW, testH, Interactive())

	for i := range clean.Nodes {
		assert.Equal(t, clean.Nodes[i].Position, dirty.Nodes[i].Position, clean.Nodes[i].ID)
	}
	// The bad node itself is recovered to the centre.
	assert.Equal(t, motion.Vec{X: testW / 2, Y: testH / 2}, dirty.Nodes[len(dirty.Nodes)-1].Position)
}

func TestNodeMovementScalesForces(t *testing.T) {
	calm := demo(7, 8)
	lively := calm.Clone()
	p := Params{Repulsion: 800, Attraction: 0.004, Damping: 0.85}
	New(p).Step(calm, testW, testH, Ambient())
	New(p).Step(lively, testW, testH, Interactive())

	assert.Less(t, KineticEnergy(calm), KineticEnergy(lively))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Interactive")
	require.NoError(t, err)
	assert.Equal(t, Interactive(), m)

	m, err = ParseMode(" ambient ")
	require.NoError(t, err)
	assert.Equal(t, ModeAmbient, m.Mode)

	_, err = ParseMode("frantic")
	assert.Error(t, err)

	assert.Less(t, Ambient().NodeMovement, Interactive().NodeMovement)
}
