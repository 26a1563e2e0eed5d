package graph

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/neurograph/internal/motion"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func f(v float64) *float64 { return &v }

func TestRadiusHierarchy(t *testing.T) {
	order := []NodeType{TypeExperience, TypePattern, TypeKnowledge, TypeAgent}
	for i := 1; i < len(order); i++ {
		assert.Less(t, baseRadius[order[i-1]], baseRadius[order[i]])
		assert.Less(t, Radius(order[i-1], 0), Radius(order[i], 0))
	}

	assert.Equal(t, 6.0, Radius(TypeExperience, 0))
	assert.Equal(t, 9.0, Radius(TypeExperience, 1))
	assert.Equal(t, 12.0+0.5*12*0.5, Radius(TypeKnowledge, 0.5))
}

func TestBuildExampleScenario(t *testing.T) {
	recs := Records{
		Experiences: []Experience{
			{ID: "e1", Summary: "first"},
			{ID: "e2", Summary: "second"},
			{ID: "e3", Summary: "third"},
		},
		Patterns: []Pattern{{ID: "p1", Description: "a pattern"}},
	}

	for seed := uint64(0); seed < 50; seed++ {
		g := Build(recs, 800, 600, seeded(seed))
		require.Len(t, g.Nodes, 4)

		counts := g.CountByType()
		assert.Equal(t, 3, counts[TypeExperience])
		assert.Equal(t, 1, counts[TypePattern])

		expIDs := map[string]bool{}
		for _, n := range g.Nodes {
			if n.Type == TypeExperience {
				expIDs[n.ID] = true
			}
		}

		require.GreaterOrEqual(t, len(g.Edges), 1)
		require.LessOrEqual(t, len(g.Edges), 3)
		targets := map[string]bool{}
		for _, e := range g.Edges {
			assert.Equal(t, "pattern:p1", e.Source)
			assert.True(t, expIDs[e.Target], "edge target %q is not an experience", e.Target)
			assert.False(t, targets[e.Target], "duplicate link to %q", e.Target)
			targets[e.Target] = true
		}
	}
}

func TestBuildPositions(t *testing.T) {
	recs := Records{
		Experiences: make([]Experience, 40),
		Knowledge:   make([]Knowledge, 10),
	}
	g := Build(recs, 1000, 700, seeded(7))

	for _, n := range g.Nodes {
		switch n.Type {
		case TypeExperience:
			assert.GreaterOrEqual(t, n.Position.X, Padding)
			assert.LessOrEqual(t, n.Position.X, 1000-Padding)
			assert.GreaterOrEqual(t, n.Position.Y, Padding)
			assert.LessOrEqual(t, n.Position.Y, 700-Padding)
		case TypeKnowledge:
			assert.InDelta(t, 500, n.Position.X, knowledgeJitter)
			assert.InDelta(t, 350, n.Position.Y, knowledgeJitter)
		}
		assert.Equal(t, 0.0, n.Velocity.X)
		assert.Equal(t, 0.0, n.Velocity.Y)
	}

	// No patterns exist, so knowledge nodes have nothing to link to.
	assert.Empty(t, g.Edges)
}

func TestBuildKnowledgeLinks(t *testing.T) {
	recs := Records{
		Patterns:  []Pattern{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Knowledge: []Knowledge{{ID: "k", Content: "distilled"}},
	}
	for seed := uint64(0); seed < 30; seed++ {
		g := Build(recs, 800, 600, seeded(seed))
		n := 0
		for _, e := range g.Edges {
			if e.Source == "knowledge:k" {
				assert.True(t, strings.HasPrefix(e.Target, "pattern:"))
				n++
			}
		}
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 2)
	}
}

func TestBuildDefaultsAndLabels(t *testing.T) {
	long := strings.Repeat("word ", 20)
	recs := Records{
		Experiences: []Experience{
			{ID: "x", Summary: ""},
			{ID: "y", Summary: long, Importance: f(2)},
			{ID: "", Summary: "  spaced\n out  ", Importance: f(-1)},
		},
	}
	g := Build(recs, 800, 600, seeded(1))
	require.Len(t, g.Nodes, 3)

	assert.Equal(t, "experience 1", g.Nodes[0].Label)
	assert.Equal(t, defaultValue, g.Nodes[0].Value)

	assert.True(t, strings.HasSuffix(g.Nodes[1].Label, "…"))
	assert.Equal(t, 1.0, g.Nodes[1].Value)

	assert.Equal(t, "spaced out", g.Nodes[2].Label)
	assert.Equal(t, 0.0, g.Nodes[2].Value)
	assert.Equal(t, "experience:#2", g.Nodes[2].ID)
}

func TestBuildUniqueIDs(t *testing.T) {
	recs := Records{
		Experiences: []Experience{{ID: "dup"}, {ID: "dup"}, {ID: "dup"}},
		Patterns:    []Pattern{{ID: "dup"}},
	}
	g := Build(recs, 800, 600, seeded(2))
	assert.Len(t, g.Index(), len(g.Nodes))
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	imp := 0.9
	recs := Records{
		Experiences: []Experience{{ID: "e", Summary: "s", Importance: &imp}},
		Patterns:    []Pattern{{ID: "p", Description: "d"}},
	}
	before := recs.Experiences[0]
	Build(recs, 800, 600, seeded(3))
	assert.Equal(t, before, recs.Experiences[0])
	assert.Equal(t, 0.9, imp)
	assert.Nil(t, recs.Patterns[0].Confidence)
}

func TestBuildAgentHub(t *testing.T) {
	recs := Records{
		Agent:     &Agent{ID: "bot", Name: "Support Bot"},
		Patterns:  []Pattern{{ID: "p"}},
		Knowledge: []Knowledge{{ID: "k1"}, {ID: "k2"}},
	}
	g := Build(recs, 800, 600, seeded(4))

	hub := g.Nodes[0]
	assert.Equal(t, TypeAgent, hub.Type)
	assert.True(t, hub.Fixed)
	assert.Equal(t, 400.0, hub.Position.X)
	assert.Equal(t, 300.0, hub.Position.Y)
	assert.Equal(t, Radius(TypeAgent, 1), hub.Radius)

	assert.Equal(t, 2, g.Degree()["agent:bot"])
}

func TestBuildDegenerateCanvas(t *testing.T) {
	recs := Records{Experiences: make([]Experience, 5)}
	g := Build(recs, 0, 0, seeded(5))
	for _, n := range g.Nodes {
		assert.Equal(t, 0.0, n.Position.X)
		assert.Equal(t, 0.0, n.Position.Y)
	}

	// Padding shrinks to half the short side: 20 here.
	g = Build(recs, 60, 40, seeded(5))
	for _, n := range g.Nodes {
		assert.GreaterOrEqual(t, n.Position.X, 20.0)
		assert.LessOrEqual(t, n.Position.X, 40.0)
		assert.Equal(t, 20.0, n.Position.Y)
	}
}

func TestBuildKnowledgeStaysOnCanvas(t *testing.T) {
	recs := Records{
		Patterns:  []Pattern{{ID: "p"}},
		Knowledge: make([]Knowledge, 20),
	}
	for seed := uint64(0); seed < 20; seed++ {
		g := Build(recs, 60, 40, seeded(seed))
		for _, n := range g.Nodes {
			if n.Type != TypeKnowledge {
				continue
			}
			assert.GreaterOrEqual(t, n.Position.X, 20.0, n.ID)
			assert.LessOrEqual(t, n.Position.X, 40.0, n.ID)
			assert.Equal(t, 20.0, n.Position.Y, n.ID)
		}

		g = Build(recs, 0, 0, seeded(seed))
		for _, n := range g.Nodes {
			assert.Equal(t, motion.Vec{}, n.Position, n.ID)
		}
	}

	// On a roomy canvas the jitter band around the centre is untouched.
	g := Build(recs, 800, 600, seeded(1))
	for _, n := range g.Nodes {
		if n.Type == TypeKnowledge {
			assert.InDelta(t, 400, n.Position.X, knowledgeJitter)
			assert.InDelta(t, 300, n.Position.Y, knowledgeJitter)
		}
	}
}

func TestBuildDemoShape(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		g := BuildDemo(800, 600, DefaultDemoCount, seeded(seed))
		require.Len(t, g.Nodes, 15)
		require.NotEmpty(t, g.Edges)

		for _, e := range g.Edges {
			src := demoIndex(t, e.Source)
			dst := demoIndex(t, e.Target)
			assert.Less(t, dst, src, "edge %s -> %s references a later node", e.Source, e.Target)
		}

		counts := g.CountByType()
		assert.Equal(t, 8, counts[TypeExperience])
		assert.Equal(t, 5, counts[TypePattern])
		assert.Equal(t, 2, counts[TypeKnowledge])
	}
}

func TestBuildDemoSmall(t *testing.T) {
	g := BuildDemo(800, 600, 1, seeded(1))
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)

	for seed := uint64(0); seed < 50; seed++ {
		g = BuildDemo(800, 600, 2, seeded(seed))
		require.Len(t, g.Edges, 1)
		assert.Equal(t, "demo-1", g.Edges[0].Source)
		assert.Equal(t, "demo-0", g.Edges[0].Target)
	}

	assert.Len(t, BuildDemo(800, 600, 0, seeded(1)).Nodes, DefaultDemoCount)
}

func TestClone(t *testing.T) {
	g := BuildDemo(800, 600, 6, seeded(9))
	c := g.Clone()
	c.Nodes[0].Position.X = -1
	c.Edges[0].Strength = 42
	assert.NotEqual(t, -1.0, g.Nodes[0].Position.X)
	assert.NotEqual(t, 42.0, g.Edges[0].Strength)
}

func TestPick(t *testing.T) {
	rng := seeded(11)
	for i := 0; i < 100; i++ {
		got := pick(rng, 5, 3)
		require.Len(t, got, 3)
		seen := map[int]bool{}
		for _, j := range got {
			assert.False(t, seen[j])
			assert.True(t, j >= 0 && j < 5)
			seen[j] = true
		}
	}
	assert.Len(t, pick(rng, 2, 3), 2)
}

func demoIndex(t *testing.T, id string) int {
	t.Helper()
	n, err := strconv.Atoi(strings.TrimPrefix(id, "demo-"))
	require.NoError(t, err)
	return n
}
