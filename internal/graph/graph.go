// Package graph builds the node/edge model the layout simulator animates,
// either from learning records or synthetically for an empty state.
package graph

import (
	"github.com/lazypower/neurograph/internal/motion"
)

// NodeType is the tier a node represents.
type NodeType string

const (
	TypeExperience NodeType = "experience"
	TypePattern    NodeType = "pattern"
	TypeKnowledge  NodeType = "knowledge"
	TypeAgent      NodeType = "agent"
)

// baseRadius is strictly increasing down the hierarchy so a node's tier is
// visible regardless of its value.
var baseRadius = map[NodeType]float64{
	TypeExperience: 6,
	TypePattern:    9,
	TypeKnowledge:  12,
	TypeAgent:      18,
}

// colorClass maps a tier to the colour renderers draw it with.
var colorClass = map[NodeType]string{
	TypeExperience: "#8be9fd",
	TypePattern:    "#bd93f9",
	TypeKnowledge:  "#50fa7b",
	TypeAgent:      "#ffb86c",
}

// Radius returns the visual radius for a node of the given type and value.
// Unknown types use the experience base.
func Radius(t NodeType, value float64) float64 {
	base, ok := baseRadius[t]
	if !ok {
		base = baseRadius[TypeExperience]
	}
	return base + value*base*0.5
}

// Color returns the colour class of a node type.
func Color(t NodeType) string {
	if c, ok := colorClass[t]; ok {
		return c
	}
	return colorClass[TypeExperience]
}

// Node is a visual vertex.
type Node struct {
	ID       string     `json:"id"`
	Type     NodeType   `json:"type"`
	Label    string     `json:"label"`
	Position motion.Vec `json:"position"`
	Velocity motion.Vec `json:"velocity"`
	Radius   float64    `json:"radius"`
	Value    float64    `json:"value"`
	Fixed    bool       `json:"fixed,omitempty"`
	Color    string     `json:"color"`
}

// Edge connects two nodes by id. Direction carries meaning for readers only.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
}

// Graph is the node and edge set of one visualization session.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Index maps node ids to their position in g.Nodes.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		idx[g.Nodes[i].ID] = i
	}
	return idx
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(c.Nodes, g.Nodes)
	copy(c.Edges, g.Edges)
	return c
}

// Degree counts the edges touching each node id. Dangling endpoints are
// counted too; callers decide whether an id exists.
func (g *Graph) Degree() map[string]int {
	deg := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		deg[e.Source]++
		deg[e.Target]++
	}
	return deg
}

// CountByType tallies nodes per tier.
func (g *Graph) CountByType() map[NodeType]int {
	counts := make(map[NodeType]int, 4)
	for i := range g.Nodes {
		counts[g.Nodes[i].Type]++
	}
	return counts
}

// Rand is the random source the builders draw from. *rand.Rand from
// math/rand/v2 satisfies it; tests pass a seeded one.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// pick returns k distinct indices from [0,n) in random order.
func pick(rng Rand, n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: only the first k slots are shuffled.
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
