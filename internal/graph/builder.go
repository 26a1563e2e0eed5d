package graph

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/lazypower/neurograph/internal/motion"
)

const (
	// Padding keeps spawned nodes off the canvas boundary.
	Padding = 50.0
	// knowledgeJitter is how far knowledge nodes may spawn from the centre.
	knowledgeJitter = 50.0
	// maxLabelRunes caps label length before an ellipsis is appended.
	maxLabelRunes = 32
	// defaultValue stands in for a missing importance or confidence.
	defaultValue = 0.5

	maxPatternLinks   = 3
	maxKnowledgeLinks = 2
	agentLinkStrength = 0.3
)

// Experience is a fine-grained learning record.
type Experience struct {
	ID         string   `json:"id"`
	Summary    string   `json:"summary"`
	Importance *float64 `json:"importance,omitempty"`
}

// Pattern is an aggregate over experiences.
type Pattern struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// Knowledge is a distilled record.
type Knowledge struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Agent owns a dataset and is drawn as a fixed hub.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Records is everything Build consumes. Agent is optional.
type Records struct {
	Agent       *Agent       `json:"agent,omitempty"`
	Experiences []Experience `json:"experiences"`
	Patterns    []Pattern    `json:"patterns"`
	Knowledge   []Knowledge  `json:"knowledge"`
}

// Empty reports whether r has no tier records. An agent alone does not count.
func (r Records) Empty() bool {
	return len(r.Experiences) == 0 && len(r.Patterns) == 0 && len(r.Knowledge) == 0
}

// Build maps learning records onto a fresh Graph sized for a width x height
// canvas. The shape (node count, types, edge fan-out limits) is fully
// determined by the records; positions and which nodes get linked come from
// rng. Build never modifies recs.
func Build(recs Records, width, height float64, rng Rand) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, len(recs.Experiences)+len(recs.Patterns)+len(recs.Knowledge)+1),
	}
	pad := padding(width, height)
	center := motion.Vec{X: width / 2, Y: height / 2}

	// Record ids are only unique per table in practice; repeats get a suffix
	// so node ids stay unique within the graph.
	seen := make(map[string]bool)
	unique := func(id string, i int) string {
		if seen[id] {
			id = fmt.Sprintf("%s~%d", id, i)
		}
		seen[id] = true
		return id
	}

	if recs.Agent != nil {
		g.Nodes = append(g.Nodes, newNode(TypeAgent,
			unique(nodeID(TypeAgent, recs.Agent.ID, 0), 0),
			label(TypeAgent, recs.Agent.Name, 0),
			1, center, true))
	}

	var experiences, patterns []string

	for i, e := range recs.Experiences {
		id := unique(nodeID(TypeExperience, e.ID, i), i)
		g.Nodes = append(g.Nodes, newNode(TypeExperience, id, label(TypeExperience, e.Summary, i),
			value(e.Importance), uniform(rng, width, height, pad), false))
		experiences = append(experiences, id)
	}

	for i, p := range recs.Patterns {
		id := unique(nodeID(TypePattern, p.ID, i), i)
		g.Nodes = append(g.Nodes, newNode(TypePattern, id, label(TypePattern, p.Description, i),
			value(p.Confidence), uniform(rng, width, height, pad), false))
		g.link(rng, id, experiences, maxPatternLinks)
		patterns = append(patterns, id)
	}

	for i, k := range recs.Knowledge {
		id := unique(nodeID(TypeKnowledge, k.ID, i), i)
		pos := motion.Vec{
			X: inside(center.X+(rng.Float64()*2-1)*knowledgeJitter, width, pad),
			Y: inside(center.Y+(rng.Float64()*2-1)*knowledgeJitter, height, pad),
		}
		g.Nodes = append(g.Nodes, newNode(TypeKnowledge, id, label(TypeKnowledge, k.Content, i),
			value(k.Confidence), pos, false))
		g.link(rng, id, patterns, maxKnowledgeLinks)
		if recs.Agent != nil {
			g.Edges = append(g.Edges, Edge{Source: g.Nodes[0].ID, Target: id, Strength: agentLinkStrength})
		}
	}

	return g
}

// link connects from to between 1 and limit distinct random members of pool.
func (g *Graph) link(rng Rand, from string, pool []string, limit int) {
	if len(pool) == 0 {
		return
	}
	n := 1 + rng.IntN(limit)
	for _, j := range pick(rng, len(pool), n) {
		g.Edges = append(g.Edges, Edge{
			Source:   from,
			Target:   pool[j],
			Strength: 0.5 + rng.Float64()*0.5,
		})
	}
}

func newNode(t NodeType, id, lbl string, v float64, pos motion.Vec, fixed bool) Node {
	return Node{
		ID:       id,
		Type:     t,
		Label:    lbl,
		Position: pos,
		Radius:   Radius(t, v),
		Value:    v,
		Fixed:    fixed,
		Color:    Color(t),
	}
}

// padding clamps Padding to half the smaller canvas dimension so degenerate
// canvases still produce in-bounds spawn points.
func padding(width, height float64) float64 {
	half := math.Min(width, height) / 2
	if half < 0 {
		return 0
	}
	return math.Min(Padding, half)
}

func uniform(rng Rand, width, height, pad float64) motion.Vec {
	return motion.Vec{
		X: pad + rng.Float64()*math.Max(width-2*pad, 0),
		Y: pad + rng.Float64()*math.Max(height-2*pad, 0),
	}
}

// inside bounds x to [pad, dim-pad], the same band uniform draws from.
func inside(x, dim, pad float64) float64 {
	return math.Max(pad, math.Min(math.Max(dim-pad, pad), x))
}

func value(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return defaultValue
	}
	return math.Max(0, math.Min(1, *v))
}

func nodeID(t NodeType, id string, i int) string {
	id = strings.TrimSpace(id)
	if id == "" {
		id = fmt.Sprintf("#%d", i)
	}
	return string(t) + ":" + id
}

func label(t NodeType, text string, i int) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return fmt.Sprintf("%s %d", t, i+1)
	}
	if utf8.RuneCountInString(text) <= maxLabelRunes {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:maxLabelRunes])) + "…"
}
