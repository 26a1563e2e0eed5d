package graph

import (
	"fmt"
)

// DefaultDemoCount is the demo graph size used when callers pass no count.
const DefaultDemoCount = 15

// demoCycle weights the demo toward experiences the way a populated dataset
// is: three experiences, two patterns and one knowledge node per six.
var demoCycle = [...]NodeType{
	TypeExperience,
	TypePattern,
	TypeExperience,
	TypeKnowledge,
	TypeExperience,
	TypePattern,
}

var demoLabels = map[NodeType][]string{
	TypeExperience: {"Answered billing question", "Escalated outage report", "Resolved login loop", "Clarified refund policy"},
	TypePattern:    {"Users retry after timeouts", "Refunds peak on Mondays", "Login issues follow deploys"},
	TypeKnowledge:  {"Check status page first", "Offer refund before escalation"},
}

// BuildDemo returns a synthetic graph of count nodes for when no records
// exist. Each node after the first links back to a uniformly chosen earlier
// node with probability 0.7, which yields a sparse tree-like graph. The
// result always has at least one edge when count > 1. A count below 1 uses
// DefaultDemoCount.
func BuildDemo(width, height float64, count int, rng Rand) *Graph {
	if count < 1 {
		count = DefaultDemoCount
	}
	pad := padding(width, height)

	g := &Graph{Nodes: make([]Node, 0, count)}
	for i := 0; i < count; i++ {
		t := demoCycle[i%len(demoCycle)]
		labels := demoLabels[t]
		v := 0.3 + rng.Float64()*0.7

		g.Nodes = append(g.Nodes, newNode(t, demoID(i), labels[(i/len(demoCycle))%len(labels)],
			v, uniform(rng, width, height, pad), false))

		if i > 0 && rng.Float64() > 0.3 {
			g.Edges = append(g.Edges, Edge{
				Source:   demoID(i),
				Target:   demoID(rng.IntN(i)),
				Strength: 0.3 + rng.Float64()*0.7,
			})
		}
	}

	if count > 1 && len(g.Edges) == 0 {
		g.Edges = append(g.Edges, Edge{Source: demoID(1), Target: demoID(0), Strength: 0.5})
	}
	return g
}

func demoID(i int) string {
	return fmt.Sprintf("demo-%d", i)
}
