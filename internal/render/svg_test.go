package render

import (
	"bytes"
	"encoding/xml"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/layout"
)

// countElements parses the document and tallies element names.
func countElements(t *testing.T, doc []byte) map[string]int {
	t.Helper()
	counts := map[string]int{}
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if se, ok := tok.(xml.StartElement); ok {
			counts[se.Name.Local]++
		}
	}
	return counts
}

func TestFrameDemoGraph(t *testing.T) {
	g := graph.BuildDemo(800, 600, 10, rand.New(rand.NewPCG(1, 2)))

	var buf bytes.Buffer
	require.NoError(t, Frame(&buf, g, 800, 600, layout.Interactive(), 1.25, DefaultOptions()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, `width="800"`)

	counts := countElements(t, buf.Bytes())
	assert.Equal(t, 1, counts["svg"])
	// One quadratic path per edge.
	assert.Equal(t, len(g.Edges), counts["path"])
	// Every node draws a body; labels are on.
	assert.Equal(t, len(g.Nodes), counts["text"])
	assert.GreaterOrEqual(t, counts["circle"], len(g.Nodes)+len(g.Edges))
}

func TestFrameSkipsDanglingEdges(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "a", Radius: 5, Color: "#fff"}},
		Edges: []graph.Edge{{Source: "a", Target: "missing", Strength: 1}},
	}
	var buf bytes.Buffer
	opts := Options{Curvature: 0.2}
	require.NoError(t, Frame(&buf, g, 100, 100, layout.Ambient(), 0, opts))

	counts := countElements(t, buf.Bytes())
	assert.Zero(t, counts["path"])
	assert.Zero(t, counts["text"])
}

func TestFrameEscapesLabels(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{{ID: "a", Label: "<b>&co", Radius: 5}}}
	var buf bytes.Buffer
	require.NoError(t, Frame(&buf, g, 100, 100, layout.Ambient(), 0, DefaultOptions()))
	countElements(t, buf.Bytes())
	assert.NotContains(t, buf.String(), "<b>")
}

func TestPhaseOfStable(t *testing.T) {
	assert.Equal(t, phaseOf("demo-1"), phaseOf("demo-1"))
	p := phaseOf("anything")
	assert.GreaterOrEqual(t, p, 0.0)
	assert.Less(t, p, 1.0)
}
