// Package render draws graph frames as SVG. Edge curves, particles and
// glows are driven by the motion helpers and the active mode's knobs.
package render

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/pkg/errors"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/layout"
	"github.com/lazypower/neurograph/internal/motion"
)

const (
	background = "#1e1e2e"
	edgeColor  = "#6b80bf"
	textColor  = "#f8f8f2"
)

// Options tune what Frame draws.
type Options struct {
	// Curvature bows every edge; 0 draws straight lines.
	Curvature float64
	// Labels draws node labels under each node.
	Labels bool
	// Particles draws one travelling dot per edge.
	Particles bool
}

// DefaultOptions are used by the server's SVG endpoint.
func DefaultOptions() Options {
	return Options{Curvature: 0.15, Labels: true, Particles: true}
}

// Frame writes g as a width x height SVG at animation time t (seconds).
// Edges whose endpoints are missing are not drawn.
func Frame(w io.Writer, g *graph.Graph, width, height float64, mode layout.ModeConfig, t float64, opts Options) error {
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)

	cw, ch := int(math.Round(width)), int(math.Round(height))
	canvas.Start(cw, ch)
	canvas.Title("neurograph")
	canvas.Rect(0, 0, cw, ch, "fill:"+background)

	idx := g.Index()

	canvas.Gstyle("fill:none")
	for i, e := range g.Edges {
		si, ok := idx[e.Source]
		if !ok {
			continue
		}
		ti, ok := idx[e.Target]
		if !ok {
			continue
		}
		p0, p2 := g.Nodes[si].Position, g.Nodes[ti].Position
		p1 := motion.ControlPoint(p0, p2, opts.Curvature)

		phase := phaseOf(e.Source + ">" + e.Target)
		pulse := motion.PulseValue(t, 0.5*mode.ConnectionPulse, phase)
		opacity := clamp01(0.15 + 0.6*e.Strength*(0.5+0.5*pulse))

		canvas.Qbez(px(p0.X), px(p0.Y), px(p1.X), px(p1.Y), px(p2.X), px(p2.Y),
			fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:%.3f", edgeColor, 0.5+1.5*e.Strength, opacity))

		if opts.Particles {
			// Each edge's particle starts at a different offset so they do
			// not travel in lockstep.
			u := math.Mod(t*0.25*mode.ParticleSpeed+float64(i)*0.137, 1)
			if u < 0 {
				u++
			}
			dot := motion.BezierPoint(motion.EaseInOut(u), p0, p1, p2)
			canvas.Circle(px(dot.X), px(dot.Y), 2, fmt.Sprintf("fill:%s;fill-opacity:%.3f", textColor, opacity))
		}
	}
	canvas.Gend()

	for _, n := range g.Nodes {
		x, y := px(n.Position.X), px(n.Position.Y)
		r := int(math.Max(1, math.Round(n.Radius)))

		glow := mode.GlowIntensity * (0.3 + 0.7*n.Value) * motion.PulseValue(t, 0.8, phaseOf(n.ID))
		if glow > 0.01 {
			canvas.Circle(x, y, int(math.Round(float64(r)*1.8)),
				fmt.Sprintf("fill:%s;fill-opacity:%.3f", n.Color, clamp01(0.35*glow)))
		}
		canvas.Circle(x, y, r, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", n.Color, background))

		if opts.Labels && n.Label != "" {
			canvas.Text(x, y+r+12, n.Label,
				fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif;text-anchor:middle", textColor))
		}
	}

	canvas.End()
	return errors.Wrap(bw.Flush(), "flush svg")
}

// phaseOf spreads pulses across elements deterministically.
func phaseOf(key string) float64 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return float64(h.Sum32()%1000) / 1000
}

func px(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
