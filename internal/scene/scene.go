// Package scene owns one live, animated graph. It is the single caller that
// advances the layout and hands out copies to everyone else.
package scene

import (
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/layout"
	"github.com/lazypower/neurograph/internal/observability"
)

// Source says where the current graph came from.
type Source string

const (
	SourceEmpty   Source = "empty"
	SourceDemo    Source = "demo"
	SourceRecords Source = "records"
)

// Options configure a Scene.
type Options struct {
	Width     float64
	Height    float64
	Params    layout.Params
	Mode      layout.ModeConfig
	DemoCount int
	// Seed for node placement and wiring; 0 picks one at random.
	Seed   uint64
	Logger *zap.Logger
}

// Scene serialises stepping, rebuilding and reading a graph.
type Scene struct {
	mu        sync.Mutex
	sim       *layout.Simulator
	g         *graph.Graph
	mode      layout.ModeConfig
	width     float64
	height    float64
	demoCount int
	frame     uint64
	source    Source
	rng       *rand.Rand
	logger    *zap.Logger
}

// Snapshot is a deep copy of the scene at one frame.
type Snapshot struct {
	Frame  uint64            `json:"frame"`
	Source Source            `json:"source"`
	Mode   layout.ModeConfig `json:"mode"`
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
	Energy float64           `json:"energy"`
	Nodes  []graph.Node      `json:"nodes"`
	Edges  []graph.Edge      `json:"edges"`
}

// Graph returns the snapshot's nodes and edges as a Graph.
func (s Snapshot) Graph() *graph.Graph {
	return &graph.Graph{Nodes: s.Nodes, Edges: s.Edges}
}

// New returns an empty scene; call Load or LoadDemo to populate it.
func New(opts Options) *Scene {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	if opts.Mode.Mode == "" {
		opts.Mode = layout.Ambient()
	}
	if opts.Params == (layout.Params{}) {
		opts.Params = layout.DefaultParams()
	}
	return &Scene{
		sim:       layout.New(opts.Params),
		g:         &graph.Graph{},
		mode:      opts.Mode,
		width:     opts.Width,
		height:    opts.Height,
		demoCount: opts.DemoCount,
		source:    SourceEmpty,
		rng:       rand.New(rand.NewPCG(seed, seed>>1|1)),
		logger:    observability.OrNop(opts.Logger),
	}
}

// Step advances the layout one frame and returns the new frame number.
func (s *Scene) Step() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.Step(s.g, s.width, s.height, s.mode)
	s.frame++
	return s.frame
}

// Load rebuilds the graph from recs, falling back to the demo graph when
// recs has no records. The layout restarts from fresh positions.
func (s *Scene) Load(recs graph.Records) Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recs.Empty() {
		s.loadDemoLocked()
		return s.source
	}
	s.replaceLocked(graph.Build(recs, s.width, s.height, s.rng), SourceRecords)
	return s.source
}

// LoadDemo replaces the graph with a synthetic one.
func (s *Scene) LoadDemo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadDemoLocked()
}

func (s *Scene) loadDemoLocked() {
	s.replaceLocked(graph.BuildDemo(s.width, s.height, s.demoCount, s.rng), SourceDemo)
}

func (s *Scene) replaceLocked(g *graph.Graph, src Source) {
	s.g = g
	s.source = src
	s.frame = 0
	s.logger.Info("scene rebuilt",
		zap.String("source", string(src)),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("edges", len(g.Edges)))
}

// SetMode switches the intensity preset used by subsequent steps.
func (s *Scene) SetMode(m layout.ModeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode.Mode != m.Mode {
		s.logger.Debug("mode changed", zap.String("from", string(s.mode.Mode)), zap.String("to", string(m.Mode)))
	}
	s.mode = m
}

// Mode returns the active preset.
func (s *Scene) Mode() layout.ModeConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Energy returns the current kinetic energy of the layout.
func (s *Scene) Energy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.KineticEnergy(s.g)
}

// Snapshot copies the current state. Callers may keep or modify it freely.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.g.Clone()
	return Snapshot{
		Frame:  s.frame,
		Source: s.source,
		Mode:   s.mode,
		Width:  s.width,
		Height: s.height,
		Energy: layout.KineticEnergy(s.g),
		Nodes:  c.Nodes,
		Edges:  c.Edges,
	}
}
