package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/layout"
	"github.com/lazypower/neurograph/internal/render"
	"github.com/lazypower/neurograph/internal/scene"
)

var (
	layoutSteps int
	layoutDemo  bool
	layoutAgent string
	layoutMode  string
	layoutSeed  uint64
	layoutSVG   string
	layoutJSON  string
	layoutTime  float64
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Run the layout offline and report the result",
	Long: "Builds the graph from the record store (or the demo generator), steps the " +
		"simulation and prints a summary. The final frame can be written as SVG or JSON.",
	RunE: runLayout,
}

func init() {
	f := layoutCmd.Flags()
	f.IntVarP(&layoutSteps, "steps", "n", 300, "frames to simulate")
	f.BoolVar(&layoutDemo, "demo", false, "use the demo graph instead of the record store")
	f.StringVar(&layoutAgent, "agent", "", "only load records belonging to this agent id")
	f.StringVar(&layoutMode, "mode", "", "ambient or interactive (default from config)")
	f.Uint64Var(&layoutSeed, "seed", 0, "random seed (default from config)")
	f.StringVar(&layoutSVG, "svg", "", "write the final frame as SVG to this file")
	f.StringVar(&layoutJSON, "json", "", "write the final snapshot as JSON to this file")
	f.Float64Var(&layoutTime, "t", 0, "animation time in seconds for the SVG frame")
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if layoutSteps < 0 {
		return errors.Errorf("--steps must not be negative, got %d", layoutSteps)
	}

	modeName := cfg.Simulation.Mode
	if layoutMode != "" {
		modeName = layoutMode
	}
	mode, err := layout.ParseMode(modeName)
	if err != nil {
		return err
	}
	seed := cfg.Simulation.Seed
	if layoutSeed != 0 {
		seed = layoutSeed
	}

	sc := scene.New(scene.Options{
		Width:     cfg.Canvas.Width,
		Height:    cfg.Canvas.Height,
		Params:    cfg.Simulation.Physics,
		Mode:      mode,
		DemoCount: cfg.Simulation.DemoCount,
		Seed:      seed,
	})

	if layoutDemo {
		sc.LoadDemo()
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return errors.Wrap(err, "open database")
		}
		recs, err := db.LoadRecords(layoutAgent)
		db.Close()
		if err != nil {
			return errors.Wrap(err, "load records")
		}
		sc.Load(recs)
	}

	start := time.Now()
	for i := 0; i < layoutSteps; i++ {
		sc.Step()
	}
	elapsed := time.Since(start)
	snap := sc.Snapshot()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n\n", brand.Sprint("neurograph"), subtle.Sprintf("%s layout, %s mode", snap.Source, snap.Mode.Mode))
	printSummary(out, snap)
	fmt.Fprintln(out)

	energy := fmt.Sprintf("%.3g", snap.Energy)
	if snap.Energy < 1e-3 {
		energy = good.Sprint(energy)
	} else {
		energy = warn.Sprint(energy)
	}
	fmt.Fprintf(out, "  %d frames in %s, kinetic energy %s\n", snap.Frame, elapsed.Round(time.Microsecond), energy)

	if layoutSVG != "" {
		if err := writeSVG(layoutSVG, snap, layoutTime); err != nil {
			return err
		}
		fmt.Fprintf(out, "  svg: %s\n", layoutSVG)
	}
	if layoutJSON != "" {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode snapshot")
		}
		if err := os.WriteFile(layoutJSON, data, 0o644); err != nil {
			return errors.Wrap(err, "write json")
		}
		fmt.Fprintf(out, "  json: %s\n", layoutJSON)
	}
	return nil
}

func printSummary(w io.Writer, snap scene.Snapshot) {
	g := snap.Graph()
	counts := g.CountByType()
	degree := g.Degree()

	headers := []string{"TYPE", "NODES", "RADIUS", "AVG DEGREE", "COLOUR"}
	var plain, styled [][]string
	for _, t := range []graph.NodeType{graph.TypeAgent, graph.TypeKnowledge, graph.TypePattern, graph.TypeExperience} {
		n := counts[t]
		if n == 0 {
			continue
		}
		var radius float64
		var deg int
		for _, node := range g.Nodes {
			if node.Type == t {
				radius += node.Radius
				deg += degree[node.ID]
			}
		}
		row := []string{
			string(t),
			fmt.Sprint(n),
			fmt.Sprintf("%.1f", radius/float64(n)),
			fmt.Sprintf("%.2f", float64(deg)/float64(n)),
			graph.Color(t),
		}
		plain = append(plain, row)
		styled = append(styled, append(append([]string{}, row[:4]...), swatch(row[4])))
	}
	plain = append(plain, []string{"edges", fmt.Sprint(len(g.Edges)), "", "", ""})
	styled = append(styled, []string{subtle.Sprint("edges"), fmt.Sprint(len(g.Edges)), "", "", ""})

	printTable(w, headers, plain, styled)
}

func writeSVG(path string, snap scene.Snapshot, t float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create svg")
	}
	defer f.Close()
	return render.Frame(f, snap.Graph(), snap.Width, snap.Height, snap.Mode, t, render.DefaultOptions())
}
