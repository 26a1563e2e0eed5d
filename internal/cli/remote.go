package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lazypower/neurograph/internal/client"
)

var (
	rebuildAgent string
	rebuildDemo  bool
)

var modeCmd = &cobra.Command{
	Use:       "mode <ambient|interactive>",
	Short:     "Switch the running server's animation mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"ambient", "interactive"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient(cmd.Context())
		if err != nil {
			return err
		}
		mode, err := c.SetMode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s mode %s (movement %.1f, pulse %.1f, particles %.1f, glow %.1f)\n",
			good.Sprint("✓"), brand.Sprint(mode.Mode),
			mode.NodeMovement, mode.ConnectionPulse, mode.ParticleSpeed, mode.GlowIntensity)
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the running server's graph from the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient(cmd.Context())
		if err != nil {
			return err
		}
		res, err := c.Rebuild(cmd.Context(), rebuildAgent, rebuildDemo)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s rebuilt from %s: %d nodes, %d edges\n",
			good.Sprint("✓"), res.Source, res.Nodes, res.Edges)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildAgent, "agent", "", "only load records belonging to this agent id")
	rebuildCmd.Flags().BoolVar(&rebuildDemo, "demo", false, "switch to the demo graph")
}

// remoteClient targets the server address from config, or $NEUROGRAPH_URL,
// and fails early when nothing answers there.
func remoteClient(ctx context.Context) (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c := client.New(cfg.ListenAddr())
	if !c.Healthy(ctx) {
		return nil, errors.Errorf("no neurograph server at %s (start one with `neurograph serve`)", c.URL())
	}
	return c, nil
}
