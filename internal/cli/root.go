package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/neurograph/internal/config"
	"github.com/lazypower/neurograph/internal/observability"
	"github.com/lazypower/neurograph/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "neurograph",
	Short: "Force-directed memory graph layout and animation",
	Long: "Neurograph lays out an agent's experiences, patterns and knowledge as a living " +
		"force-directed graph and serves it over HTTP for renderers to draw.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.neurograph/config.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(rebuildCmd)
}

// loadConfig reads the config named by --config, $NEUROGRAPH_CONFIG or the
// default location, in that order.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Default(), err
		}
	}
	return config.Load(path)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
}

func openDB(cfg config.Config) (*store.DB, error) {
	path := cfg.Database.Path
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}
