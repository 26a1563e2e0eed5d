package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lazypower/neurograph/internal/layout"
)

// EnvPath overrides the config file location.
const EnvPath = "NEUROGRAPH_CONFIG"

// Config holds all neurograph configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Canvas     CanvasConfig     `toml:"canvas"`
	Simulation SimulationConfig `toml:"simulation"`
	Log        LogConfig        `toml:"log"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
	// AllowedOrigins lists browser origins allowed to call the API.
	AllowedOrigins []string `toml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CanvasConfig is the layout area every build and step is sized for.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type SimulationConfig struct {
	FPS       int    `toml:"fps"`
	Mode      string `toml:"mode"` // "ambient" or "interactive"
	DemoCount int    `toml:"demo_count"`
	Seed      uint64 `toml:"seed"` // 0 picks a random seed at startup

	Physics layout.Params `toml:"physics"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // "console" or "json"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:           "127.0.0.1",
			Port:           37778,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Canvas: CanvasConfig{
			Width:  1200,
			Height: 800,
		},
		Simulation: SimulationConfig{
			FPS:       30,
			Mode:      string(layout.ModeAmbient),
			DemoCount: 15,
			Physics:   layout.DefaultParams(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DefaultPath returns ~/.neurograph/config.toml, or $NEUROGRAPH_CONFIG if set.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get home dir")
	}
	return filepath.Join(home, ".neurograph", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create config file")
	}
	defer f.Close()

	return errors.Wrap(toml.NewEncoder(f).Encode(cfg), "encode config")
}

// Validate rejects values the simulator cannot run with.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.Errorf("canvas must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Simulation.FPS <= 0 || c.Simulation.FPS > 240 {
		return errors.Errorf("simulation.fps must be in 1..240, got %d", c.Simulation.FPS)
	}
	if _, err := layout.ParseMode(c.Simulation.Mode); err != nil {
		return errors.Wrap(err, "simulation.mode")
	}
	if d := c.Simulation.Physics.Damping; d <= 0 || d >= 1 {
		return errors.Errorf("simulation.physics.damping must be in (0,1), got %g", d)
	}
	return nil
}
