package layout

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode names a preset of animation intensities.
type Mode string

const (
	// ModeAmbient is used while nobody is interacting with the view.
	ModeAmbient Mode = "ambient"
	// ModeInteractive is used during active manipulation.
	ModeInteractive Mode = "interactive"
)

// ModeConfig bundles the intensity knobs of a mode. Only NodeMovement feeds
// the simulator; the rest are carried through for renderers.
type ModeConfig struct {
	Mode            Mode    `json:"mode" toml:"-"`
	NodeMovement    float64 `json:"node_movement" toml:"node_movement"`
	ConnectionPulse float64 `json:"connection_pulse" toml:"connection_pulse"`
	ParticleSpeed   float64 `json:"particle_speed" toml:"particle_speed"`
	GlowIntensity   float64 `json:"glow_intensity" toml:"glow_intensity"`
}

var presets = map[Mode]ModeConfig{
	ModeAmbient: {
		Mode:            ModeAmbient,
		NodeMovement:    0.3,
		ConnectionPulse: 0.4,
		ParticleSpeed:   0.5,
		GlowIntensity:   0.6,
	},
	ModeInteractive: {
		Mode:            ModeInteractive,
		NodeMovement:    1.0,
		ConnectionPulse: 1.0,
		ParticleSpeed:   1.5,
		GlowIntensity:   1.0,
	},
}

// Ambient returns the low-intensity preset.
func Ambient() ModeConfig { return presets[ModeAmbient] }

// Interactive returns the high-intensity preset.
func Interactive() ModeConfig { return presets[ModeInteractive] }

// ParseMode resolves a preset by name, case-insensitively.
func ParseMode(name string) (ModeConfig, error) {
	cfg, ok := presets[Mode(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return ModeConfig{}, errors.Errorf("unknown mode %q (want %q or %q)", name, ModeAmbient, ModeInteractive)
	}
	return cfg, nil
}
