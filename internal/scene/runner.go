package scene

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lazypower/neurograph/internal/observability"
)

// settledEnergy is the kinetic energy below which the layout counts as at
// rest for logging.
const settledEnergy = 1e-3

// Runner drives a Scene at a fixed frame rate.
type Runner struct {
	scene    *Scene
	interval time.Duration
	logger   *zap.Logger
}

// NewRunner returns a Runner that steps sc fps times per second.
func NewRunner(sc *Scene, fps int, logger *zap.Logger) *Runner {
	if fps <= 0 {
		fps = 30
	}
	return &Runner{
		scene:    sc,
		interval: time.Second / time.Duration(fps),
		logger:   observability.OrNop(logger),
	}
}

// Run steps the scene on every tick until ctx is cancelled. It returns nil
// on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("scene runner started", zap.Duration("interval", r.interval))
	settled := false
	for {
		select {
		case <-ticker.C:
			frame := r.scene.Step()
			e := r.scene.Energy()
			switch {
			case !settled && e < settledEnergy && frame > 1:
				settled = true
				r.logger.Info("layout settled", zap.Uint64("frame", frame), zap.Float64("energy", e))
			case settled && e >= settledEnergy:
				settled = false
				r.logger.Debug("layout disturbed", zap.Uint64("frame", frame), zap.Float64("energy", e))
			}
		case <-ctx.Done():
			r.logger.Info("scene runner stopped")
			return nil
		}
	}
}
