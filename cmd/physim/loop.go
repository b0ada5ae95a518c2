// cmd/physim/loop.go
package main

import (
	"context"
	"time"

	"github.com/opd-ai/go-physim/pkg/config"
	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/logging"
	"github.com/opd-ai/go-physim/pkg/render"
	enginescene "github.com/opd-ai/go-physim/pkg/render/engo"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	statsInterval = 5 * time.Second
)

// stepLoop turns wall-clock ticks into fixed simulation steps. Elapsed
// time per tick is clamped to the configured maximum delta.
type stepLoop struct {
	fixed    *enginescene.PhysicsSystem
	maxDelta float64
	last     time.Time
}

func newStepLoop(sim enginescene.Stepper, cfg config.SimulationConfig, start time.Time) *stepLoop {
	return &stepLoop{
		fixed:    enginescene.NewPhysicsSystem(sim, cfg.TimeStep, enginescene.DefaultMaxSubsteps),
		maxDelta: cfg.MaxDeltaTime,
		last:     start,
	}
}

// Tick advances the simulation by the time since the previous tick.
func (l *stepLoop) Tick(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	l.last = now
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > l.maxDelta {
		elapsed = l.maxDelta
	}
	l.fixed.Update(float32(elapsed))
}

// SetPaused stops stepping without losing the clock.
func (l *stepLoop) SetPaused(paused bool) { l.fixed.SetPaused(paused) }

// Paused reports whether stepping is suspended.
func (l *stepLoop) Paused() bool { return l.fixed.Paused() }

// runHeadless steps the engine with no display. With steps > 0 it runs
// that many fixed steps back to back and returns.
func runHeadless(ctx context.Context, eng *engine.Engine, cfg config.SimulationConfig, steps int, logger *logging.Logger) error {
	out := render.NewNullRenderer(logger)
	var snaps []engine.ShapeSnapshot

	if steps > 0 {
		start := time.Now()
		for i := 0; i < steps; i++ {
			if ctx.Err() != nil {
				break
			}
			eng.Step(cfg.TimeStep)
			snaps = eng.Snapshots(snaps[:0])
			render.Frame(out, snaps)
		}
		logStats(ctx, logger, eng.Stats(), "elapsed", time.Since(start))
		return nil
	}

	loop := newStepLoop(eng, cfg, time.Now())
	frames := time.NewTicker(frameInterval)
	defer frames.Stop()
	stats := time.NewTicker(statsInterval)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			logStats(ctx, logger, eng.Stats())
			return nil
		case now := <-frames.C:
			loop.Tick(now)
			snaps = eng.Snapshots(snaps[:0])
			render.Frame(out, snaps)
		case <-stats.C:
			logStats(ctx, logger, eng.Stats())
		}
	}
}

func logStats(ctx context.Context, logger *logging.Logger, s engine.Stats, extra ...any) {
	args := []any{
		"frame", s.Frame,
		"shapes", s.Shapes,
		"collision_checks", s.CollisionChecks,
		"collisions", s.ActualCollisions,
		"avg_collision_dt", s.AverageCollisionTime,
		"spatial_cells", s.SpatialCells,
		"hot_cells", s.HotCells,
		"predictions", s.Predictions,
		"workers", s.Workers,
	}
	logger.Info(ctx, "simulation stats", append(args, extra...)...)
}
