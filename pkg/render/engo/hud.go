// pkg/render/engo/hud.go
package engo

import (
	"context"
	"fmt"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/logging"
)

// DefaultHUDInterval is how often the HUD refreshes, in seconds.
const DefaultHUDInterval = 1.0

// StatsSource reports engine counters.
type StatsSource interface {
	Stats() engine.Stats
}

// HUDSystem periodically samples engine statistics and formats them as
// overlay lines. Lines are logged at debug level on each refresh.
type HUDSystem struct {
	source   StatsSource
	logger   *logging.Logger
	interval float32
	elapsed  float32
	lines    []string
	stats    engine.Stats
}

// NewHUDSystem creates a HUD refreshing every interval seconds. A nil
// logger discards output.
func NewHUDSystem(source StatsSource, logger *logging.Logger, interval float32) *HUDSystem {
	if logger == nil {
		logger = logging.NewNop()
	}
	if interval <= 0 {
		interval = DefaultHUDInterval
	}
	return &HUDSystem{
		source:   source,
		logger:   logger,
		interval: interval,
	}
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update refreshes the overlay once per interval.
func (hud *HUDSystem) Update(dt float32) {
	hud.elapsed += dt
	if hud.lines != nil && hud.elapsed < hud.interval {
		return
	}
	hud.elapsed = 0
	hud.Refresh()
}

// Refresh samples the source immediately.
func (hud *HUDSystem) Refresh() {
	hud.stats = hud.source.Stats()
	hud.lines = FormatStats(hud.stats)
	hud.logger.Debug(context.Background(), "hud refreshed",
		"frame", hud.stats.Frame,
		"shapes", hud.stats.Shapes,
		"collisions", hud.stats.ActualCollisions,
	)
}

// Lines returns the most recent overlay text.
func (hud *HUDSystem) Lines() []string { return hud.lines }

// FormatStats renders engine counters as overlay lines.
func FormatStats(s engine.Stats) []string {
	threads := "off"
	if s.MultiThreading {
		threads = fmt.Sprintf("%d workers", s.Workers)
	}
	return []string{
		fmt.Sprintf("frame %d  shapes %d", s.Frame, s.Shapes),
		fmt.Sprintf("checks %d  collisions %d  avg %.4fs", s.CollisionChecks, s.ActualCollisions, s.AverageCollisionTime),
		fmt.Sprintf("cells %d  hot %d  quadtree %d", s.SpatialCells, s.HotCells, s.QuadtreeSize),
		fmt.Sprintf("tracked %d  predicted %d", s.NeighborTracking, s.Predictions),
		"threads " + threads,
	}
}
