// Package lod maps distance from a focus point to an update tier.
package lod

import (
	"sort"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// Level is one fidelity tier. Shapes within DistanceThreshold of the focus
// use the first matching level. UpdateInterval is in seconds; zero means
// every step.
type Level struct {
	DistanceThreshold   float64 `json:"distanceThreshold" toml:"distance_threshold"`
	UpdateInterval      float64 `json:"updateInterval" toml:"update_interval"`
	DoPhysics           bool    `json:"doPhysics" toml:"do_physics"`
	DoDetailedCollision bool    `json:"doDetailedCollision" toml:"do_detailed_collision"`
}

// DefaultLevels returns the stock tier table. The last tier catches everything.
func DefaultLevels() []Level {
	return []Level{
		{DistanceThreshold: 200, UpdateInterval: 0, DoPhysics: true, DoDetailedCollision: true},
		{DistanceThreshold: 500, UpdateInterval: 1.0 / 30, DoPhysics: true, DoDetailedCollision: true},
		{DistanceThreshold: 1000, UpdateInterval: 1.0 / 10, DoPhysics: true, DoDetailedCollision: false},
		{DistanceThreshold: 1e9, UpdateInterval: 1.0 / 4, DoPhysics: false, DoDetailedCollision: false},
	}
}

// full is used while LOD is disabled. Beyond the last threshold the last
// tier applies.
var full = Level{DoPhysics: true, DoDetailedCollision: true}

// Controller assigns tiers and tracks per-shape update accumulators.
type Controller struct {
	enabled bool
	focus   physics.Vector2D
	levels  []Level
	accum   map[physics.Handle]float64
}

// NewController creates a disabled controller using levels, or the default
// table when levels is empty. Levels are sorted by threshold.
func NewController(levels []Level) *Controller {
	c := &Controller{accum: make(map[physics.Handle]float64)}
	c.SetLevels(levels)
	return c
}

// SetLevels replaces the tier table.
func (c *Controller) SetLevels(levels []Level) {
	if len(levels) == 0 {
		levels = DefaultLevels()
	}
	c.levels = append(c.levels[:0], levels...)
	sort.SliceStable(c.levels, func(i, j int) bool {
		return c.levels[i].DistanceThreshold < c.levels[j].DistanceThreshold
	})
}

// Levels returns the active tier table.
func (c *Controller) Levels() []Level { return c.levels }

// SetEnabled toggles LOD. Disabling resets every accumulator.
func (c *Controller) SetEnabled(enabled bool) {
	if !enabled {
		clear(c.accum)
	}
	c.enabled = enabled
}

// Enabled reports whether LOD is active.
func (c *Controller) Enabled() bool { return c.enabled }

// SetFocus moves the point distances are measured from.
func (c *Controller) SetFocus(focus physics.Vector2D) { c.focus = focus }

// Focus returns the current focus point.
func (c *Controller) Focus() physics.Vector2D { return c.focus }

// LevelFor returns the tier for a shape at pos.
func (c *Controller) LevelFor(pos physics.Vector2D) Level {
	if !c.enabled {
		return full
	}
	d := pos.Distance(c.focus)
	for _, l := range c.levels {
		if d <= l.DistanceThreshold {
			return l
		}
	}
	return c.levels[len(c.levels)-1]
}

// Advance accumulates dt for h and reports the time step to integrate with.
// ok is false when the shape should not be integrated this step.
func (c *Controller) Advance(h physics.Handle, pos physics.Vector2D, dt float64) (step float64, ok bool) {
	level := c.LevelFor(pos)
	if !level.DoPhysics {
		delete(c.accum, h)
		return 0, false
	}
	if !c.enabled || level.UpdateInterval <= 0 {
		return dt, true
	}
	acc := c.accum[h] + dt
	if acc < level.UpdateInterval {
		c.accum[h] = acc
		return 0, false
	}
	c.accum[h] = 0
	return acc, true
}

// Detailed reports whether a shape at pos gets the exact narrow phase.
func (c *Controller) Detailed(pos physics.Vector2D) bool {
	return c.LevelFor(pos).DoDetailedCollision
}

// Forget drops the accumulator for h.
func (c *Controller) Forget(h physics.Handle) { delete(c.accum, h) }

// Clear drops every accumulator.
func (c *Controller) Clear() { clear(c.accum) }
