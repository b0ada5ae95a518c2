// pkg/spatial/grid.go
package spatial

import (
	"math"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// Adaptive grid sizing constants.
const (
	DefaultCellSize = 100.0
	MinCellSize     = 50.0
	MaxCellSize     = 200.0
	// approxShapeArea is the footprint assumed per shape when estimating density.
	approxShapeArea = 50.0 * 50.0
)

// Cell is one region of the adaptive grid. Objects is a non-owning list and
// a shape may appear in several cells.
type Cell struct {
	Bounds          physics.BoundingBox
	Objects         []physics.Handle
	EnergyDensity   float64
	LastUpdateFrame uint64
}

// AdaptiveGrid partitions the world into square cells whose size shrinks as
// the shape population grows.
type AdaptiveGrid struct {
	world    physics.BoundingBox
	cellSize float64
	cols     int
	rows     int
	cells    []Cell
}

// NewAdaptiveGrid creates an empty grid.
func NewAdaptiveGrid() *AdaptiveGrid {
	return &AdaptiveGrid{cellSize: DefaultCellSize}
}

// AdaptiveCellSize returns the cell edge for n shapes in world.
func AdaptiveCellSize(n int, world physics.BoundingBox) float64 {
	area := world.Area()
	if n == 0 || area <= 0 {
		return DefaultCellSize
	}
	density := float64(n) * approxShapeArea / area
	return physics.Clamp(DefaultCellSize/(1+density*10), MinCellSize, MaxCellSize)
}

// Rebuild recreates every cell for the current population, assigns each shape
// to every cell its bounding circle overlaps and recomputes energy density.
func (g *AdaptiveGrid) Rebuild(world physics.BoundingBox, store *physics.Store, frame uint64) {
	g.world = world
	g.cellSize = AdaptiveCellSize(store.Len(), world)
	g.cols = int(math.Ceil(world.Width() / g.cellSize))
	g.rows = int(math.Ceil(world.Height() / g.cellSize))
	if g.cols < 0 {
		g.cols = 0
	}
	if g.rows < 0 {
		g.rows = 0
	}

	total := g.cols * g.rows
	if cap(g.cells) >= total {
		g.cells = g.cells[:total]
	} else {
		g.cells = make([]Cell, total)
	}
	for x := 0; x < g.cols; x++ {
		for y := 0; y < g.rows; y++ {
			lo := world.Min.Add(physics.Vec(float64(x)*g.cellSize, float64(y)*g.cellSize))
			c := &g.cells[x*g.rows+y]
			c.Bounds = physics.BoundingBox{Min: lo, Max: lo.Add(physics.Vec(g.cellSize, g.cellSize))}
			c.Objects = c.Objects[:0]
			c.EnergyDensity = 0
			c.LastUpdateFrame = frame
		}
	}
	if total == 0 {
		return
	}

	store.Each(func(h physics.Handle, s *physics.Shape) {
		pos, r := s.Position(), s.BoundingRadius()
		x0, y0 := g.cellCoords(pos.Sub(physics.Vec(r, r)))
		x1, y1 := g.cellCoords(pos.Add(physics.Vec(r, r)))
		energy := 0.5 * s.Mass() * s.Velocity.LengthSquared()
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				c := &g.cells[x*g.rows+y]
				if circleOverlapsBox(pos, r, c.Bounds) {
					c.Objects = append(c.Objects, h)
					c.EnergyDensity += energy
				}
			}
		}
	})

	for i := range g.cells {
		if area := g.cells[i].Bounds.Area(); area > 0 {
			g.cells[i].EnergyDensity /= area
		}
	}
}

// cellCoords maps a point to clamped cell coordinates.
func (g *AdaptiveGrid) cellCoords(p physics.Vector2D) (int, int) {
	x := int(math.Floor((p.X - g.world.Min.X) / g.cellSize))
	y := int(math.Floor((p.Y - g.world.Min.Y) / g.cellSize))
	return physics.Clamp(x, 0, g.cols-1), physics.Clamp(y, 0, g.rows-1)
}

func circleOverlapsBox(center physics.Vector2D, radius float64, box physics.BoundingBox) bool {
	closest := center.ClampTo(box.Min, box.Max)
	return closest.Sub(center).LengthSquared() <= radius*radius
}

// CellSize returns the edge length chosen on the last rebuild.
func (g *AdaptiveGrid) CellSize() float64 { return g.cellSize }

// Len returns the number of cells.
func (g *AdaptiveGrid) Len() int { return len(g.cells) }

// Cells exposes the cells for instrumentation. The slice is reused on rebuild.
func (g *AdaptiveGrid) Cells() []Cell { return g.cells }

// Clear drops every cell.
func (g *AdaptiveGrid) Clear() {
	g.cells = g.cells[:0]
	g.cols, g.rows = 0, 0
	g.cellSize = DefaultCellSize
}

// Nearby appends every other handle sharing a cell with the circle at pos.
// Handles appear once even when several cells are shared.
func (g *AdaptiveGrid) Nearby(self physics.Handle, pos physics.Vector2D, radius float64, out []physics.Handle) []physics.Handle {
	if len(g.cells) == 0 {
		return out
	}
	seen := make(map[physics.Handle]struct{})
	x0, y0 := g.cellCoords(pos.Sub(physics.Vec(radius, radius)))
	x1, y1 := g.cellCoords(pos.Add(physics.Vec(radius, radius)))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			c := &g.cells[x*g.rows+y]
			if !circleOverlapsBox(pos, radius, c.Bounds) {
				continue
			}
			for _, h := range c.Objects {
				if h == self {
					continue
				}
				if _, dup := seen[h]; dup {
					continue
				}
				seen[h] = struct{}{}
				out = append(out, h)
			}
		}
	}
	return out
}

// HotCells returns the cells whose energy density exceeds threshold.
func (g *AdaptiveGrid) HotCells(threshold float64) []*Cell {
	var hot []*Cell
	for i := range g.cells {
		if g.cells[i].EnergyDensity > threshold {
			hot = append(hot, &g.cells[i])
		}
	}
	return hot
}
