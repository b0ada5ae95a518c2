// pkg/engine/snapshot.go
package engine

import (
	"github.com/opd-ai/go-physim/pkg/physics"
)

// ShapeSnapshot is a read-only copy of what a renderer needs to draw a shape
type ShapeSnapshot struct {
	Handle     physics.Handle
	Kind       physics.Kind
	Position   physics.Vector2D
	Velocity   physics.Vector2D
	Rotation   float64
	Radius     float64
	Width      float64
	Height     float64
	SideLength float64
	Vertices   [3]physics.Vector2D
	Bounds     physics.BoundingBox
	Color      physics.Color
	Static     bool
	Dragging   bool
}

// Stats is a snapshot of the engine's instrumentation counters
type Stats struct {
	Frame                uint64
	Shapes               int
	CollisionChecks      int // excludes static-static pairs
	ActualCollisions     int
	AverageCollisionTime float64
	SpatialCells         int
	HotCells             int
	NeighborTracking     int
	Predictions          int
	QuadtreeSize         int
	MultiThreading       bool
	Workers              int
}

// Snapshots appends a snapshot of every shape, in insertion order, to out.
func (e *Engine) Snapshots(out []ShapeSnapshot) []ShapeSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.store.Each(func(h physics.Handle, s *physics.Shape) {
		out = append(out, snapshotOf(h, s))
	})
	return out
}

func snapshotOf(h physics.Handle, s *physics.Shape) ShapeSnapshot {
	return ShapeSnapshot{
		Handle:     h,
		Kind:       s.Kind(),
		Position:   s.Position(),
		Velocity:   s.Velocity,
		Rotation:   s.Rotation,
		Radius:     s.Radius(),
		Width:      s.Width(),
		Height:     s.Height(),
		SideLength: s.SideLength(),
		Vertices:   s.Vertices(),
		Bounds:     s.BoundingBox(),
		Color:      s.Color,
		Static:     s.IsStatic(),
		Dragging:   s.IsDragging(),
	}
}

// Stats returns the current instrumentation counters.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		Frame:                e.frame,
		Shapes:               e.store.Len(),
		CollisionChecks:      e.collisionChecks,
		ActualCollisions:     e.actualCollisions,
		AverageCollisionTime: e.avgCollisionTime,
		SpatialCells:         e.grid.Len(),
		HotCells:             len(e.grid.HotCells(e.energyThreshold)),
		NeighborTracking:     e.tracker.Len(),
		Predictions:          e.predictor.Len(),
		QuadtreeSize:         e.quadtree.Len(),
		MultiThreading:       e.multiThreading,
		Workers:              e.threadCount,
	}
}

// Contains reports whether p lies inside the captured shape.
func (s ShapeSnapshot) Contains(p physics.Vector2D) bool {
	switch s.Kind {
	case physics.KindCircle:
		return p.Distance(s.Position) <= s.Radius
	case physics.KindRectangle:
		return s.Bounds.Contains(p)
	case physics.KindTriangle:
		return physics.PointInTriangle(s.Vertices, p)
	default:
		return false
	}
}
