// pkg/engine/interact.go
package engine

import (
	"github.com/opd-ai/go-physim/pkg/physics"
)

// BeginDrag grabs the first shape, in insertion order, containing pos.
// It returns the grabbed handle and whether anything was hit.
func (e *Engine) BeginDrag(pos physics.Vector2D) (physics.Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.selected = physics.Handle{}
	h, s, ok := e.shapeAt(pos)
	if !ok {
		return physics.Handle{}, false
	}
	s.BeginDrag(pos, e.clock())
	e.selected = h
	return h, true
}

// UpdateDrag moves the grabbed shape to follow pos.
func (e *Engine) UpdateDrag(pos physics.Vector2D) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.store.Get(e.selected); ok {
		s.UpdateDrag(pos, e.clock())
	}
}

// EndDrag releases the grabbed shape, if any.
func (e *Engine) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.store.Get(e.selected); ok {
		s.EndDrag()
	}
	e.selected = physics.Handle{}
}

// Selected returns the shape being dragged.
func (e *Engine) Selected() (physics.Handle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected, e.store.Contains(e.selected)
}

// ShapeAt returns the first shape, in insertion order, containing pos.
func (e *Engine) ShapeAt(pos physics.Vector2D) (physics.Handle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, _, ok := e.shapeAt(pos)
	return h, ok
}

func (e *Engine) shapeAt(pos physics.Vector2D) (physics.Handle, *physics.Shape, bool) {
	for _, h := range e.store.Handles() {
		s, _ := e.store.Get(h)
		if s.ContainsPoint(pos) {
			return h, s, true
		}
	}
	return physics.Handle{}, nil, false
}

// QueryRegion returns the shapes whose bounding box intersects area. Above
// the pair threshold candidates come from the quadtree, so shapes whose
// position lies far outside a small query rectangle may be missed.
func (e *Engine) QueryRegion(area physics.BoundingBox) []physics.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []physics.Handle
	if e.broad.UsesGrid(e.store.Len()) && e.quadtree.Len() > 0 {
		for _, h := range e.quadtree.Retrieve(area, nil) {
			if s, ok := e.store.Get(h); ok && s.BoundingBox().Intersects(area) {
				out = append(out, h)
			}
		}
		return out
	}

	e.store.Each(func(h physics.Handle, s *physics.Shape) {
		if s.BoundingBox().Intersects(area) {
			out = append(out, h)
		}
	})
	return out
}

// PotentialCollisions returns the last neighbor snapshot for h, falling back
// to the shapes sharing an adaptive grid cell when no neighbors are recorded.
func (e *Engine) PotentialCollisions(h physics.Handle) []physics.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.store.Get(h)
	if !ok {
		return nil
	}

	var out []physics.Handle
	if neighbors, ok := e.tracker.Neighbors(h); ok && len(neighbors) > 0 {
		for _, n := range neighbors {
			if e.store.Contains(n) {
				out = append(out, n)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	for _, n := range e.grid.Nearby(h, s.Position(), s.BoundingRadius(), nil) {
		if e.store.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
