// pkg/engine/step.go
package engine

import (
	"time"

	"github.com/opd-ai/go-physim/pkg/event"
	"github.com/opd-ai/go-physim/pkg/physics"
	"github.com/opd-ai/go-physim/pkg/spatial"
	"github.com/opd-ai/go-physim/pkg/worker"
)

// Step advances the simulation by dt seconds. Negative values count as zero
// and values above the configured maximum are capped.
func (e *Engine) Step(dt float64) {
	start := time.Now()

	e.mu.Lock()
	dt = e.clampDelta(dt)
	e.frame++
	e.collisionChecks = 0
	e.actualCollisions = 0

	e.integrate(dt)
	e.refreshSpatialStructures()
	e.refreshPredictions()

	e.pairs = e.broad.Pairs(e.store, e.pairs[:0])
	e.gated = e.gatePairs(e.pairs, e.gated[:0])
	e.contacts = e.narrowPhase(e.gated, e.contacts[:0])
	e.resolveContacts()
	hits := e.clampToWorld()

	if e.actualCollisions > 0 {
		e.avgCollisionTime = e.avgCollisionTime*0.9 + dt*0.1
	}
	frame := e.frame
	// Handlers may step again, which reuses e.contacts.
	contacts := append([]physics.Contact(nil), e.contacts...)
	summary := []any{
		"frame", frame,
		"shapes", e.store.Len(),
		"candidate_pairs", len(e.pairs),
		"collision_checks", e.collisionChecks,
		"collisions", e.actualCollisions,
	}
	e.mu.Unlock()

	e.publishStepEvents(frame, contacts, hits)

	e.logger.Debug(e.ctx, "step complete", append(summary, "duration", time.Since(start))...)
}

func (e *Engine) clampDelta(dt float64) float64 {
	if dt < 0 {
		return 0
	}
	if e.maxDeltaTime > 0 && dt > e.maxDeltaTime {
		return e.maxDeltaTime
	}
	return dt
}

// integrate advances every shape. With LOD enabled a shape only moves when its
// tier's interval has elapsed, using the accumulated time.
func (e *Engine) integrate(dt float64) {
	lodOn := e.lod.Enabled()
	e.store.Each(func(h physics.Handle, s *physics.Shape) {
		step := dt
		if lodOn && !s.IsStatic() {
			var ok bool
			if step, ok = e.lod.Advance(h, s.Position(), dt); !ok {
				return
			}
		}
		s.Integrate(step, e.gravity, e.applyFriction)
	})
}

func (e *Engine) refreshSpatialStructures() {
	if e.broad.UsesGrid(e.store.Len()) {
		e.quadtree.Reset(e.world)
		e.store.Each(func(h physics.Handle, s *physics.Shape) {
			e.quadtree.Insert(h, s.Position())
		})
	} else if e.quadtree.Len() > 0 {
		e.quadtree.Clear()
	}

	if e.frame%uint64(e.spatialInterval) == 0 {
		e.grid.Rebuild(e.world, e.store, e.frame)
	}
}

func (e *Engine) refreshPredictions() {
	if !e.predictionEnabled {
		return
	}
	if e.frame%uint64(e.neighborInterval) == 0 {
		e.tracker.Rebuild(e.store, e.frame)
	}
	e.predictor.Predict(e.store, e.tracker)
}

// gatePairs keeps the pairs that get an exact test this step: predicted
// pairs, plus every pair on backstop frames.
func (e *Engine) gatePairs(pairs []spatial.Pair, out []spatial.Pair) []spatial.Pair {
	e.collisionChecks = len(pairs)
	if !e.predictionEnabled || e.frame%uint64(e.backstopInterval) == 0 {
		return append(out, pairs...)
	}
	for _, p := range pairs {
		if e.predictor.Imminent(spatial.MakePair(p.A, p.B)) {
			out = append(out, p)
		}
	}
	return out
}

// narrowPhase tests pairs, splitting across the pool above the pair
// threshold. Workers only read shapes and write their own buffer.
func (e *Engine) narrowPhase(pairs []spatial.Pair, out []physics.Contact) []physics.Contact {
	if e.pool == nil || !e.multiThreading || !e.broad.UsesGrid(e.store.Len()) || len(pairs) < e.pool.Size() {
		for _, p := range pairs {
			if c, ok := e.testPair(p); ok {
				out = append(out, c)
			}
		}
		return out
	}

	parts := len(worker.Chunks(len(pairs), e.pool.Size()))
	for len(e.buffers) < parts {
		e.buffers = append(e.buffers, nil)
	}
	err := e.pool.Scatter(len(pairs), func(index int, span worker.Range) {
		buf := e.buffers[index][:0]
		for _, p := range pairs[span.Start:span.End] {
			if c, ok := e.testPair(p); ok {
				buf = append(buf, c)
			}
		}
		e.buffers[index] = buf
	})
	if err != nil {
		e.logger.Warn(e.ctx, "parallel narrow phase unavailable", "error", err)
		for _, p := range pairs {
			if c, ok := e.testPair(p); ok {
				out = append(out, c)
			}
		}
		return out
	}
	for i := 0; i < parts; i++ {
		out = append(out, e.buffers[i]...)
	}
	return out
}

func (e *Engine) testPair(p spatial.Pair) (physics.Contact, bool) {
	a, okA := e.store.Get(p.A)
	b, okB := e.store.Get(p.B)
	if !okA || !okB {
		return physics.Contact{}, false
	}

	var res physics.CollisionResult
	if e.lod.Detailed(a.Position()) && e.lod.Detailed(b.Position()) {
		res = physics.CheckCollision(a, b)
	} else {
		res = physics.CheckCoarseCollision(a, b)
	}
	if !res.Collided {
		return physics.Contact{}, false
	}
	return physics.Contact{A: p.A, B: p.B, Normal: res.Normal, Penetration: res.Penetration}, true
}

// resolveContacts applies contacts in discovery order.
func (e *Engine) resolveContacts() {
	e.actualCollisions = len(e.contacts)
	for _, c := range e.contacts {
		a, okA := e.store.Get(c.A)
		b, okB := e.store.Get(c.B)
		if !okA || !okB {
			continue
		}
		physics.ResolveCollision(a, b, c.Normal, c.Penetration)
	}
}

// clampToWorld keeps shapes inside the world. It returns the handles that
// touched an edge when anything listens for them.
func (e *Engine) clampToWorld() []physics.Handle {
	var hits []physics.Handle
	track := e.bus.HasSubscribers(event.WorldBoundsHit)
	e.store.Each(func(h physics.Handle, s *physics.Shape) {
		if s.IsStatic() {
			return
		}
		if s.ClampToWorld(e.world) && track {
			hits = append(hits, h)
		}
	})
	return hits
}

func (e *Engine) publishStepEvents(frame uint64, contacts []physics.Contact, hits []physics.Handle) {
	if e.bus.HasSubscribers(event.CollisionDetected) {
		for _, c := range contacts {
			e.bus.Publish(event.NewCollisionEvent(e, c.A.ID(), c.B.ID(), c.Normal, c.Penetration, frame))
		}
	}
	for _, h := range hits {
		e.bus.Publish(event.NewBoundsEvent(e, h.ID(), frame))
	}
}
