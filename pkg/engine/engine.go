// pkg/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opd-ai/go-physim/pkg/config"
	"github.com/opd-ai/go-physim/pkg/event"
	"github.com/opd-ai/go-physim/pkg/lod"
	"github.com/opd-ai/go-physim/pkg/logging"
	"github.com/opd-ai/go-physim/pkg/physics"
	"github.com/opd-ai/go-physim/pkg/predict"
	"github.com/opd-ai/go-physim/pkg/spatial"
	"github.com/opd-ai/go-physim/pkg/worker"
)

// Clock supplies timestamps for drag samples.
type Clock func() time.Time

// Engine owns every shape and acceleration structure and advances the
// simulation one step at a time. Shape pointers returned by Shape must not
// be mutated concurrently with Step.
type Engine struct {
	ID string

	mu sync.RWMutex

	store   *physics.Store
	world   physics.BoundingBox
	gravity physics.Vector2D

	quadtree  *spatial.QuadTree
	grid      *spatial.AdaptiveGrid
	broad     *spatial.BroadPhase
	tracker   *predict.NeighborTracker
	predictor *predict.Predictor
	lod       *lod.Controller
	pool      *worker.Pool

	multiThreading    bool
	threadCount       int
	spatialInterval   int
	neighborInterval  int
	backstopInterval  int
	predictionEnabled bool
	applyFriction     bool
	energyThreshold   float64
	maxDeltaTime      float64

	frame            uint64
	collisionChecks  int
	actualCollisions int
	avgCollisionTime float64

	selected physics.Handle

	pairs    []spatial.Pair
	gated    []spatial.Pair
	contacts []physics.Contact
	buffers  [][]physics.Contact

	logger *logging.Logger
	bus    *event.Bus
	clock  Clock
	ctx    context.Context
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEventBus sets the bus shape and collision events are published on.
func WithEventBus(b *event.Bus) Option {
	return func(e *Engine) { e.bus = b }
}

// WithClock replaces time.Now for drag sampling.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine from cfg, or from the defaults when cfg is nil.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	e := &Engine{
		ID:        uuid.NewString(),
		store:     physics.NewStore(),
		grid:      spatial.NewAdaptiveGrid(),
		tracker:   predict.NewNeighborTracker(cfg.Prediction.MaxNeighborDistance),
		predictor: predict.NewPredictor(cfg.Prediction.Horizon, cfg.Prediction.MinNeighbors),
		lod:       lod.NewController(cfg.LOD.Levels),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewLogger()
	}
	if e.bus == nil {
		e.bus = event.NewEventBus()
	}
	e.ctx = logging.WithCorrelationID(context.Background(), e.ID)

	if err := e.applyConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	e.grid.Rebuild(e.world, e.store, e.frame)

	e.logger.Info(e.ctx, "engine created",
		"world_width", e.world.Width(),
		"world_height", e.world.Height(),
		"multithreading", e.multiThreading,
		"workers", e.threadCount,
	)
	return e, nil
}

// Close stops the worker pool. The engine must not be stepped afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
}

// EventBus returns the bus the engine publishes on.
func (e *Engine) EventBus() *event.Bus { return e.bus }

// AddShape takes ownership of s and returns its handle. A nil shape is ignored
// and yields the zero handle.
func (e *Engine) AddShape(s *physics.Shape) physics.Handle {
	if s == nil {
		return physics.Handle{}
	}
	e.mu.Lock()
	h := e.store.Add(s)
	if e.broad.UsesGrid(e.store.Len()) {
		e.quadtree.Insert(h, s.Position())
	}
	e.mu.Unlock()

	e.bus.Publish(event.NewShapeEvent(event.ShapeAdded, e, h.ID(), s.Kind()))
	return h
}

// RemoveShape drops the shape behind h. Unknown or stale handles are ignored.
func (e *Engine) RemoveShape(h physics.Handle) {
	e.mu.Lock()
	s, ok := e.store.Get(h)
	if !ok {
		e.mu.Unlock()
		return
	}
	kind := s.Kind()
	e.store.Remove(h)
	e.quadtree.Remove(h)
	e.tracker.Forget(h)
	e.lod.Forget(h)
	if e.selected == h {
		e.selected = physics.Handle{}
	}
	e.mu.Unlock()

	e.bus.Publish(event.NewShapeEvent(event.ShapeRemoved, e, h.ID(), kind))
}

// ClearShapes drops every shape and all derived spatial and prediction state.
func (e *Engine) ClearShapes() {
	e.mu.Lock()
	count := e.store.Len()
	e.store.Clear()
	e.selected = physics.Handle{}
	e.quadtree.Clear()
	e.grid.Clear()
	e.broad.Reset()
	e.tracker.Clear()
	e.predictor.Clear()
	e.lod.Clear()
	e.pairs = e.pairs[:0]
	e.contacts = e.contacts[:0]
	e.mu.Unlock()

	e.logger.Info(e.ctx, "shapes cleared", "count", count)
	e.bus.Publish(event.NewClearedEvent(e, count))
}

// Shape resolves a handle.
func (e *Engine) Shape(h physics.Handle) (*physics.Shape, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Get(h)
}

// Handles returns a copy of the live handles in insertion order.
func (e *Engine) Handles() []physics.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]physics.Handle(nil), e.store.Handles()...)
}

// ShapeCount returns the number of live shapes.
func (e *Engine) ShapeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Len()
}

// Frame returns the number of completed steps.
func (e *Engine) Frame() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frame
}

// WorldBounds returns the world rectangle.
func (e *Engine) WorldBounds() physics.BoundingBox {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world
}

// Gravity returns the global gravity vector.
func (e *Engine) Gravity() physics.Vector2D {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gravity
}

// CollisionChecks returns the candidate pairs considered on the last step.
// Pairs of two static shapes are never proposed and are not counted.
func (e *Engine) CollisionChecks() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.collisionChecks
}

// ActualCollisions returns the contacts confirmed on the last step.
func (e *Engine) ActualCollisions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.actualCollisions
}

// AverageCollisionTime is a moving average of dt over steps with contacts.
func (e *Engine) AverageCollisionTime() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.avgCollisionTime
}

// SpatialCellCount returns the number of adaptive grid cells.
func (e *Engine) SpatialCellCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Len()
}

// HotCellCount returns the grid cells whose energy density exceeds the
// configured threshold.
func (e *Engine) HotCellCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.grid.HotCells(e.energyThreshold))
}

// NeighborTrackingCount returns the size of the neighbor snapshot.
func (e *Engine) NeighborTrackingCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tracker.Len()
}

// PredictionCount returns the imminent collisions found on the last step.
func (e *Engine) PredictionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.predictor.Len()
}

// QuadtreeSize returns the number of handles indexed by the quadtree.
func (e *Engine) QuadtreeSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.quadtree.Len()
}

// MultiThreading reports whether the parallel narrow phase is enabled.
func (e *Engine) MultiThreading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.multiThreading
}

// ThreadCount returns the configured worker count.
func (e *Engine) ThreadCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threadCount
}

// LODEnabled reports whether level-of-detail scheduling is active.
func (e *Engine) LODEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lod.Enabled()
}

// SetGravity sets the global gravity vector. Shapes using global gravity also
// get their scalar override set to g.Y.
func (e *Engine) SetGravity(g physics.Vector2D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setGravity(g)
}

func (e *Engine) setGravity(g physics.Vector2D) {
	e.gravity = g
	e.store.Each(func(_ physics.Handle, s *physics.Shape) {
		if s.UseGlobalGravity {
			s.Physics.Gravity = g.Y
		}
	})
}

// SetWorldBounds sets the world to the rectangle (0,0)-(width,height).
func (e *Engine) SetWorldBounds(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setWorldBounds(width, height)
}

func (e *Engine) setWorldBounds(width, height float64) {
	e.world = physics.BoundingBox{Max: physics.Vec(width, height)}
	if e.quadtree == nil {
		e.quadtree = spatial.NewQuadTree(e.world)
	} else {
		e.quadtree.Reset(e.world)
	}
}

// SetMultiThreading toggles the parallel narrow phase, starting or stopping
// the worker pool.
func (e *Engine) SetMultiThreading(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setThreading(enabled, e.threadCount)
}

// SetThreadCount changes the worker count, restarting the pool when active.
func (e *Engine) SetThreadCount(n int) error {
	if n < 1 {
		return worker.ErrNoWorkers
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setThreading(e.multiThreading, n)
}

func (e *Engine) setThreading(enabled bool, workers int) error {
	changed := enabled != e.multiThreading || workers != e.threadCount
	if e.pool != nil && (!enabled || workers != e.pool.Size()) {
		e.pool.Close()
		e.pool = nil
	}
	if enabled && e.pool == nil {
		pool, err := worker.NewPool(workers)
		if err != nil {
			return fmt.Errorf("failed to start worker pool: %w", err)
		}
		e.pool = pool
	}
	e.multiThreading = enabled
	e.threadCount = workers
	if changed {
		e.logger.Info(e.ctx, "threading updated", "enabled", enabled, "workers", workers)
	}
	return nil
}

// SetSpatialUpdateInterval sets how many steps pass between grid rebuilds.
func (e *Engine) SetSpatialUpdateInterval(steps int) {
	if steps < 1 {
		steps = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spatialInterval = steps
}

// SetNeighborUpdateInterval sets how many steps pass between neighbor rebuilds.
func (e *Engine) SetNeighborUpdateInterval(steps int) {
	if steps < 1 {
		steps = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.neighborInterval = steps
}

// SetMaxNeighborDistance sets the neighbor tracking radius.
func (e *Engine) SetMaxNeighborDistance(r float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.Radius = r
}

// SetPredictionEnabled toggles prediction gating. When off every candidate
// pair gets the narrow phase.
func (e *Engine) SetPredictionEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.predictionEnabled = enabled
	if !enabled {
		e.tracker.Clear()
		e.predictor.Clear()
	}
}

// SetLODEnabled toggles level-of-detail scheduling.
func (e *Engine) SetLODEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lod.SetEnabled(enabled)
}

// SetFocus moves the point LOD distances are measured from.
func (e *Engine) SetFocus(p physics.Vector2D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lod.SetFocus(p)
}

// ApplyConfig validates cfg and applies it to the running engine. Shapes and
// counters are kept.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("failed to apply config: %w", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to apply config: %w", err)
	}

	e.mu.Lock()
	err := e.applyConfig(cfg)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to apply config: %w", err)
	}

	e.logger.Info(e.ctx, "config applied",
		"world_width", cfg.World.Width,
		"world_height", cfg.World.Height,
		"pair_threshold", cfg.BroadPhase.PairThreshold,
		"lod", cfg.LOD.Enabled,
	)
	return nil
}

func (e *Engine) applyConfig(cfg *config.Config) error {
	if e.world.Width() != cfg.World.Width || e.world.Height() != cfg.World.Height || e.quadtree == nil {
		e.setWorldBounds(cfg.World.Width, cfg.World.Height)
	}
	e.setGravity(physics.Vec(cfg.World.GravityX, cfg.World.GravityY))

	e.maxDeltaTime = cfg.Simulation.MaxDeltaTime
	e.applyFriction = cfg.Simulation.ApplyFriction

	e.broad = spatial.NewBroadPhase(cfg.BroadPhase.PairThreshold, cfg.BroadPhase.CellSize)

	e.spatialInterval = cfg.Grid.SpatialUpdateInterval
	e.energyThreshold = cfg.Grid.EnergyThreshold

	e.predictionEnabled = cfg.Prediction.Enabled
	e.neighborInterval = cfg.Prediction.NeighborUpdateInterval
	e.backstopInterval = cfg.Prediction.BackstopInterval
	e.tracker.Radius = cfg.Prediction.MaxNeighborDistance
	e.predictor.Horizon = cfg.Prediction.Horizon
	e.predictor.MinNeighbors = cfg.Prediction.MinNeighbors

	e.lod.SetLevels(cfg.LOD.Levels)
	e.lod.SetEnabled(cfg.LOD.Enabled)
	e.lod.SetFocus(physics.Vec(cfg.LOD.FocusX, cfg.LOD.FocusY))

	workers := cfg.Threading.Workers
	if workers < 1 {
		workers = 1
	}
	return e.setThreading(cfg.Threading.Enabled, workers)
}
