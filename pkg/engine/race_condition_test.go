// pkg/engine/race_condition_test.go
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-physim/pkg/config"
	"github.com/opd-ai/go-physim/pkg/event"
	"github.com/opd-ai/go-physim/pkg/physics"
)

// TestEngineRaceCondition steps the engine while other goroutines mutate the
// shape collection and read snapshots. Run with -race.
func TestEngineRaceCondition(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BroadPhase.PairThreshold = 20
	cfg.Threading.Enabled = true
	cfg.Threading.Workers = 2
	e := newTestEngine(t, cfg)
	scatterShapes(e, 40, 3)

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Continuous stepping
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				e.Step(1.0 / 60.0)
				time.Sleep(time.Millisecond)
			}
		}
	}()

	// Add and immediately remove shapes
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			h := e.AddShape(circle(300, 300, 5))
			e.RemoveShape(h)
			time.Sleep(time.Millisecond)
		}
	}()

	// Renderer-style reads and drag input
	wg.Add(1)
	go func() {
		defer wg.Done()
		var snaps []ShapeSnapshot
		for i := 0; i < 50; i++ {
			snaps = e.Snapshots(snaps[:0])
			_ = e.Stats()
			if len(snaps) > 0 {
				p := snaps[0].Position
				e.BeginDrag(p)
				e.UpdateDrag(p.Add(physics.Vec(1, 0)))
				e.EndDrag()
			}
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	close(done)
	wg.Wait()
}

// TestEngineConcurrentConfigReload applies configs the way the file watcher
// does while the engine steps.
func TestEngineConcurrentConfigReload(t *testing.T) {
	e := newTestEngine(t, config.DefaultConfig())
	scatterShapes(e, 30, 9)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			e.Step(1.0 / 60.0)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cfg := config.DefaultConfig()
			cfg.Threading.Enabled = i%2 == 0
			cfg.Threading.Workers = 1 + i%3
			cfg.LOD.Enabled = i%3 == 0
			if err := e.ApplyConfig(cfg); err != nil {
				errs <- err
				return
			}
		}
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent config error: %v", err)
	}
}

// TestEngineHandlersMayCallBack verifies event handlers can use the engine
// without deadlocking.
func TestEngineHandlersMayCallBack(t *testing.T) {
	cfg := zeroGravityConfig()
	cfg.Prediction.Enabled = false
	e := newTestEngine(t, cfg)

	calls := 0
	e.EventBus().Subscribe(event.CollisionDetected, func(event.Event) {
		calls++
		_ = e.ShapeCount()
	})
	e.EventBus().Subscribe(event.ShapeAdded, func(event.Event) {
		_ = e.Stats()
	})

	e.AddShape(circle(300, 300, 10))
	e.AddShape(circle(310, 300, 10))

	finished := make(chan struct{})
	go func() {
		e.Step(1.0 / 60.0)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Step deadlocked in event handler")
	}
	if calls != 1 {
		t.Errorf("Expected 1 collision callback, got %d", calls)
	}
}

func TestEngineReentrantStepKeepsContacts(t *testing.T) {
	cfg := zeroGravityConfig()
	cfg.Prediction.Enabled = false
	e := newTestEngine(t, cfg)

	a1 := e.AddShape(circle(300, 300, 10))
	b1 := e.AddShape(circle(310, 300, 10))
	a2 := e.AddShape(circle(600, 300, 10))
	b2 := e.AddShape(circle(610, 300, 10))
	want := map[[2]uint64]bool{
		{a1.ID(), b1.ID()}: true,
		{a2.ID(), b2.ID()}: true,
	}

	got := make(map[[2]uint64]bool)
	nested := false
	e.EventBus().Subscribe(event.CollisionDetected, func(ev event.Event) {
		c := ev.(*event.CollisionEvent)
		if c.Frame != 1 {
			return
		}
		got[[2]uint64{c.ShapeA, c.ShapeB}] = true
		if nested {
			return
		}
		nested = true
		// Separate the first step's shapes and create two new contacts.
		for i, h := range []physics.Handle{a1, b1, a2, b2} {
			s, _ := e.Shape(h)
			s.SetPosition(physics.Vec(float64(200+i*200), 100))
		}
		e.AddShape(circle(100, 600, 10))
		e.AddShape(circle(110, 600, 10))
		e.AddShape(circle(900, 600, 10))
		e.AddShape(circle(910, 600, 10))
		e.Step(1.0 / 60.0)
	})

	e.Step(1.0 / 60.0)

	if len(got) != len(want) {
		t.Fatalf("frame 1 reported %d contacts, expected %d: %v", len(got), len(want), got)
	}
	for pair := range got {
		if !want[pair] {
			t.Errorf("frame 1 reported contact %v from a nested step", pair)
		}
	}
}
