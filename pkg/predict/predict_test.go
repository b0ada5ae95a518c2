package predict

import (
	"math"
	"testing"

	"github.com/opd-ai/go-physim/pkg/physics"
	"github.com/opd-ai/go-physim/pkg/spatial"
)

func circle(x, y, vx, vy float64) *physics.Shape {
	s := physics.NewCircle(physics.Vec(x, y), 5, physics.White)
	s.Velocity = physics.Vec(vx, vy)
	return s
}

func TestTimeToImpact(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *physics.Shape
		expected float64
	}{
		{"head_on", circle(0, 0, 10, 0), circle(30, 0, -10, 0), 1},
		{"chasing", circle(0, 0, 20, 0), circle(30, 0, 10, 0), 2},
		{"receding", circle(0, 0, -10, 0), circle(30, 0, 10, 0), NoImpact},
		{"miss_sideways", circle(0, 0, 10, 0), circle(30, 50, -10, 0), NoImpact},
		{"identical_velocity", circle(0, 0, 7, 3), circle(12, 0, 7, 3), NoImpact},
		{"both_at_rest", circle(0, 0, 0, 0), circle(5, 0, 0, 0), NoImpact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeToImpact(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("TimeToImpact() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestTimeToImpact_OverlappingReturnsExitRoot(t *testing.T) {
	a := circle(0, 0, 10, 0)
	b := circle(5, 0, 0, 0)
	got := TimeToImpact(a, b)
	// Already overlapping: the smaller root is negative, so the exit root is used.
	if math.Abs(got-1.5) > 1e-9 {
		t.Errorf("TimeToImpact() = %v, expected 1.5", got)
	}
}

func TestWillCollideWithin(t *testing.T) {
	a := circle(0, 0, 100, 0)
	b := circle(15, 0, 0, 0)
	if !WillCollideWithin(a, b, DefaultHorizon) {
		t.Error("expected impact at t=0.05 to be within the horizon")
	}
	far := circle(100, 0, 0, 0)
	if WillCollideWithin(a, far, DefaultHorizon) {
		t.Error("impact at t=0.9 should be outside the horizon")
	}
}

func TestNeighborTracker(t *testing.T) {
	store := physics.NewStore()
	a := store.Add(circle(0, 0, 0, 0))
	b := store.Add(circle(60, 0, 0, 0))
	c := store.Add(circle(100, 0, 0, 0))
	d := store.Add(circle(300, 0, 0, 0))

	tr := NewNeighborTracker(100)
	tr.Rebuild(store, 10)

	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, expected 4", tr.Len())
	}

	tests := []struct {
		name     string
		h        physics.Handle
		expected []physics.Handle
	}{
		{"boundary_distance_counts", a, []physics.Handle{b, c}},
		{"middle", b, []physics.Handle{a, c}},
		{"isolated", d, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.Neighbors(tt.h)
			if !ok {
				t.Fatal("handle not tracked")
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Neighbors() = %v, expected %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Neighbors()[%d] = %v, expected %v", i, got[i], tt.expected[i])
				}
			}
		})
	}

	if info := tr.Infos()[0]; info.LastUpdateFrame != 10 {
		t.Errorf("LastUpdateFrame = %d, expected 10", info.LastUpdateFrame)
	}

	tr.Forget(b)
	if _, ok := tr.Neighbors(b); ok {
		t.Error("forgotten handle still tracked")
	}
	if got, _ := tr.Neighbors(a); len(got) != 1 || got[0] != c {
		t.Errorf("after Forget Neighbors(a) = %v, expected [%v]", got, c)
	}

	tr.Clear()
	if tr.Len() != 0 {
		t.Errorf("Len() after Clear = %d", tr.Len())
	}
}

func TestPredictor_DensityGate(t *testing.T) {
	build := func(extra int) (*physics.Store, physics.Handle, physics.Handle) {
		store := physics.NewStore()
		hub := store.Add(circle(0, 0, 100, 0))
		target := store.Add(circle(15, 0, 0, 0))
		for i := 0; i < extra; i++ {
			store.Add(circle(0, float64(40+i*10), 0, 0))
		}
		return store, hub, target
	}

	t.Run("sparse_is_skipped", func(t *testing.T) {
		store, hub, target := build(1)
		tr := NewNeighborTracker(100)
		tr.Rebuild(store, 0)
		p := NewPredictor(DefaultHorizon, DefaultMinNeighbors)
		p.Predict(store, tr)
		if p.Imminent(spatial.MakePair(hub, target)) {
			t.Error("shape with 2 neighbors should not be examined")
		}
	})

	t.Run("dense_is_predicted", func(t *testing.T) {
		store, hub, target := build(3)
		tr := NewNeighborTracker(100)
		tr.Rebuild(store, 0)
		p := NewPredictor(DefaultHorizon, DefaultMinNeighbors)
		p.Predict(store, tr)
		if !p.Imminent(spatial.MakePair(target, hub)) {
			t.Error("expected imminent prediction for hub/target")
		}
		if p.Len() == 0 || !p.Predictions()[0].WillCollide {
			t.Errorf("Predictions() = %v", p.Predictions())
		}
	})

	t.Run("identical_velocities_never_predicted", func(t *testing.T) {
		store := physics.NewStore()
		for i := 0; i < 6; i++ {
			store.Add(circle(float64(i*8), 0, 25, -5))
		}
		tr := NewNeighborTracker(100)
		tr.Rebuild(store, 0)
		p := NewPredictor(DefaultHorizon, DefaultMinNeighbors)
		p.Predict(store, tr)
		if p.Len() != 0 {
			t.Errorf("got %d predictions, expected none", p.Len())
		}
	})

	t.Run("removed_handles_skipped", func(t *testing.T) {
		store, hub, target := build(3)
		tr := NewNeighborTracker(100)
		tr.Rebuild(store, 0)
		store.Remove(target)
		p := NewPredictor(DefaultHorizon, DefaultMinNeighbors)
		p.Predict(store, tr)
		if p.Imminent(spatial.MakePair(hub, target)) {
			t.Error("removed shape should not be predicted")
		}
	})
}

func TestZeroSettingsKept(t *testing.T) {
	store := physics.NewStore()
	store.Add(circle(0, 0, 0, 0))
	store.Add(circle(0, 0, 0, 0))
	store.Add(circle(1, 0, 0, 0))

	tr := NewNeighborTracker(0)
	if tr.Radius != 0 {
		t.Fatalf("Radius = %v, expected 0", tr.Radius)
	}
	tr.Rebuild(store, 0)
	for _, info := range tr.Infos() {
		if len(info.Neighbors) > 1 {
			t.Errorf("%v has %d neighbors, expected only coincident shapes", info.Object, len(info.Neighbors))
		}
	}

	if p := NewPredictor(0, 0); p.Horizon != 0 {
		t.Errorf("Horizon = %v, expected 0", p.Horizon)
	}
}
