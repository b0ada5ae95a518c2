package spawn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-physim/pkg/physics"
)

var testWorld = physics.BoundingBox{Max: physics.Vec(1200, 800)}

type recorder struct {
	store *physics.Store
}

func (r *recorder) AddShape(s *physics.Shape) physics.Handle {
	return r.store.Add(s)
}

func TestTemplate_New(t *testing.T) {
	tests := []struct {
		name  string
		kind  physics.Kind
		check func(s *physics.Shape) bool
	}{
		{"circle", physics.KindCircle, func(s *physics.Shape) bool { return s.Radius() == 20 }},
		{"rectangle", physics.KindRectangle, func(s *physics.Shape) bool { return s.Width() == 20 && s.Height() == 30 }},
		{"triangle", physics.KindTriangle, func(s *physics.Shape) bool { return s.SideLength() == 20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := DefaultTemplate()
			tmpl.Kind = tt.kind
			tmpl.Width = 20
			tmpl.Height = 30
			tmpl.Mass = 2
			tmpl.Restitution = 0.5
			tmpl.Static = true

			s := tmpl.New(physics.Vec(10, 10))
			if s.Kind() != tt.kind {
				t.Errorf("Expected %v, got %v", tt.kind, s.Kind())
			}
			if !tt.check(s) {
				t.Error("Unexpected size")
			}
			if s.Physics.Mass != 2 || s.Physics.Restitution != 0.5 || !s.Physics.Static {
				t.Errorf("Physics not copied: %+v", s.Physics)
			}
		})
	}
}

func TestRepeat(t *testing.T) {
	got := Repeat(testWorld, 4)
	if len(got) != 4 {
		t.Fatalf("Expected 4 positions, got %d", len(got))
	}
	for _, p := range got {
		if p != physics.Vec(600, 400) {
			t.Errorf("Expected world center, got %v", p)
		}
	}
	if Repeat(testWorld, 0) != nil {
		t.Error("Expected nil for zero count")
	}
}

func TestMatrix_Positions(t *testing.T) {
	got := DefaultMatrix().Positions(testWorld)
	if len(got) != 9 {
		t.Fatalf("Expected 9 positions, got %d", len(got))
	}
	if got[0] != physics.Vec(550, 350) {
		t.Errorf("Expected first point (550,350), got %v", got[0])
	}
	if got[4] != physics.Vec(600, 400) {
		t.Errorf("Expected middle point at center, got %v", got[4])
	}
	if got[8] != physics.Vec(650, 450) {
		t.Errorf("Expected last point (650,450), got %v", got[8])
	}
	if (Matrix{Rows: 0, Columns: 3}).Positions(testWorld) != nil {
		t.Error("Expected nil for empty matrix")
	}
}

func TestSpiral_Positions(t *testing.T) {
	s := DefaultSpiral()
	got := s.Positions(testWorld)
	if len(got) != s.Count {
		t.Fatalf("Expected %d positions, got %d", s.Count, len(got))
	}

	center := testWorld.Center()
	for i, p := range got {
		want := s.Radius * math.Sqrt(float64(i+1)) * s.Spacing / 10
		if d := p.Distance(center); math.Abs(d-want) > 1e-9 {
			t.Errorf("point %d: expected distance %v, got %v", i, want, d)
		}
	}
	// First point lies on the positive X axis.
	if math.Abs(got[0].Y-center.Y) > 1e-9 || got[0].X <= center.X {
		t.Errorf("Unexpected first point %v", got[0])
	}
}

func TestScatter(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	got := Scatter(rng, testWorld, 500, 25)
	if len(got) != 500 {
		t.Fatalf("Expected 500 points, got %d", len(got))
	}
	inner := physics.BoundingBox{Min: physics.Vec(25, 25), Max: physics.Vec(1175, 775)}
	for _, p := range got {
		if !inner.Contains(p) {
			t.Fatalf("Point %v outside margin", p)
		}
	}
}

func TestSpawnAndAt(t *testing.T) {
	r := &recorder{store: physics.NewStore()}
	tmpl := DefaultTemplate()

	handles := Spawn(r, tmpl, DefaultMatrix().Positions(testWorld))
	if len(handles) != 9 || r.store.Len() != 9 {
		t.Fatalf("Expected 9 shapes, got %d", r.store.Len())
	}

	h := At(r, tmpl, physics.Vec(42, 24))
	s, ok := r.store.Get(h)
	if !ok || s.Position() != physics.Vec(42, 24) {
		t.Errorf("Click spawn not at cursor")
	}
}

func TestMixed(t *testing.T) {
	r := &recorder{store: physics.NewStore()}
	rng := rand.New(rand.NewPCG(3, 4))

	handles := Mixed(r, rng, testWorld, 30, 5, 15, 50)
	if len(handles) != 30 {
		t.Fatalf("Expected 30 handles, got %d", len(handles))
	}

	counts := map[physics.Kind]int{}
	r.store.Each(func(_ physics.Handle, s *physics.Shape) {
		counts[s.Kind()]++
		if math.Abs(s.Velocity.X) > 50 || math.Abs(s.Velocity.Y) > 50 {
			t.Errorf("Velocity %v above max speed", s.Velocity)
		}
	})
	for _, k := range []physics.Kind{physics.KindCircle, physics.KindRectangle, physics.KindTriangle} {
		if counts[k] != 10 {
			t.Errorf("Expected 10 %v shapes, got %d", k, counts[k])
		}
	}
}
