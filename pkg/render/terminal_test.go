package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/physics"
)

var termWorld = physics.BoundingBox{Max: physics.Vec(400, 200)}

// newSimScreen returns a 40x21 screen: 40x20 cells of world plus the status row.
func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	screen.SetSize(40, 21)
	t.Cleanup(screen.Fini)
	return screen
}

func runeAt(screen tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := screen.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func snapshotOf(s *physics.Shape) engine.ShapeSnapshot {
	return engine.ShapeSnapshot{
		Kind:       s.Kind(),
		Position:   s.Position(),
		Radius:     s.Radius(),
		Width:      s.Width(),
		Height:     s.Height(),
		SideLength: s.SideLength(),
		Vertices:   s.Vertices(),
		Bounds:     s.BoundingBox(),
		Color:      s.Color,
		Static:     s.IsStatic(),
	}
}

func TestNewTerminalRenderer_Errors(t *testing.T) {
	if _, err := NewTerminalRenderer(nil, termWorld); err == nil {
		t.Error("Expected error for nil screen")
	}
	if _, err := NewTerminalRenderer(newSimScreen(t), physics.BoundingBox{}); err == nil {
		t.Error("Expected error for empty world")
	}
}

func TestTerminalRenderer_Coordinates(t *testing.T) {
	r, err := NewTerminalRenderer(newSimScreen(t), termWorld)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		world physics.Vector2D
		x, y  int
	}{
		{"bottom left", physics.Vec(1, 1), 0, 19},
		{"top right", physics.Vec(399, 199), 39, 0},
		{"center", physics.Vec(200, 100), 20, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := r.WorldToScreen(tt.world)
			if x != tt.x || y != tt.y {
				t.Errorf("Expected (%d,%d), got (%d,%d)", tt.x, tt.y, x, y)
			}
			bx, by := r.WorldToScreen(r.ScreenToWorld(x, y))
			if bx != x || by != y {
				t.Errorf("Round trip moved cell (%d,%d) to (%d,%d)", x, y, bx, by)
			}
		})
	}
}

func TestTerminalRenderer_DrawsShapes(t *testing.T) {
	screen := newSimScreen(t)
	r, err := NewTerminalRenderer(screen, termWorld)
	if err != nil {
		t.Fatal(err)
	}

	floor := physics.NewRectangle(physics.Vec(200, 10), 400, 20, physics.White)
	floor.Physics.Static = true
	snaps := []engine.ShapeSnapshot{
		snapshotOf(physics.NewCircle(physics.Vec(200, 100), 30, physics.White)),
		snapshotOf(physics.NewRectangle(physics.Vec(50, 150), 40, 40, physics.White)),
		snapshotOf(physics.NewTriangle(physics.Vec(350, 100), 60, physics.White)),
		snapshotOf(floor),
		snapshotOf(physics.NewCircle(physics.Vec(305, 175), 1, physics.White)),
	}

	r.SetStatus("shapes: 5")
	Frame(r, snaps)

	tests := []struct {
		name string
		x, y int
		want rune
	}{
		{"circle center", 20, 9, GlyphCircle},
		{"rectangle center", 5, 4, GlyphRectangle},
		{"triangle centroid", 35, 9, GlyphTriangle},
		{"static floor", 10, 19, GlyphStatic},
		{"tiny circle", 30, 2, GlyphCircle},
		{"empty space", 12, 2, ' '},
		{"status line", 0, 20, 's'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runeAt(screen, tt.x, tt.y); got != tt.want {
				t.Errorf("Expected %q at (%d,%d), got %q", tt.want, tt.x, tt.y, got)
			}
		})
	}
}

func TestTerminalRenderer_ClearErases(t *testing.T) {
	screen := newSimScreen(t)
	r, err := NewTerminalRenderer(screen, termWorld)
	if err != nil {
		t.Fatal(err)
	}

	Frame(r, []engine.ShapeSnapshot{snapshotOf(physics.NewCircle(physics.Vec(200, 100), 30, physics.White))})
	Frame(r, nil)

	if got := runeAt(screen, 20, 9); got != ' ' {
		t.Errorf("Expected cleared cell, got %q", got)
	}
}

func TestColorOf(t *testing.T) {
	got := colorOf(physics.Color{R: 1, G: 0.5, B: 2})
	want := tcell.NewRGBColor(255, 128, 255)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
