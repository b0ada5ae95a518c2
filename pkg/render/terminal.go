package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/physics"
)

// Glyphs used per shape kind.
const (
	GlyphCircle    = 'o'
	GlyphRectangle = '#'
	GlyphTriangle  = '^'
	GlyphStatic    = '='
)

// TerminalRenderer draws shapes as character cells on a tcell screen. The
// world is scaled to fit the screen with Y pointing up.
type TerminalRenderer struct {
	screen tcell.Screen
	world  physics.BoundingBox

	width  int
	height int
	scaleX float64
	scaleY float64

	status string
}

var _ Renderer = (*TerminalRenderer)(nil)

// NewTerminalRenderer wraps an initialized screen.
func NewTerminalRenderer(screen tcell.Screen, world physics.BoundingBox) (*TerminalRenderer, error) {
	if screen == nil {
		return nil, fmt.Errorf("failed to create terminal renderer: nil screen")
	}
	if world.Width() <= 0 || world.Height() <= 0 {
		return nil, fmt.Errorf("failed to create terminal renderer: empty world %vx%v", world.Width(), world.Height())
	}
	r := &TerminalRenderer{screen: screen, world: world}
	r.Resize()
	return r, nil
}

// Resize recomputes the world-to-cell scale from the screen size. The last
// row is reserved for the status line.
func (r *TerminalRenderer) Resize() {
	w, h := r.screen.Size()
	if h > 1 {
		h--
	}
	r.width, r.height = max(w, 1), max(h, 1)
	r.scaleX = r.world.Width() / float64(r.width)
	r.scaleY = r.world.Height() / float64(r.height)
}

// SetWorld changes the world rectangle being displayed.
func (r *TerminalRenderer) SetWorld(world physics.BoundingBox) {
	if world.Width() <= 0 || world.Height() <= 0 {
		return
	}
	r.world = world
	r.Resize()
}

// SetStatus sets the text drawn on the bottom row.
func (r *TerminalRenderer) SetStatus(text string) {
	r.status = text
}

// WorldToScreen converts a world position to a cell.
func (r *TerminalRenderer) WorldToScreen(pos physics.Vector2D) (int, int) {
	x := int(math.Floor((pos.X - r.world.Min.X) / r.scaleX))
	y := r.height - 1 - int(math.Floor((pos.Y-r.world.Min.Y)/r.scaleY))
	return x, y
}

// ScreenToWorld returns the world position at the center of a cell.
func (r *TerminalRenderer) ScreenToWorld(x, y int) physics.Vector2D {
	return physics.Vec(
		r.world.Min.X+(float64(x)+0.5)*r.scaleX,
		r.world.Min.Y+(float64(r.height-1-y)+0.5)*r.scaleY,
	)
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	r.screen.Clear()
}

// RenderShape implements Renderer. Every cell whose center lies inside the
// shape is filled; shapes smaller than a cell still mark their center.
func (r *TerminalRenderer) RenderShape(s engine.ShapeSnapshot) {
	style := tcell.StyleDefault.Foreground(colorOf(s.Color))
	if s.Dragging {
		style = style.Reverse(true)
	}
	glyph := glyphOf(s)

	x0, y1 := r.WorldToScreen(s.Bounds.Min)
	x1, y0 := r.WorldToScreen(s.Bounds.Max)
	drawn := false
	for y := max(y0, 0); y <= min(y1, r.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.width-1); x++ {
			if s.Contains(r.ScreenToWorld(x, y)) {
				r.screen.SetContent(x, y, glyph, nil, style)
				drawn = true
			}
		}
	}
	if !drawn {
		if x, y := r.WorldToScreen(s.Position); r.inside(x, y) {
			r.screen.SetContent(x, y, glyph, nil, style)
		}
	}
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() {
	if r.status != "" {
		style := tcell.StyleDefault.Reverse(true)
		x := 0
		for _, ch := range r.status {
			if x >= r.width {
				break
			}
			r.screen.SetContent(x, r.height, ch, nil, style)
			x++
		}
	}
	r.screen.Show()
}

func (r *TerminalRenderer) inside(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

func glyphOf(s engine.ShapeSnapshot) rune {
	if s.Static {
		return GlyphStatic
	}
	switch s.Kind {
	case physics.KindRectangle:
		return GlyphRectangle
	case physics.KindTriangle:
		return GlyphTriangle
	default:
		return GlyphCircle
	}
}

func colorOf(c physics.Color) tcell.Color {
	to8 := func(v float64) int32 {
		return int32(physics.Clamp(v, 0, 1)*255 + 0.5)
	}
	return tcell.NewRGBColor(to8(c.R), to8(c.G), to8(c.B))
}
