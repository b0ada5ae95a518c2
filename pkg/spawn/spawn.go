// Package spawn places new shapes in the patterns the interactive front ends
// offer: repeated at the world center, at a clicked point, on a matrix, on a
// golden-angle spiral, or scattered at random.
package spawn

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// GoldenAngle is 137.5 degrees in radians.
const GoldenAngle = 137.5 * math.Pi / 180

// Adder receives spawned shapes. *engine.Engine satisfies it.
type Adder interface {
	AddShape(s *physics.Shape) physics.Handle
}

// Template describes the shapes a pattern creates. Width is the circle
// radius or triangle side; Height is only used by rectangles.
type Template struct {
	Kind        physics.Kind
	Width       float64
	Height      float64
	Color       physics.Color
	Mass        float64
	Gravity     float64
	Restitution float64
	Static      bool
}

// DefaultTemplate returns a 50-unit orange circle with stock physics.
func DefaultTemplate() Template {
	props := physics.DefaultProperties()
	return Template{
		Kind:        physics.KindCircle,
		Width:       50,
		Height:      50,
		Color:       physics.Color{R: 1, G: 0.5, B: 0.2},
		Mass:        props.Mass,
		Gravity:     props.Gravity,
		Restitution: props.Restitution,
	}
}

// New builds one shape from the template at pos.
func (t Template) New(pos physics.Vector2D) *physics.Shape {
	var s *physics.Shape
	switch t.Kind {
	case physics.KindRectangle:
		s = physics.NewRectangle(pos, t.Width, t.Height, t.Color)
	case physics.KindTriangle:
		s = physics.NewTriangle(pos, t.Width, t.Color)
	default:
		s = physics.NewCircle(pos, t.Width, t.Color)
	}
	s.Physics.Mass = t.Mass
	s.Physics.Gravity = t.Gravity
	s.Physics.Restitution = t.Restitution
	s.Physics.Static = t.Static
	return s
}

// Spawn adds one shape per position and returns the handles in order.
func Spawn(a Adder, t Template, positions []physics.Vector2D) []physics.Handle {
	handles := make([]physics.Handle, 0, len(positions))
	for _, p := range positions {
		handles = append(handles, a.AddShape(t.New(p)))
	}
	return handles
}

// At adds a single shape at a clicked world position.
func At(a Adder, t Template, pos physics.Vector2D) physics.Handle {
	return a.AddShape(t.New(pos))
}

// Repeat returns count copies of the world center.
func Repeat(world physics.BoundingBox, count int) []physics.Vector2D {
	if count <= 0 {
		return nil
	}
	c := world.Center()
	out := make([]physics.Vector2D, count)
	for i := range out {
		out[i] = c
	}
	return out
}

// Matrix lays rows x columns points spacing apart, centered on the world.
type Matrix struct {
	Rows    int
	Columns int
	Spacing float64
}

// DefaultMatrix is a 3x3 grid with 50-unit spacing.
func DefaultMatrix() Matrix {
	return Matrix{Rows: 3, Columns: 3, Spacing: 50}
}

// Positions returns the grid points row by row.
func (m Matrix) Positions(world physics.BoundingBox) []physics.Vector2D {
	if m.Rows <= 0 || m.Columns <= 0 {
		return nil
	}
	totalWidth := float64(m.Columns-1) * m.Spacing
	totalHeight := float64(m.Rows-1) * m.Spacing
	start := world.Center().Sub(physics.Vec(totalWidth*0.5, totalHeight*0.5))

	out := make([]physics.Vector2D, 0, m.Rows*m.Columns)
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Columns; col++ {
			out = append(out, start.Add(physics.Vec(float64(col)*m.Spacing, float64(row)*m.Spacing)))
		}
	}
	return out
}

// Spiral places Count points on a golden-angle spiral around the world
// center. Point i sits at Radius*sqrt(i+1)*Spacing/10 from the center.
type Spiral struct {
	Count   int
	Radius  float64
	Spacing float64
}

// DefaultSpiral is ten points with radius 100 and spacing 20.
func DefaultSpiral() Spiral {
	return Spiral{Count: 10, Radius: 100, Spacing: 20}
}

// Positions returns the spiral points from the center outwards.
func (s Spiral) Positions(world physics.BoundingBox) []physics.Vector2D {
	if s.Count <= 0 {
		return nil
	}
	center := world.Center()
	out := make([]physics.Vector2D, s.Count)
	for i := range out {
		r := s.Radius * math.Sqrt(float64(i+1)) * s.Spacing / 10
		angle := float64(i) * GoldenAngle
		out[i] = center.Add(physics.Vec(r*math.Cos(angle), r*math.Sin(angle)))
	}
	return out
}

// Scatter returns n uniformly random points at least margin inside world.
func Scatter(rng *rand.Rand, world physics.BoundingBox, n int, margin float64) []physics.Vector2D {
	if n <= 0 {
		return nil
	}
	lo := world.Min.Add(physics.Vec(margin, margin))
	w := math.Max(world.Width()-2*margin, 0)
	h := math.Max(world.Height()-2*margin, 0)

	out := make([]physics.Vector2D, n)
	for i := range out {
		out[i] = lo.Add(physics.Vec(rng.Float64()*w, rng.Float64()*h))
	}
	return out
}

// Mixed adds n shapes at random points, cycling through the three kinds with
// random sizes between minSize and maxSize and random velocities up to
// maxSpeed on each axis. It is used for load testing.
func Mixed(a Adder, rng *rand.Rand, world physics.BoundingBox, n int, minSize, maxSize, maxSpeed float64) []physics.Handle {
	base := DefaultTemplate()
	kinds := [...]physics.Kind{physics.KindCircle, physics.KindRectangle, physics.KindTriangle}

	handles := make([]physics.Handle, 0, n)
	for i, p := range Scatter(rng, world, n, maxSize) {
		t := base
		t.Kind = kinds[i%len(kinds)]
		t.Width = minSize + rng.Float64()*(maxSize-minSize)
		t.Height = minSize + rng.Float64()*(maxSize-minSize)
		t.Color = physics.Color{R: rng.Float64(), G: rng.Float64(), B: rng.Float64()}

		s := t.New(p)
		s.Velocity = physics.Vec((rng.Float64()*2-1)*maxSpeed, (rng.Float64()*2-1)*maxSpeed)
		handles = append(handles, a.AddShape(s))
	}
	return handles
}
