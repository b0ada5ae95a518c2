// pkg/physics/shape.go
package physics

import (
	"math"
	"time"
)

// Kind identifies which primitive a Shape is.
type Kind int

const (
	KindCircle Kind = iota
	KindRectangle
	KindTriangle
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindRectangle:
		return "rectangle"
	case KindTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Properties is the physical record of a shape.
type Properties struct {
	Mass        float64
	Gravity     float64 // scalar used when the shape opts out of global gravity
	Friction    float64
	Restitution float64
	Static      bool
}

// DefaultProperties returns the properties every new shape starts with.
func DefaultProperties() Properties {
	return Properties{
		Mass:        1.0,
		Gravity:     9.81,
		Friction:    0.1,
		Restitution: 0.8,
	}
}

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R, G, B float64
}

// White is the default shape color.
var White = Color{R: 1, G: 1, B: 1}

// DragHistorySize bounds the number of cursor samples kept while dragging.
const DragHistorySize = 5

// minReleaseInterval is the smallest sample spacing that yields a release velocity.
const minReleaseInterval = 0.0001

type dragSample struct {
	pos Vector2D
	at  time.Time
}

// Shape is a rigid body of one of three primitive kinds. Geometry is only
// changed through setters so the cached bounding box never goes stale.
type Shape struct {
	kind Kind

	position Vector2D
	Velocity Vector2D
	// Acceleration accumulates forces for the next integration and is reset afterwards.
	Acceleration    Vector2D
	Rotation        float64
	AngularVelocity float64
	Color           Color
	Physics         Properties
	// UseGlobalGravity selects the world gravity vector over Physics.Gravity.
	UseGlobalGravity bool

	radius   float64
	width    float64
	height   float64
	side     float64
	vertices [3]Vector2D

	bounds BoundingBox

	dragging    bool
	dragOffset  Vector2D
	dragHistory *RingBuffer[dragSample]
}

func newShape(kind Kind, pos Vector2D, color Color) *Shape {
	return &Shape{
		kind:             kind,
		position:         pos,
		Color:            color,
		Physics:          DefaultProperties(),
		UseGlobalGravity: true,
		dragHistory:      NewRingBuffer[dragSample](DragHistorySize),
	}
}

// NewCircle creates a circle centered on pos.
func NewCircle(pos Vector2D, radius float64, color Color) *Shape {
	s := newShape(KindCircle, pos, color)
	s.radius = radius
	s.refresh()
	return s
}

// NewRectangle creates an axis-aligned rectangle centered on pos.
func NewRectangle(pos Vector2D, width, height float64, color Color) *Shape {
	s := newShape(KindRectangle, pos, color)
	s.width = width
	s.height = height
	s.refresh()
	return s
}

// NewTriangle creates an equilateral triangle whose centroid is pos.
func NewTriangle(pos Vector2D, side float64, color Color) *Shape {
	s := newShape(KindTriangle, pos, color)
	s.side = side
	s.refresh()
	return s
}

// Kind returns the primitive kind.
func (s *Shape) Kind() Kind { return s.kind }

// Position returns the shape center.
func (s *Shape) Position() Vector2D { return s.position }

// SetPosition moves the shape and recomputes its bounds.
func (s *Shape) SetPosition(pos Vector2D) {
	s.position = pos
	s.refresh()
}

// Radius of a circle; zero for other kinds.
func (s *Shape) Radius() float64 { return s.radius }

// SetRadius resizes a circle. Values are not validated.
func (s *Shape) SetRadius(r float64) {
	s.radius = r
	s.refresh()
}

// Width of a rectangle; zero for other kinds.
func (s *Shape) Width() float64 { return s.width }

// Height of a rectangle; zero for other kinds.
func (s *Shape) Height() float64 { return s.height }

// SetSize resizes a rectangle. Values are not validated.
func (s *Shape) SetSize(width, height float64) {
	s.width = width
	s.height = height
	s.refresh()
}

// SideLength of a triangle; zero for other kinds.
func (s *Shape) SideLength() float64 { return s.side }

// SetSideLength resizes a triangle and rebuilds its vertices.
func (s *Shape) SetSideLength(side float64) {
	s.side = side
	s.refresh()
}

// Vertices returns the cached triangle vertices (top, bottom-left, bottom-right).
func (s *Shape) Vertices() [3]Vector2D { return s.vertices }

// BoundingBox returns the cached axis-aligned bounds.
func (s *Shape) BoundingBox() BoundingBox { return s.bounds }

// BoundingRadius is the radius of a circle enclosing the shape.
func (s *Shape) BoundingRadius() float64 {
	switch s.kind {
	case KindRectangle:
		return math.Sqrt(s.width*s.width+s.height*s.height) * 0.5
	case KindTriangle:
		return s.side * 0.577
	default:
		return s.radius
	}
}

// Mass is shorthand for Physics.Mass.
func (s *Shape) Mass() float64 { return s.Physics.Mass }

// InverseMass returns 1/mass, or zero for a non-positive mass.
func (s *Shape) InverseMass() float64 {
	if s.Physics.Mass <= 0 {
		return 0
	}
	return 1 / s.Physics.Mass
}

// IsStatic is shorthand for Physics.Static.
func (s *Shape) IsStatic() bool { return s.Physics.Static }

// ContainsPoint reports whether point lies inside the shape.
func (s *Shape) ContainsPoint(point Vector2D) bool {
	switch s.kind {
	case KindCircle:
		return point.Distance(s.position) <= s.radius
	case KindRectangle:
		return BoxAround(s.position, s.width, s.height).Contains(point)
	case KindTriangle:
		return PointInTriangle(s.vertices, point)
	default:
		return false
	}
}

func triangleHeight(side float64) float64 {
	return side * math.Sqrt(3) / 2
}

// PointInTriangle is a barycentric point-in-triangle test.
func PointInTriangle(v [3]Vector2D, p Vector2D) bool {
	v0 := v[1].Sub(v[0])
	v1 := v[2].Sub(v[0])
	v2 := p.Sub(v[0])

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return false
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	w := (dot00*dot12 - dot01*dot02) * inv
	return u >= 0 && w >= 0 && u+w <= 1
}

// refresh recomputes everything derived from position and size.
func (s *Shape) refresh() {
	switch s.kind {
	case KindCircle:
		r := Vector2D{X: s.radius, Y: s.radius}
		s.bounds = BoundingBox{Min: s.position.Sub(r), Max: s.position.Add(r)}
	case KindRectangle:
		s.bounds = BoxAround(s.position, s.width, s.height)
	case KindTriangle:
		h := triangleHeight(s.side)
		s.vertices = [3]Vector2D{
			s.position.Add(Vector2D{X: 0, Y: h / 3}),
			s.position.Add(Vector2D{X: -s.side / 2, Y: -h / 3}),
			s.position.Add(Vector2D{X: s.side / 2, Y: -h / 3}),
		}
		s.bounds = BoundingBox{
			Min: s.position.Sub(Vector2D{X: s.side / 2, Y: h / 3}),
			Max: s.position.Add(Vector2D{X: s.side / 2, Y: h * 2 / 3}),
		}
	}
}

// IsDragging reports whether a drag is in progress.
func (s *Shape) IsDragging() bool { return s.dragging }

// BeginDrag grabs the shape at cursor. Motion is zeroed and the history restarts.
func (s *Shape) BeginDrag(cursor Vector2D, at time.Time) {
	s.dragging = true
	s.dragOffset = cursor.Sub(s.position)
	s.Velocity = Vector2D{}
	s.AngularVelocity = 0
	s.dragHistory.Reset()
	s.dragHistory.Push(dragSample{pos: cursor, at: at})
}

// UpdateDrag follows the cursor, keeping the grab offset.
func (s *Shape) UpdateDrag(cursor Vector2D, at time.Time) {
	if !s.dragging {
		return
	}
	s.SetPosition(cursor.Sub(s.dragOffset))
	s.dragHistory.Push(dragSample{pos: cursor, at: at})
}

// EndDrag releases the shape. With at least two samples the velocity is
// derived from the last two; otherwise it is left unchanged.
func (s *Shape) EndDrag() {
	s.dragging = false
	last, okLast := s.dragHistory.Last(0)
	prev, okPrev := s.dragHistory.Last(1)
	if okLast && okPrev {
		dt := last.at.Sub(prev.at).Seconds()
		if dt > minReleaseInterval {
			s.Velocity = last.pos.Sub(prev.pos).Scale(1 / dt)
		}
	}
	s.dragHistory.Reset()
}

// ApplyForce adds force/mass to the acceleration consumed by the next integration.
func (s *Shape) ApplyForce(force Vector2D) {
	if s.IsStatic() || s.Physics.Mass <= 0 {
		return
	}
	s.Acceleration = s.Acceleration.Add(force.Scale(1 / s.Physics.Mass))
}

// ApplyImpulse changes velocity by impulse/mass immediately.
func (s *Shape) ApplyImpulse(impulse Vector2D) {
	if s.IsStatic() || s.Physics.Mass <= 0 {
		return
	}
	s.Velocity = s.Velocity.Add(impulse.Scale(1 / s.Physics.Mass))
}
