package physics

// BoundingBox is an axis-aligned box. Intersects is the overlap primitive
// every coarse check goes through.
type BoundingBox struct {
	Min Vector2D
	Max Vector2D
}

// BoxAround builds the box of the given extent centered on center.
func BoxAround(center Vector2D, width, height float64) BoundingBox {
	half := Vector2D{X: width * 0.5, Y: height * 0.5}
	return BoundingBox{Min: center.Sub(half), Max: center.Add(half)}
}

// Intersects reports whether two boxes overlap. Touching edges count.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y
}

// Contains reports whether point lies inside the box, edges included.
func (b BoundingBox) Contains(point Vector2D) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X &&
		point.Y >= b.Min.Y && point.Y <= b.Max.Y
}

// Width of the box along X.
func (b BoundingBox) Width() float64 { return b.Max.X - b.Min.X }

// Height of the box along Y.
func (b BoundingBox) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Vector2D {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Area returns width times height.
func (b BoundingBox) Area() float64 {
	return b.Width() * b.Height()
}
