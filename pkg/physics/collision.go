// pkg/physics/collision.go
package physics

import "math"

// DegenerateEpsilon is the center distance below which a contact normal
// cannot be derived and the fixed fallback normal is used instead.
const DegenerateEpsilon = 0.001

// fallbackNormal is the contact normal used for degenerate contacts.
var fallbackNormal = Vector2D{X: 1, Y: 0}

// CollisionResult is the outcome of a narrow-phase test. Normal points from
// the first shape toward the second and Penetration is never negative.
type CollisionResult struct {
	Collided    bool
	Normal      Vector2D
	Penetration float64
}

// CheckCollision runs the exact pairwise test for a and b. Swapping the
// arguments negates the normal, except for the coincident-circle fallback.
// Any pair that involves a triangle is tested on bounding boxes only.
// Box-box normals follow the same a-to-b rule on the axis of least overlap,
// so they point away from the box with the smaller max edge rather than
// toward it.
func CheckCollision(a, b *Shape) CollisionResult {
	switch {
	case a.kind == KindTriangle || b.kind == KindTriangle:
		return boxCollision(a.bounds, b.bounds, true)
	case a.kind == KindCircle && b.kind == KindCircle:
		return circleCircle(a, b)
	case a.kind == KindRectangle && b.kind == KindRectangle:
		return boxCollision(a.bounds, b.bounds, false)
	case a.kind == KindCircle && b.kind == KindRectangle:
		res := circleRectangle(a, b)
		res.Normal = res.Normal.Negate()
		return res
	case a.kind == KindRectangle && b.kind == KindCircle:
		return circleRectangle(b, a)
	default:
		return CollisionResult{}
	}
}

// CheckCoarseCollision tests two shapes on their bounding boxes alone.
func CheckCoarseCollision(a, b *Shape) CollisionResult {
	return boxCollision(a.bounds, b.bounds, true)
}

func circleCircle(a, b *Shape) CollisionResult {
	diff := b.position.Sub(a.position)
	distance := diff.Length()
	radiusSum := a.radius + b.radius

	if distance >= radiusSum {
		return CollisionResult{}
	}
	if distance < DegenerateEpsilon {
		return CollisionResult{Collided: true, Normal: fallbackNormal, Penetration: radiusSum}
	}
	return CollisionResult{
		Collided:    true,
		Normal:      diff.Scale(1 / distance),
		Penetration: radiusSum - distance,
	}
}

// circleRectangle returns a normal pointing from the rectangle to the circle.
func circleRectangle(circle, rect *Shape) CollisionResult {
	extent := BoxAround(rect.position, rect.width, rect.height)
	closest := circle.position.ClampTo(extent.Min, extent.Max)

	diff := circle.position.Sub(closest)
	distance := diff.Length()
	if distance >= circle.radius {
		return CollisionResult{}
	}
	if distance < DegenerateEpsilon {
		return CollisionResult{Collided: true, Normal: fallbackNormal, Penetration: circle.radius}
	}
	return CollisionResult{
		Collided:    true,
		Normal:      diff.Scale(1 / distance),
		Penetration: circle.radius - distance,
	}
}

// boxCollision resolves two boxes on their axis of least overlap. On equal
// overlap the Y axis wins. With inclusive set, touching boxes collide with
// zero penetration.
func boxCollision(a, b BoundingBox, inclusive bool) CollisionResult {
	overlapX := math.Min(a.Max.X-b.Min.X, b.Max.X-a.Min.X)
	overlapY := math.Min(a.Max.Y-b.Min.Y, b.Max.Y-a.Min.Y)

	if inclusive {
		if !a.Intersects(b) {
			return CollisionResult{}
		}
	} else if overlapX <= 0 || overlapY <= 0 {
		return CollisionResult{}
	}

	if overlapX < overlapY {
		return CollisionResult{
			Collided:    true,
			Normal:      Vector2D{X: axisSign(a.Max.X, b.Max.X)},
			Penetration: math.Max(overlapX, 0),
		}
	}
	return CollisionResult{
		Collided:    true,
		Normal:      Vector2D{Y: axisSign(a.Max.Y, b.Max.Y)},
		Penetration: math.Max(overlapY, 0),
	}
}

// axisSign points from the box with the smaller max edge toward the other.
func axisSign(aMax, bMax float64) float64 {
	if aMax < bMax {
		return 1
	}
	return -1
}
