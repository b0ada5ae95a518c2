package physics

import "math"

// Positional correction constants.
const (
	// PenetrationSlop is the overlap left uncorrected to keep resting contacts stable.
	PenetrationSlop = 0.05
	// CorrectionPercent is the fraction of the remaining overlap removed per step.
	CorrectionPercent = 0.2
)

// Contact is a confirmed collision between two stored shapes.
type Contact struct {
	A, B        Handle
	Normal      Vector2D
	Penetration float64
}

// ResolveCollision applies the velocity impulse and positional correction for
// one contact. The normal must point from a toward b. The impulse magnitude
// uses both shapes' masses, static or not; static shapes are never moved and
// a pair of static shapes is left untouched.
func ResolveCollision(a, b *Shape, normal Vector2D, penetration float64) {
	if a.IsStatic() && b.IsStatic() {
		return
	}

	invA, invB := a.InverseMass(), b.InverseMass()

	relVel := b.Velocity.Sub(a.Velocity)
	alongNormal := relVel.Dot(normal)
	if alongNormal < 0 && invA+invB > 0 {
		e := math.Min(a.Physics.Restitution, b.Physics.Restitution)
		j := -(1 + e) * alongNormal / (invA + invB)
		impulse := normal.Scale(j)
		if !a.IsStatic() {
			a.Velocity = a.Velocity.Sub(impulse.Scale(invA))
		}
		if !b.IsStatic() {
			b.Velocity = b.Velocity.Add(impulse.Scale(invB))
		}
	}

	massA, massB := a.Mass(), b.Mass()
	total := massA + massB
	if total <= 0 {
		return
	}
	corrected := math.Max(penetration-PenetrationSlop, 0)
	correction := normal.Scale(corrected / total * CorrectionPercent)
	if !a.IsStatic() {
		a.SetPosition(a.position.Sub(correction.Scale(massB / total)))
	}
	if !b.IsStatic() {
		b.SetPosition(b.position.Add(correction.Scale(massA / total)))
	}
}
