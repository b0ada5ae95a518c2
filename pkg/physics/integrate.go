package physics

// Integrate advances a non-static shape by dt using semi-implicit Euler.
// gravity is the world vector; shapes that opt out of global gravity fall
// along Y with their own Physics.Gravity scalar. Accumulated acceleration is
// consumed and cleared.
func (s *Shape) Integrate(dt float64, gravity Vector2D, applyFriction bool) {
	if s.IsStatic() || s.dragging {
		s.Acceleration = Vector2D{}
		return
	}

	g := gravity
	if !s.UseGlobalGravity {
		g = Vector2D{Y: s.Physics.Gravity}
	}

	s.Velocity = s.Velocity.Add(g.Add(s.Acceleration).Scale(dt))
	if applyFriction {
		damping := Clamp(1-s.Physics.Friction*dt, 0, 1)
		s.Velocity = s.Velocity.Scale(damping)
		s.AngularVelocity *= damping
	}
	s.Acceleration = Vector2D{}

	s.Rotation += s.AngularVelocity * dt
	s.SetPosition(s.position.Add(s.Velocity.Scale(dt)))
}

// ClampToWorld keeps the shape's bounding radius inside world, reflecting the
// velocity component of every crossed edge by -restitution.
// It reports whether any edge was hit.
func (s *Shape) ClampToWorld(world BoundingBox) bool {
	if s.IsStatic() {
		return false
	}

	r := s.BoundingRadius()
	pos := s.position
	e := s.Physics.Restitution
	hit := false

	if pos.X < world.Min.X+r {
		pos.X = world.Min.X + r
		s.Velocity.X = -s.Velocity.X * e
		hit = true
	} else if pos.X > world.Max.X-r {
		pos.X = world.Max.X - r
		s.Velocity.X = -s.Velocity.X * e
		hit = true
	}

	if pos.Y < world.Min.Y+r {
		pos.Y = world.Min.Y + r
		s.Velocity.Y = -s.Velocity.Y * e
		hit = true
	} else if pos.Y > world.Max.Y-r {
		pos.Y = world.Max.Y - r
		s.Velocity.Y = -s.Velocity.Y * e
		hit = true
	}

	if hit {
		s.SetPosition(pos)
	}
	return hit
}
