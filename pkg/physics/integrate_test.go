package physics

import "testing"

func TestIntegrate(t *testing.T) {
	gravity := Vec(0, -10)

	t.Run("global_gravity", func(t *testing.T) {
		s := NewCircle(Vec(0, 100), 5, White)
		s.Velocity = Vec(2, 0)
		s.Integrate(0.5, gravity, false)

		if !approxVec(s.Velocity, Vec(2, -5)) {
			t.Errorf("Velocity = %v, expected (2, -5)", s.Velocity)
		}
		if !approxVec(s.Position(), Vec(1, 97.5)) {
			t.Errorf("Position = %v, expected (1, 97.5)", s.Position())
		}
		if !approxVec(s.BoundingBox().Min, Vec(-4, 92.5)) {
			t.Errorf("bounds not refreshed: %+v", s.BoundingBox())
		}
	})

	t.Run("per_shape_gravity", func(t *testing.T) {
		s := NewCircle(Vec(0, 0), 5, White)
		s.UseGlobalGravity = false
		s.Physics.Gravity = 4
		s.Integrate(1, gravity, false)

		if !approxVec(s.Velocity, Vec(0, 4)) {
			t.Errorf("Velocity = %v, expected (0, 4)", s.Velocity)
		}
	})

	t.Run("static_does_not_move", func(t *testing.T) {
		s := NewRectangle(Vec(10, 10), 5, 5, White)
		s.Physics.Static = true
		s.Integrate(1, gravity, false)
		if s.Position() != Vec(10, 10) || s.Velocity != (Vector2D{}) {
			t.Errorf("static shape moved: %v %v", s.Position(), s.Velocity)
		}
	})

	t.Run("acceleration_consumed", func(t *testing.T) {
		s := NewCircle(Vec(0, 0), 5, White)
		s.Acceleration = Vec(6, 0)
		s.Integrate(0.5, Vector2D{}, false)
		if !approxVec(s.Velocity, Vec(3, 0)) {
			t.Errorf("Velocity = %v, expected (3, 0)", s.Velocity)
		}
		if s.Acceleration != (Vector2D{}) {
			t.Errorf("Acceleration = %v, expected reset", s.Acceleration)
		}
	})

	t.Run("friction_damping", func(t *testing.T) {
		s := NewCircle(Vec(0, 0), 5, White)
		s.Velocity = Vec(10, 0)
		s.Physics.Friction = 0.5
		s.Integrate(1, Vector2D{}, true)
		if !approxVec(s.Velocity, Vec(5, 0)) {
			t.Errorf("Velocity = %v, expected (5, 0)", s.Velocity)
		}
	})

	t.Run("rotation", func(t *testing.T) {
		s := NewRectangle(Vec(0, 0), 5, 5, White)
		s.AngularVelocity = 2
		s.Integrate(0.25, Vector2D{}, false)
		if !approxEqual(s.Rotation, 0.5) {
			t.Errorf("Rotation = %v, expected 0.5", s.Rotation)
		}
	})
}

func TestClampToWorld(t *testing.T) {
	world := BoundingBox{Min: Vec(0, 0), Max: Vec(1200, 800)}

	tests := []struct {
		name   string
		pos    Vector2D
		vel    Vector2D
		hit    bool
		expPos Vector2D
		expVel Vector2D
	}{
		{"inside", Vec(100, 100), Vec(-5, 5), false, Vec(100, 100), Vec(-5, 5)},
		{"left_edge", Vec(4, 100), Vec(-10, 0), true, Vec(10, 100), Vec(5, 0)},
		{"right_edge", Vec(1199, 100), Vec(10, 0), true, Vec(1190, 100), Vec(-5, 0)},
		{"bottom_edge", Vec(100, -3), Vec(0, -20), true, Vec(100, 10), Vec(0, 10)},
		{"top_corner", Vec(1195, 795), Vec(4, 6), true, Vec(1190, 790), Vec(-2, -3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCircle(tt.pos, 10, White)
			s.Physics.Restitution = 0.5
			s.Velocity = tt.vel

			if got := s.ClampToWorld(world); got != tt.hit {
				t.Errorf("ClampToWorld() = %v, expected %v", got, tt.hit)
			}
			if !approxVec(s.Position(), tt.expPos) {
				t.Errorf("Position = %v, expected %v", s.Position(), tt.expPos)
			}
			if !approxVec(s.Velocity, tt.expVel) {
				t.Errorf("Velocity = %v, expected %v", s.Velocity, tt.expVel)
			}
		})
	}
}
