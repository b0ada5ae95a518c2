// pkg/render/engo/camera_test.go
package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-physim/pkg/physics"
)

type focusRecorder struct {
	calls int
	last  physics.Vector2D
}

func (f *focusRecorder) SetFocus(p physics.Vector2D) {
	f.calls++
	f.last = p
}

func TestNewCameraSystem(t *testing.T) {
	center := physics.Vec(600, 400)
	camera := NewCameraSystem(center, 800, 600, nil)

	if camera.GetZoom() != 1.0 {
		t.Errorf("Expected default zoom 1.0, got %f", camera.GetZoom())
	}
	if lo, hi := camera.GetZoomLimits(); lo != 0.1 || hi != 3.0 {
		t.Errorf("Expected zoom limits [0.1, 3], got [%f, %f]", lo, hi)
	}
	if camera.GetFollowSpeed() != 2.0 {
		t.Errorf("Expected default followSpeed 2.0, got %f", camera.GetFollowSpeed())
	}
	if !camera.IsSmoothing() {
		t.Error("Expected smoothing to be enabled by default")
	}
	if camera.GetCurrentPosition() != center {
		t.Errorf("Expected camera at %v, got %v", center, camera.GetCurrentPosition())
	}
	if w, h := camera.Viewport(); w != 800 || h != 600 {
		t.Errorf("Viewport() = %v x %v", w, h)
	}
}

func TestCameraSystem_ZoomClamp(t *testing.T) {
	camera := NewCameraSystem(physics.Vector2D{}, 100, 100, nil)

	testCases := []struct {
		name     string
		zoom     float32
		expected float32
	}{
		{"ValidZoom", 1.5, 1.5},
		{"BelowMinZoom", 0.05, 0.1},
		{"AboveMaxZoom", 5.0, 3.0},
		{"ExactMinZoom", 0.1, 0.1},
		{"ExactMaxZoom", 3.0, 3.0},
		{"NegativeZoom", -1.0, 0.1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			camera.SetZoom(tc.zoom)
			if actual := camera.GetZoom(); actual != tc.expected {
				t.Errorf("Expected zoom %f, got %f", tc.expected, actual)
			}
		})
	}

	t.Run("LimitsReclamp", func(t *testing.T) {
		camera.SetZoom(2.5)
		camera.SetZoomLimits(0.5, 2.0)
		if camera.GetZoom() != 2.0 {
			t.Errorf("Expected zoom clamped to 2.0, got %f", camera.GetZoom())
		}
	})
}

func TestCameraSystem_Coordinates(t *testing.T) {
	camera := NewCameraSystem(physics.Vec(600, 400), 800, 600, nil)

	testCases := []struct {
		name   string
		zoom   float32
		world  physics.Vector2D
		screen engo.Point
	}{
		{"center", 1, physics.Vec(600, 400), engo.Point{X: 400, Y: 300}},
		{"right and up", 1, physics.Vec(700, 500), engo.Point{X: 500, Y: 200}},
		{"left and down", 1, physics.Vec(500, 300), engo.Point{X: 300, Y: 400}},
		{"zoomed", 2, physics.Vec(650, 350), engo.Point{X: 500, Y: 400}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			camera.SetZoom(tc.zoom)
			got := camera.WorldToScreen(tc.world)
			if math.Abs(float64(got.X-tc.screen.X)) > 1e-3 || math.Abs(float64(got.Y-tc.screen.Y)) > 1e-3 {
				t.Errorf("WorldToScreen(%v) = %v, want %v", tc.world, got, tc.screen)
			}
			back := camera.ScreenToWorld(got)
			if back.Distance(tc.world) > 1e-3 {
				t.Errorf("ScreenToWorld round trip = %v, want %v", back, tc.world)
			}
		})
	}

	camera.SetZoom(2)
	if got := camera.ScaleLength(25); got != 50 {
		t.Errorf("ScaleLength(25) at zoom 2 = %v", got)
	}
}

func TestCameraSystem_Follow(t *testing.T) {
	t.Run("Smoothing", func(t *testing.T) {
		focus := &focusRecorder{}
		camera := NewCameraSystem(physics.Vec(0, 0), 100, 100, focus)
		camera.SetTarget(physics.Vec(100, 0))

		if camera.GetCurrentPosition() != physics.Vec(0, 0) {
			t.Fatal("smoothed camera should not jump on SetTarget")
		}
		camera.Advance(0.25) // covers half the distance at speed 2
		if got := camera.GetCurrentPosition(); math.Abs(got.X-50) > 1e-9 {
			t.Errorf("after Advance(0.25) X = %v, want 50", got.X)
		}
		if focus.calls != 1 || focus.last != camera.GetCurrentPosition() {
			t.Errorf("focus = %+v, want one call at camera position", focus)
		}

		camera.Advance(10) // step fraction is capped at 1
		if got := camera.GetCurrentPosition(); got != physics.Vec(100, 0) {
			t.Errorf("after long Advance position = %v", got)
		}
	})

	t.Run("Immediate", func(t *testing.T) {
		camera := NewCameraSystem(physics.Vec(0, 0), 100, 100, nil)
		camera.EnableSmoothing(false)
		camera.SetTarget(physics.Vec(30, -20))
		if camera.GetCurrentPosition() != physics.Vec(30, -20) {
			t.Errorf("position = %v", camera.GetCurrentPosition())
		}
	})

	t.Run("ClearTarget", func(t *testing.T) {
		camera := NewCameraSystem(physics.Vec(0, 0), 100, 100, nil)
		camera.SetTarget(physics.Vec(100, 0))
		camera.ClearTarget()
		camera.Advance(1)
		if camera.GetCurrentPosition() != physics.Vec(0, 0) {
			t.Errorf("camera moved without a target: %v", camera.GetCurrentPosition())
		}
	})
}
