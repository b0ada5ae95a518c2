// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// Focuser receives the camera position each frame. *engine.Engine
// satisfies it through SetFocus, which drives level-of-detail selection.
type Focuser interface {
	SetFocus(p physics.Vector2D)
}

// CameraSystem tracks a world-space point, converts between window pixels
// and world units, and forwards its position to the engine as LOD focus.
type CameraSystem struct {
	// Target to follow
	target    physics.Vector2D
	targetSet bool

	zoom    float32
	minZoom float32
	maxZoom float32

	followSpeed float32
	smoothing   bool

	currentPos physics.Vector2D

	// Viewport in pixels
	viewWidth  float32
	viewHeight float32

	focus Focuser
}

// NewCameraSystem creates a camera centered on center with a viewport of
// the given pixel size. focus may be nil.
func NewCameraSystem(center physics.Vector2D, viewWidth, viewHeight float32, focus Focuser) *CameraSystem {
	return &CameraSystem{
		zoom:        1.0,
		minZoom:     0.1,
		maxZoom:     3.0,
		followSpeed: 2.0,
		smoothing:   true,
		currentPos:  center,
		viewWidth:   viewWidth,
		viewHeight:  viewHeight,
		focus:       focus,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update reads zoom input, follows the target and publishes the focus point.
func (cs *CameraSystem) Update(dt float32) {
	if engo.Input != nil {
		cs.handleZoomInput()
	}
	if w, h := engo.GameWidth(), engo.GameHeight(); w > 0 && h > 0 {
		cs.SetViewport(w, h)
	}
	cs.Advance(dt)
}

// Advance moves the camera toward its target and pushes the resulting
// position to the focus receiver.
func (cs *CameraSystem) Advance(dt float32) {
	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}
	if cs.focus != nil {
		cs.focus.SetFocus(cs.currentPos)
	}
}

func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}
	if engo.Input.Button(ButtonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}
	step := float64(cs.followSpeed) * float64(dt)
	if step > 1 {
		step = 1
	}
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Scale(step))
}

// SetTarget sets the point the camera follows. With smoothing off the
// camera jumps there immediately.
func (cs *CameraSystem) SetTarget(target physics.Vector2D) {
	cs.target = target
	cs.targetSet = true
	if !cs.smoothing {
		cs.currentPos = target
	}
}

// ClearTarget stops following; the camera stays where it is.
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetZoom sets the zoom level, clamped to the zoom limits.
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// GetZoomLimits returns the current zoom limits
func (cs *CameraSystem) GetZoomLimits() (float32, float32) {
	return cs.minZoom, cs.maxZoom
}

// SetFollowSpeed sets the fraction of the remaining distance covered per second.
func (cs *CameraSystem) SetFollowSpeed(speed float32) {
	cs.followSpeed = speed
}

// GetFollowSpeed returns the current follow speed
func (cs *CameraSystem) GetFollowSpeed() float32 {
	return cs.followSpeed
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// IsSmoothing returns whether camera smoothing is enabled
func (cs *CameraSystem) IsSmoothing() bool {
	return cs.smoothing
}

// GetCurrentPosition returns the world point at the viewport center.
func (cs *CameraSystem) GetCurrentPosition() physics.Vector2D {
	return cs.currentPos
}

// SetViewport sets the viewport size in pixels.
func (cs *CameraSystem) SetViewport(width, height float32) {
	cs.viewWidth = width
	cs.viewHeight = height
}

// Viewport returns the viewport size in pixels.
func (cs *CameraSystem) Viewport() (float32, float32) {
	return cs.viewWidth, cs.viewHeight
}

// WorldToScreen converts world coordinates to window pixels. World Y grows
// upward, pixel Y grows downward.
func (cs *CameraSystem) WorldToScreen(worldPos physics.Vector2D) engo.Point {
	rel := worldPos.Sub(cs.currentPos).Scale(float64(cs.zoom))
	return engo.Point{
		X: float32(rel.X) + cs.viewWidth/2,
		Y: cs.viewHeight/2 - float32(rel.Y),
	}
}

// ScreenToWorld converts window pixels to world coordinates.
func (cs *CameraSystem) ScreenToWorld(screenPos engo.Point) physics.Vector2D {
	rel := physics.Vector2D{
		X: float64(screenPos.X - cs.viewWidth/2),
		Y: float64(cs.viewHeight/2 - screenPos.Y),
	}
	return rel.Scale(1 / float64(cs.zoom)).Add(cs.currentPos)
}

// ScaleLength converts a world length to pixels.
func (cs *CameraSystem) ScaleLength(l float64) float32 {
	return float32(l) * cs.zoom
}
