// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-physim/pkg/physics"
)

// Button names registered by SetupInputBindings.
const (
	ButtonPause     = "pause"
	ButtonClear     = "clear"
	ButtonResetZoom = "resetZoom"
	ButtonFollow    = "follow"
)

// Dragger is the drag surface of the engine.
type Dragger interface {
	BeginDrag(pos physics.Vector2D) (physics.Handle, bool)
	UpdateDrag(pos physics.Vector2D)
	EndDrag()
	Selected() (physics.Handle, bool)
	Shape(h physics.Handle) (*physics.Shape, bool)
	ClearShapes()
}

// MouseAction is the subset of mouse events the input system reacts to.
type MouseAction int

const (
	MouseNone MouseAction = iota
	MousePress
	MouseMove
	MouseRelease
)

// InputSystem turns mouse gestures into drag calls on the engine and
// keyboard presses into simulation controls.
type InputSystem struct {
	target  Dragger
	camera  *CameraSystem
	physics *PhysicsSystem

	dragging bool
	follow   bool
}

// NewInputSystem creates an input system. physics may be nil, in which
// case the pause key does nothing.
func NewInputSystem(target Dragger, camera *CameraSystem, physics *PhysicsSystem) *InputSystem {
	return &InputSystem{
		target:  target,
		camera:  camera,
		physics: physics,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls engo's input state.
func (is *InputSystem) Update(dt float32) {
	if engo.Input == nil {
		return
	}
	mouse := engo.Input.Mouse
	var action MouseAction
	if mouse.Button == engo.MouseButtonLeft {
		switch mouse.Action {
		case engo.Press:
			action = MousePress
		case engo.Release:
			action = MouseRelease
		}
	}
	if action == MouseNone && is.dragging {
		action = MouseMove
	}
	is.HandleMouse(action, engo.Point{X: mouse.X, Y: mouse.Y})

	if engo.Input.Button(ButtonPause).JustPressed() && is.physics != nil {
		is.physics.SetPaused(!is.physics.Paused())
	}
	if engo.Input.Button(ButtonClear).JustPressed() {
		is.target.ClearShapes()
	}
	if engo.Input.Button(ButtonFollow).JustPressed() {
		is.follow = !is.follow
		if !is.follow {
			is.camera.ClearTarget()
		}
	}
	is.followSelection()
}

// HandleMouse applies one mouse event at a pixel position.
func (is *InputSystem) HandleMouse(action MouseAction, at engo.Point) {
	pos := is.camera.ScreenToWorld(at)
	switch action {
	case MousePress:
		_, is.dragging = is.target.BeginDrag(pos)
	case MouseMove:
		if is.dragging {
			is.target.UpdateDrag(pos)
		}
	case MouseRelease:
		if is.dragging {
			is.target.EndDrag()
			is.dragging = false
		}
	}
}

// Dragging reports whether a drag gesture is in progress.
func (is *InputSystem) Dragging() bool { return is.dragging }

// SetFollow makes the camera track the selected shape.
func (is *InputSystem) SetFollow(follow bool) { is.follow = follow }

func (is *InputSystem) followSelection() {
	if !is.follow {
		return
	}
	h, ok := is.target.Selected()
	if !ok {
		return
	}
	if s, ok := is.target.Shape(h); ok {
		is.camera.SetTarget(s.Position())
	}
}

// SetupInputBindings registers the keyboard controls.
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace)
	engo.Input.RegisterButton(ButtonClear, engo.KeyC)
	engo.Input.RegisterButton(ButtonResetZoom, engo.KeyR)
	engo.Input.RegisterButton(ButtonFollow, engo.KeyF)
}
