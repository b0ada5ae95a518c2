// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/logging"
)

// SceneType is the engo scene name.
const SceneType = "PhysicsScene"

// PhysicsScene hosts a simulation engine in an engo window.
type PhysicsScene struct {
	engine   *engine.Engine
	timeStep float64
	logger   *logging.Logger

	world   *ecs.World
	physics *PhysicsSystem
	shapes  *ShapeRenderSystem
	camera  *CameraSystem
	input   *InputSystem
	hud     *HUDSystem
}

// NewPhysicsScene creates a scene that steps eng at timeStep seconds.
func NewPhysicsScene(eng *engine.Engine, timeStep float64, logger *logging.Logger) *PhysicsScene {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PhysicsScene{
		engine:   eng,
		timeStep: timeStep,
		logger:   logger,
		world:    &ecs.World{},
	}
}

// Type returns the scene type (required by Engo)
func (scene *PhysicsScene) Type() string {
	return SceneType
}

// Preload is called before the scene starts (required by Engo)
func (scene *PhysicsScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *PhysicsScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		world = &ecs.World{}
	}
	scene.world = world

	common.SetBackground(color.Black)
	SetupInputBindings()

	renderSystem := &common.RenderSystem{}
	scene.build(renderSystem, engo.GameWidth(), engo.GameHeight())

	// Physics before drawing so the frame shows the latest state.
	world.AddSystem(scene.physics)
	world.AddSystem(scene.input)
	world.AddSystem(scene.camera)
	world.AddSystem(scene.shapes)
	world.AddSystem(scene.hud)
	world.AddSystem(renderSystem)

	scene.logger.Info(context.Background(), "scene started",
		"shapes", scene.engine.ShapeCount(),
		"width", engo.GameWidth(),
		"height", engo.GameHeight(),
	)
}

// build wires the scene systems against sink with a viewport of the
// given pixel size.
func (scene *PhysicsScene) build(sink RenderSink, width, height float32) {
	bounds := scene.engine.WorldBounds()
	scene.camera = NewCameraSystem(bounds.Center(), width, height, scene.engine)
	scene.physics = NewPhysicsSystem(scene.engine, scene.timeStep, DefaultMaxSubsteps)
	scene.shapes = NewShapeRenderSystem(scene.engine, sink, scene.camera)
	scene.input = NewInputSystem(scene.engine, scene.camera, scene.physics)
	scene.hud = NewHUDSystem(scene.engine, scene.logger, DefaultHUDInterval)
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *PhysicsScene) Exit() {
	scene.logger.Info(context.Background(), "scene exited", "frame", scene.engine.Frame())
}

// Run opens a window and blocks until it is closed.
func Run(scene *PhysicsScene, title string, width, height int) {
	engo.Run(engo.RunOptions{
		Title:          title,
		Width:          width,
		Height:         height,
		StandardInputs: true,
		FPSLimit:       60,
	}, scene)
}
