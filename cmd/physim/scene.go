// cmd/physim/scene.go
package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/opd-ai/go-physim/pkg/physics"
	"github.com/opd-ai/go-physim/pkg/spawn"
)

// sceneTarget is what populate needs from the engine.
type sceneTarget interface {
	spawn.Adder
	WorldBounds() physics.BoundingBox
}

// populate adds the named demo scene to the engine.
func populate(eng sceneTarget, scene string, count int, seed uint64) error {
	world := eng.WorldBounds()
	tmpl := spawn.DefaultTemplate()
	tmpl.Width = 20

	switch scene {
	case "empty":
		return nil
	case "mixed":
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		spawn.Mixed(eng, rng, world, count, 8, 30, 150)
	case "matrix":
		m := spawn.DefaultMatrix()
		m.Spacing = 3 * tmpl.Width
		spawn.Spawn(eng, tmpl, m.Positions(world))
	case "spiral":
		spawn.Spawn(eng, tmpl, spawn.DefaultSpiral().Positions(world))
	case "repeat":
		spawn.Spawn(eng, tmpl, spawn.Repeat(world, count))
	default:
		return fmt.Errorf("unknown scene %q", scene)
	}
	addFloor(eng, world)
	return nil
}

// addFloor places a static slab along the bottom of the world so resting
// contacts are visible in every scene.
func addFloor(eng spawn.Adder, world physics.BoundingBox) {
	floor := spawn.DefaultTemplate()
	floor.Kind = physics.KindRectangle
	floor.Width = world.Width() * 0.8
	floor.Height = 20
	floor.Static = true
	floor.Color = physics.Color{R: 0.5, G: 0.5, B: 0.5}
	spawn.At(eng, floor, physics.Vec(world.Center().X, world.Min.Y+floor.Height))
}
