// pkg/render/engo/system.go
package engo

import (
	"github.com/EngoEngine/ecs"
)

// DefaultMaxSubsteps bounds the fixed steps taken in one frame.
const DefaultMaxSubsteps = 5

// Stepper advances a simulation by dt seconds.
type Stepper interface {
	Step(dt float64)
}

// PhysicsSystem steps the engine at a fixed rate from engo's variable
// frame delta. Leftover time carries over to the next frame.
type PhysicsSystem struct {
	sim         Stepper
	timeStep    float64
	maxSubsteps int

	accumulator float64
	paused      bool
	steps       uint64
}

// NewPhysicsSystem creates a system that calls sim.Step(timeStep) as many
// times per frame as the elapsed time allows, up to maxSubsteps.
func NewPhysicsSystem(sim Stepper, timeStep float64, maxSubsteps int) *PhysicsSystem {
	if maxSubsteps < 1 {
		maxSubsteps = DefaultMaxSubsteps
	}
	return &PhysicsSystem{
		sim:         sim,
		timeStep:    timeStep,
		maxSubsteps: maxSubsteps,
	}
}

// Remove satisfies the ecs.System interface
func (ps *PhysicsSystem) Remove(basic ecs.BasicEntity) {}

// Update consumes dt in fixed steps.
func (ps *PhysicsSystem) Update(dt float32) {
	if ps.paused || ps.timeStep <= 0 {
		return
	}
	ps.accumulator += float64(dt)
	n := 0
	for ps.accumulator >= ps.timeStep && n < ps.maxSubsteps {
		ps.sim.Step(ps.timeStep)
		ps.accumulator -= ps.timeStep
		n++
	}
	if n == ps.maxSubsteps {
		// Drop the backlog instead of spiraling.
		ps.accumulator = 0
	}
	ps.steps += uint64(n)
}

// SetPaused stops or resumes stepping. Pausing discards accumulated time.
func (ps *PhysicsSystem) SetPaused(paused bool) {
	ps.paused = paused
	ps.accumulator = 0
}

// Paused reports whether stepping is suspended.
func (ps *PhysicsSystem) Paused() bool { return ps.paused }

// Steps returns the number of fixed steps taken so far.
func (ps *PhysicsSystem) Steps() uint64 { return ps.steps }
