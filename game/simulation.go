package game

import (
	"context"

	"github.com/pthm-cable/avoid/control"
	"github.com/pthm-cable/avoid/telemetry"
)

// Update runs one frame of the viewer: input, then StepsPerUpdate control
// ticks unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.Step(background); err != nil {
			g.logger.Error("step failed", "tick", g.tick, "error", err)
			return
		}
	}
}

// Run steps the arena until ctx is cancelled or maxTicks control ticks have
// run. maxTicks <= 0 runs until cancelled.
func (g *Game) Run(ctx context.Context, maxTicks int32) error {
	for maxTicks <= 0 || g.tick < maxTicks {
		if err := g.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the arena by one control tick as fast as possible. Every
// robot senses the same frozen scene, then all commands are applied and
// physics runs for one control period. Runs are deterministic per seed
// and independent of the worker count.
func (g *Game) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.perfCollector.StartTick()

	// Phase 1: Freeze the scene the sonar sees
	g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	g.snapshotScene()

	// Phase 2: Sense, infer and command (parallel)
	g.perfCollector.StartPhase(telemetry.PhaseControl)
	g.stepControllers(ctx)

	// Phase 3: Latch commands into the ECS
	g.perfCollector.StartPhase(telemetry.PhaseApply)
	g.applyCommands()
	g.applyTicks()

	// Phase 4: Drive for one control period
	g.perfCollector.StartPhase(telemetry.PhasePhysics)
	for i := 0; i < g.cfg.Derived.PhysicsSteps; i++ {
		g.kinematics.Update(g.cfg.Arena.DT)
	}
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	for _, r := range g.robots {
		if r.hasTick {
			g.recordTick(r, r.tick)
		}
	}
	g.flushTelemetry()

	g.perfCollector.EndTick()
	return ctx.Err()
}

// applyCommands copies every port's last wheel command into its robot.
func (g *Game) applyCommands() {
	for _, r := range g.robots {
		w := g.wheelsMap.Get(r.entity)
		w.Left, w.Right = r.port.Command()
	}
}

// applyTicks stores the sweep each robot acted on and counts fallbacks.
func (g *Game) applyTicks() {
	for _, r := range g.robots {
		if r.hasTick {
			g.latchTick(r, r.tick)
		}
	}
}

func (g *Game) latchTick(r *robot, t control.Tick) {
	r.tick, r.hasTick = t, true
	sonar := g.sonarMap.Get(r.entity)
	sonar.Readings = append(sonar.Readings[:0], t.Sonar...)
	if t.Command.Fallback {
		g.robotMap.Get(r.entity).Fallbacks++
	}
}
