package game

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/avoid/control"
	"github.com/pthm-cable/avoid/telemetry"
)

// robotTick is a control tick waiting to be recorded by the physics loop.
type robotTick struct {
	r *robot
	t control.Tick
}

func (g *Game) queueTick(r *robot, t control.Tick) {
	g.pendingMu.Lock()
	g.pending = append(g.pending, robotTick{r: r, t: t})
	g.pendingMu.Unlock()
}

// RunRealtime runs every control loop on its own goroutine at the
// configured period, against physics advancing in wall-clock time. It
// returns when ctx is cancelled or after maxTicks control periods
// (maxTicks <= 0 runs until cancelled). Realtime runs are not
// reproducible; use Run for that.
func (g *Game) RunRealtime(ctx context.Context, maxTicks int32) error {
	g.realtime = true
	defer func() { g.realtime = false }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	for _, r := range g.robots {
		eg.Go(func() error { return r.loop.Run(ctx) })
	}
	eg.Go(func() error {
		defer cancel()
		return g.physicsLoop(ctx, maxTicks)
	})

	err := eg.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// physicsLoop owns the ECS world while loops run concurrently. It only
// shares the arena view and ports with them.
func (g *Game) physicsLoop(ctx context.Context, maxTicks int32) error {
	dt := g.cfg.Arena.DT
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	steps := 0
	g.perfCollector.StartTick()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		g.perfCollector.StartPhase(telemetry.PhaseApply)
		g.applyCommands()

		g.perfCollector.StartPhase(telemetry.PhasePhysics)
		g.kinematics.Update(dt)

		g.perfCollector.StartPhase(telemetry.PhaseSnapshot)
		g.snapshotScene()

		steps++
		if steps < g.cfg.Derived.PhysicsSteps {
			continue
		}
		steps = 0
		g.tick++

		g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
		g.pendingMu.Lock()
		batch := g.pending
		g.pending = nil
		g.pendingMu.Unlock()
		for _, rt := range batch {
			g.latchTick(rt.r, rt.t)
			g.recordTick(rt.r, rt.t)
		}
		g.flushTelemetry()
		g.perfCollector.EndTick()

		if maxTicks > 0 && g.tick >= maxTicks {
			return nil
		}
		g.perfCollector.StartTick()
	}
}
