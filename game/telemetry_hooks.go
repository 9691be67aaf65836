package game

import (
	"github.com/pthm-cable/avoid/control"
	"github.com/pthm-cable/avoid/telemetry"
)

// recordTick feeds one completed control tick to every telemetry sink.
// Pose and contact are read after physics.
func (g *Game) recordTick(r *robot, t control.Tick) {
	pos := g.posMap.Get(r.entity)
	head := g.headMap.Get(r.entity)
	rb := g.robotMap.Get(r.entity)

	rec := telemetry.NewTickRecord(
		g.tick,
		float64(g.tick)*g.cfg.Derived.TickSeconds,
		r.id,
		telemetry.Pose{X: pos.X, Y: pos.Y, Heading: head.Theta, Contact: rb.Contact},
		t,
		g.cfg.Control.Deadband,
	)
	g.collector.Record(rec)
	g.perfCollector.RecordInference(t.Infer)
	g.metrics.ObserveTick(r.id, t)
	if g.outputManager != nil {
		g.records = append(g.records, rec)
	}
}

// totals sums the run counters over the fleet.
func (g *Game) totals() telemetry.Totals {
	t := telemetry.Totals{Robots: len(g.robots)}
	for _, r := range g.robots {
		rb := g.robotMap.Get(r.entity)
		t.Collisions += rb.Collisions
		t.Odometer += rb.Odometer
	}
	return t
}

// flushTelemetry writes buffered tick rows and, at window boundaries,
// flushes window stats and checks for bookmarks.
func (g *Game) flushTelemetry() {
	if len(g.records) > 0 {
		if err := g.outputManager.WriteTicks(g.records); err != nil {
			g.logger.Error("failed to write ticks", "error", err)
		}
		g.records = g.records[:0]
	}

	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.totals())
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logWorldState()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		g.logger.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			g.logger.Error("failed to write bookmark", "error", err)
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.CreateSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		g.logger.Error("failed to save snapshot", "error", err)
		return
	}

	g.logger.Info("snapshot saved", "path", path, "tick", g.tick)
}

// CreateSnapshot captures the arena at the current tick.
func (g *Game) CreateSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     g.seed,
		Width:    g.static.Width,
		Height:   g.static.Height,
		Tick:     g.tick,
		Bookmark: bookmark,
	}

	oq := g.obstacleFilter.Query()
	for oq.Next() {
		pos, obs := oq.Get()
		snapshot.Obstacles = append(snapshot.Obstacles, telemetry.ObstacleState{
			Shape: obs.Shape.String(),
			X:     pos.X,
			Y:     pos.Y,
			R:     obs.Radius,
			HalfW: obs.HalfW,
			HalfH: obs.HalfH,
		})
	}

	for _, r := range g.robots {
		pos := g.posMap.Get(r.entity)
		head := g.headMap.Get(r.entity)
		body := g.bodyMap.Get(r.entity)
		wheels := g.wheelsMap.Get(r.entity)
		sonar := g.sonarMap.Get(r.entity)
		rb := g.robotMap.Get(r.entity)

		snapshot.Robots = append(snapshot.Robots, telemetry.RobotState{
			ID:         rb.ID,
			X:          pos.X,
			Y:          pos.Y,
			Heading:    head.Theta,
			Radius:     body.Radius,
			Left:       wheels.Left,
			Right:      wheels.Right,
			Collisions: rb.Collisions,
			Fallbacks:  rb.Fallbacks,
			Odometer:   rb.Odometer,
			Sonar:      append([]float64(nil), sonar.Readings...),
		})
	}

	return snapshot
}
