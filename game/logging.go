package game

import (
	"log/slog"
	"math"
)

// LogValue implements slog.LogValuer.
func (s RobotStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("id", s.ID),
		slog.Float64("x", round3(s.X)),
		slog.Float64("y", round3(s.Y)),
		slog.Float64("heading", round3(s.Heading)),
		slog.Int("collisions", s.Collisions),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Float64("odometer", round3(s.Odometer)),
	)
}

// logWorldState logs a fleet summary at info and every robot at debug.
func (g *Game) logWorldState() {
	robots := g.Robots()

	var collisions, fallbacks int
	var odometer float64
	worst := -1
	for i, r := range robots {
		collisions += r.Collisions
		fallbacks += r.Fallbacks
		odometer += r.Odometer
		if worst < 0 || r.Collisions > robots[worst].Collisions {
			worst = i
		}
	}

	attrs := []any{
		"tick", g.tick,
		"robots", len(robots),
		"collisions", collisions,
		"fallbacks", fallbacks,
		"odometer", round3(odometer),
	}
	if worst >= 0 && robots[worst].Collisions > 0 {
		attrs = append(attrs, "most_collisions", robots[worst].ID)
	}
	g.logger.Info("world", attrs...)

	for _, r := range robots {
		g.logger.Debug("robot", "tick", g.tick, "state", r)
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
