package game

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/avoid/components"
	"github.com/pthm-cable/avoid/systems"
	"github.com/pthm-cable/avoid/telemetry"
)

// spawnArena places robots in a row across the middle of the arena and
// scatters obstacles around them.
func (g *Game) spawnArena() {
	cfg := g.cfg
	n := cfg.Arena.Robots
	w, h := cfg.Arena.Width, cfg.Arena.Height
	rng := rand.New(rand.NewPCG(uint64(g.seed), 0))

	keepOut := make([]systems.Circle, 0, n)
	for i := 0; i < n; i++ {
		x := w * float64(i+1) / float64(n+1)
		y := h / 2
		heading := systems.NormalizeAngle(rng.Float64() * 2 * math.Pi)
		g.createRobot(i, x, y, heading)
		keepOut = append(keepOut, systems.Circle{X: x, Y: y, R: cfg.Robot.Radius * 2, Owner: i})
	}

	circles, boxes := systems.PlaceObstacles(systems.Placement{
		Width:      w,
		Height:     h,
		Count:      cfg.Arena.Obstacles,
		MinRadius:  cfg.Arena.ObstacleMinRadius,
		MaxRadius:  cfg.Arena.ObstacleMaxRadius,
		NoiseScale: cfg.Arena.NoiseScale,
		Seed:       g.seed,
		Clearance:  cfg.Robot.Radius * 2,
		KeepOut:    keepOut,
	})
	g.static.Reset(w, h)
	for _, c := range circles {
		g.createObstacle(c.X, c.Y, components.Obstacle{Shape: components.ShapeCircle, Radius: c.R})
	}
	for _, b := range boxes {
		g.createObstacle(b.X, b.Y, components.Obstacle{Shape: components.ShapeBox, HalfW: b.HalfW, HalfH: b.HalfH})
	}
}

// restoreSnapshot rebuilds the arena from a saved snapshot.
func (g *Game) restoreSnapshot(s *telemetry.Snapshot) error {
	if s.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, telemetry.SnapshotVersion)
	}
	g.seed = s.Seed
	g.tick = s.Tick
	g.static.Reset(s.Width, s.Height)

	for _, o := range s.Obstacles {
		obs := components.Obstacle{Shape: components.ParseShape(o.Shape), Radius: o.R, HalfW: o.HalfW, HalfH: o.HalfH}
		g.createObstacle(o.X, o.Y, obs)
	}
	for i, rs := range s.Robots {
		if rs.ID != i {
			return fmt.Errorf("snapshot robot %d has id %d", i, rs.ID)
		}
		e := g.createRobot(rs.ID, rs.X, rs.Y, rs.Heading)
		if rs.Radius > 0 {
			g.bodyMap.Get(e).Radius = rs.Radius
		}
		wheels := g.wheelsMap.Get(e)
		wheels.Left, wheels.Right = rs.Left, rs.Right
		rb := g.robotMap.Get(e)
		rb.Collisions = rs.Collisions
		rb.Fallbacks = rs.Fallbacks
		rb.Odometer = rs.Odometer
		g.sonarMap.Get(e).Readings = append([]float64(nil), rs.Sonar...)
	}
	// Restored totals are the baseline for the first window.
	g.collector.Flush(g.tick, g.totals())
	return nil
}

// createRobot adds a robot entity. IDs must be dense from zero.
func (g *Game) createRobot(id int, x, y, heading float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	head := components.Heading{Theta: heading}
	body := components.Body{Radius: g.cfg.Robot.Radius}
	wheels := components.Wheels{}
	sonar := components.Sonar{Readings: make([]float64, 0, g.cfg.Sonar.Count)}
	rb := components.Robot{ID: id}

	e := g.robotMapper.NewEntity(&pos, &head, &body, &wheels, &sonar, &rb)
	g.robots = append(g.robots, &robot{id: id, entity: e})
	return e
}

// createObstacle adds an obstacle entity and its collision shape.
func (g *Game) createObstacle(x, y float64, obs components.Obstacle) {
	pos := components.Position{X: x, Y: y}
	g.obstacleMapper.NewEntity(&pos, &obs)

	switch obs.Shape {
	case components.ShapeBox:
		g.static.Boxes = append(g.static.Boxes, systems.Box{X: x, Y: y, HalfW: obs.HalfW, HalfH: obs.HalfH})
	default:
		g.static.Circles = append(g.static.Circles, systems.Circle{X: x, Y: y, R: obs.Radius, Owner: systems.NoOwner})
	}
}
