package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// pickSlack widens the click target around a robot body.
const pickSlack = 1.5

// findRobotAt returns the ID of the robot nearest to the world point whose
// enlarged body contains it.
func (g *Game) findRobotAt(wx, wy float64) (int, bool) {
	best, bestDist := -1, 0.0

	query := g.robotFilter.Query()
	for query.Next() {
		pos, _, body, _, _, rb := query.Get()
		dx, dy := pos.X-wx, pos.Y-wy
		d := dx*dx + dy*dy
		reach := body.Radius * pickSlack
		if d > reach*reach {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = rb.ID, d
		}
	}
	return best, best >= 0
}

// findRobotAtMouse returns the robot under the cursor, if any.
func (g *Game) findRobotAtMouse() (int, bool) {
	mouse := rl.GetMousePosition()
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	return g.findRobotAt(wx, wy)
}

// selectRobot updates both the viewer and the inspector selection.
func (g *Game) selectRobot(id int, ok bool) {
	if !ok {
		g.selected = -1
		g.inspector.Deselect()
		return
	}
	g.selected = id
	g.inspector.Select(id)
}
