package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/avoid/ui"
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}
}

// drawActiveOverlays renders the world-space overlays. Panels are drawn
// with the rest of the UI.
func (g *Game) drawActiveOverlays() {
	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlaySonarRays:
			g.drawSonar(true)
		case ui.OverlaySonarHits:
			g.drawSonar(false)
		case ui.OverlayRobotLabels:
			g.drawRobotLabels()
		case ui.OverlayContacts:
			g.drawContacts()
		}
	}
}

// drawSonar draws each robot's last sweep from the rim outwards. Rays are
// coloured from red (close) to green (clear). With rays off only the echo
// points are drawn.
func (g *Game) drawSonar(rays bool) {
	angles := g.cfg.Derived.SonarAnglesRad
	rng := g.cfg.Sonar.Range
	for _, r := range g.robots {
		pos := g.posMap.Get(r.entity)
		head := g.headMap.Get(r.entity)
		body := g.bodyMap.Get(r.entity)
		sonar := g.sonarMap.Get(r.entity)

		for i, reading := range sonar.Readings {
			if i >= len(angles) {
				break
			}
			a := head.Theta + angles[i]
			cos, sin := math.Cos(a), math.Sin(a)
			x0, y0 := pos.X+cos*body.Radius, pos.Y+sin*body.Radius
			x1, y1 := x0+cos*reading*rng, y0+sin*reading*rng

			sx0, sy0 := g.camera.WorldToScreen(x0, y0)
			sx1, sy1 := g.camera.WorldToScreen(x1, y1)
			color := readingColor(reading)
			if rays {
				rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, rl.Fade(color, 0.6))
			}
			if reading < 1 {
				rl.DrawCircleV(rl.Vector2{X: sx1, Y: sy1}, 3, color)
			}
		}
	}
}

func readingColor(v float64) rl.Color {
	v = math.Max(0, math.Min(1, v))
	return rl.Color{
		R: uint8(230 * (1 - v)),
		G: uint8(60 + 170*v),
		B: 60,
		A: 255,
	}
}

// drawRobotLabels prints each robot's ID above its body.
func (g *Game) drawRobotLabels() {
	for _, r := range g.robots {
		pos := g.posMap.Get(r.entity)
		body := g.bodyMap.Get(r.entity)
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y+body.Radius)
		rl.DrawText(fmt.Sprintf("%d", r.id), int32(sx)-4, int32(sy)-16, 12, rl.White)
	}
}

// drawContacts outlines robots that currently overlap something.
func (g *Game) drawContacts() {
	scale := g.camera.PixelsPerMetre()
	for _, r := range g.robots {
		if !g.robotMap.Get(r.entity).Contact {
			continue
		}
		pos := g.posMap.Get(r.entity)
		body := g.bodyMap.Get(r.entity)
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), float32(body.Radius)*scale+2, rl.Red)
	}
}
