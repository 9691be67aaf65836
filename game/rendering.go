package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/avoid/camera"
	"github.com/pthm-cable/avoid/inspector"
	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/renderer"
	"github.com/pthm-cable/avoid/ui"
)

const (
	title         = "avoid"
	controlsHelp  = "SPACE pause | ,/. speed | TAB controls | arrows pan | wheel zoom | HOME reset | click select"
	sidePanelW    = 220
	sidePanelX    = 10
	sidePanelTopY = 100
)

var (
	colorRobot    = rl.Color{R: 80, G: 170, B: 230, A: 255}
	colorFallback = rl.Color{R: 230, G: 170, B: 60, A: 255}
)

// initViewer creates the camera and UI panels. It does not open a window.
func (g *Game) initViewer() {
	w, h := g.cfg.Derived.ScreenW32, g.cfg.Derived.ScreenH32
	g.camera = camera.New(w, h, g.static.Width, g.static.Height)
	g.inspector = inspector.NewInspector(int32(w), int32(h), inspector.NewRuleGraph(g.sys))
	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(sidePanelX, sidePanelTopY, sidePanelW)
	g.overlays = ui.NewOverlayRegistry()
	g.perfPanel = ui.NewPerfPanel(sidePanelX, sidePanelTopY)
	g.panels = ui.NewRenderer()
	g.floor = renderer.NewFloorRenderer(int32(w), int32(h))
}

// Title is the window title.
func (g *Game) Title() string { return title }

// Draw renders the arena and the UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.drawArena()
	g.drawActiveOverlays()
	g.drawRobots()
	g.drawSelectionHighlight()

	g.drawUI()

	rl.EndDrawing()
}

// drawArena renders the cached static layer.
func (g *Game) drawArena() {
	g.floor.Draw(g.camera, &g.static)
}

// drawRobots renders every robot as a disc with a heading triangle.
func (g *Game) drawRobots() {
	cam := g.camera
	scale := cam.PixelsPerMetre()
	for _, r := range g.robots {
		pos := g.posMap.Get(r.entity)
		head := g.headMap.Get(r.entity)
		body := g.bodyMap.Get(r.entity)
		if !cam.IsVisible(pos.X, pos.Y, body.Radius) {
			continue
		}

		color := colorRobot
		if r.tick.Command.Fallback {
			color = colorFallback
		}
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		radius := float32(body.Radius) * scale
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, rl.Fade(color, 0.35))
		// Screen y is flipped, so the heading turns clockwise on screen.
		drawOrientedTriangle(sx, sy, float32(-head.Theta), radius*0.8, color)
	}
}

// drawSelectionHighlight rings the selected robot.
func (g *Game) drawSelectionHighlight() {
	if g.selected < 0 || g.selected >= len(g.robots) {
		return
	}
	r := g.robots[g.selected]
	pos := g.posMap.Get(r.entity)
	body := g.bodyMap.Get(r.entity)
	sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
	rl.DrawCircleLines(int32(sx), int32(sy), float32(body.Radius*1.6)*g.camera.PixelsPerMetre(), rl.Yellow)
}

// drawUI renders the HUD and the side panels.
func (g *Game) drawUI() {
	sh := int32(rl.GetScreenHeight())
	totals := g.totals()
	g.hud.Draw(ui.HUDData{
		Title:      title,
		Robots:     totals.Robots,
		Collisions: totals.Collisions,
		Tick:       g.tick,
		SimTime:    float64(g.tick) * g.cfg.Derived.TickSeconds,
		Speed:      g.stepsPerUpdate,
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
	})
	g.hud.DrawControls(sh, controlsHelp)

	pb := ui.Playback{Paused: g.paused, Speed: g.stepsPerUpdate}
	y := g.controls.Draw(g.overlays, &pb)
	g.paused, g.stepsPerUpdate = pb.Paused, pb.Speed
	if pb.Reset {
		g.camera.Reset()
	}
	y += 10

	perf := g.perfCollector.Stats()
	if g.overlays.IsEnabled(ui.OverlayFleetPanel) {
		data := &ui.FleetData{Stats: g.lastStats, Perf: perf}
		y += g.panels.DrawDescribedPanel(sidePanelX, y, ui.FleetPanel(sidePanelW), data) + 10
	}
	if g.selected >= 0 && g.selected < len(g.robots) {
		data := &ui.RobotData{ID: g.selected, Command: g.robots[g.selected].tick.Command}
		y += g.panels.DrawDescribedPanel(sidePanelX, y, ui.RobotPanel(sidePanelW), data) + 10
	}
	if g.overlays.IsEnabled(ui.OverlayPerfPanel) {
		g.perfPanel.SetPosition(sidePanelX, y)
		g.perfPanel.Draw(perf)
	}

	if _, ok := g.inspector.Selected(); ok {
		g.inspector.Draw(g.inspectorView())
	}
}

// inspectorView gathers the selected robot's components and last tick.
func (g *Game) inspectorView() inspector.View {
	id, ok := g.inspector.Selected()
	if !ok || id < 0 || id >= len(g.robots) {
		return inspector.View{}
	}
	r := g.robots[id]
	cmd := r.tick.Command
	return inspector.View{
		ID: id,
		Components: []any{
			g.robotMap.Get(r.entity),
			g.posMap.Get(r.entity),
			g.headMap.Get(r.entity),
			g.wheelsMap.Get(r.entity),
			g.sonarMap.Get(r.entity),
		},
		Strengths: cmd.Strengths,
		Outputs:   outputsOf(cmd),
	}
}

// outputsOf orders a command's crisp outputs like the rule base outputs.
func outputsOf(cmd policy.Command) []float64 {
	return []float64{cmd.Velocidad, cmd.AngularVel}
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
// heading is in screen space.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	// Front point
	frontX := x + cos*radius*1.5
	frontY := y + sin*radius*1.5

	// Back left
	backAngle := heading + math.Pi*0.8
	backLeftX := x + float32(math.Cos(float64(backAngle)))*radius
	backLeftY := y + float32(math.Sin(float64(backAngle)))*radius

	// Back right
	backAngle = heading - math.Pi*0.8
	backRightX := x + float32(math.Cos(float64(backAngle)))*radius
	backRightY := y + float32(math.Sin(float64(backAngle)))*radius

	v1 := rl.Vector2{X: frontX, Y: frontY}
	v2 := rl.Vector2{X: backLeftX, Y: backLeftY}
	v3 := rl.Vector2{X: backRightX, Y: backRightY}

	// DrawTriangle requires counter-clockwise winding (v1, v3, v2)
	rl.DrawTriangle(v1, v3, v2, color)
	rl.DrawTriangleLines(v1, v2, v3, rl.White)
}
