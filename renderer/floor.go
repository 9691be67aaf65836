// Package renderer draws the static parts of the arena.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/avoid/camera"
	"github.com/pthm-cable/avoid/systems"
)

// Colors used for the static layer.
var (
	FloorColor    = rl.Color{R: 24, G: 28, B: 34, A: 255}
	GridColor     = rl.Color{R: 38, G: 44, B: 52, A: 255}
	WallColor     = rl.Color{R: 160, G: 160, B: 170, A: 255}
	ObstacleColor = rl.Color{R: 90, G: 96, B: 110, A: 255}
)

// view is the camera state the cached texture was drawn for.
type view struct {
	x, y, zoom float64
	w, h       float32
}

// FloorRenderer draws the floor, a metre grid, the walls and the static
// obstacles into a render texture, redrawn only when the camera moves.
type FloorRenderer struct {
	target      rl.RenderTexture2D
	drawn       view
	valid       bool
	screenW     int32
	screenH     int32
	initialized bool
}

// NewFloorRenderer creates a floor renderer for a screen size.
func NewFloorRenderer(screenW, screenH int32) *FloorRenderer {
	return &FloorRenderer{screenW: screenW, screenH: screenH}
}

// Init allocates the render texture (must be called after the raylib
// window is created).
func (f *FloorRenderer) Init() {
	if f.initialized {
		return
	}
	f.target = rl.LoadRenderTexture(f.screenW, f.screenH)
	f.valid = false
	f.initialized = true
}

// Resize reallocates the texture for a new screen size.
func (f *FloorRenderer) Resize(screenW, screenH int32) {
	if screenW == f.screenW && screenH == f.screenH {
		return
	}
	f.Unload()
	f.screenW, f.screenH = screenW, screenH
}

// Draw blits the static layer, redrawing it first if the view changed.
func (f *FloorRenderer) Draw(cam *camera.Camera, scene *systems.Scene) {
	if !f.initialized {
		f.Init()
	}
	v := view{x: cam.X, y: cam.Y, zoom: cam.Zoom, w: cam.ViewportW, h: cam.ViewportH}
	if !f.valid || v != f.drawn {
		rl.BeginTextureMode(f.target)
		rl.ClearBackground(rl.Blank)
		drawStatic(cam, scene)
		rl.EndTextureMode()
		f.drawn, f.valid = v, true
	}

	// Render textures are stored upside down.
	src := rl.Rectangle{Width: float32(f.target.Texture.Width), Height: -float32(f.target.Texture.Height)}
	rl.DrawTextureRec(f.target.Texture, src, rl.Vector2{}, rl.White)
}

// Invalidate forces a redraw on the next Draw.
func (f *FloorRenderer) Invalidate() { f.valid = false }

// Unload frees resources.
func (f *FloorRenderer) Unload() {
	if f.initialized {
		rl.UnloadRenderTexture(f.target)
		f.initialized = false
	}
}

// drawStatic draws the scene's walls, grid and obstacles in screen space.
func drawStatic(cam *camera.Camera, scene *systems.Scene) {
	x0, y0 := cam.WorldToScreen(0, scene.Height)
	x1, y1 := cam.WorldToScreen(scene.Width, 0)
	rl.DrawRectangleRec(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, FloorColor)

	for m := 1.0; m < scene.Width; m++ {
		sx, top := cam.WorldToScreen(m, scene.Height)
		_, bottom := cam.WorldToScreen(m, 0)
		rl.DrawLineV(rl.Vector2{X: sx, Y: top}, rl.Vector2{X: sx, Y: bottom}, GridColor)
	}
	for m := 1.0; m < scene.Height; m++ {
		left, sy := cam.WorldToScreen(0, m)
		right, _ := cam.WorldToScreen(scene.Width, m)
		rl.DrawLineV(rl.Vector2{X: left, Y: sy}, rl.Vector2{X: right, Y: sy}, GridColor)
	}

	scale := cam.PixelsPerMetre()
	for _, c := range scene.Circles {
		if !cam.IsVisible(c.X, c.Y, c.R) {
			continue
		}
		sx, sy := cam.WorldToScreen(c.X, c.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, float32(c.R)*scale, ObstacleColor)
	}
	for _, b := range scene.Boxes {
		if !cam.IsVisible(b.X, b.Y, math.Hypot(b.HalfW, b.HalfH)) {
			continue
		}
		sx, sy := cam.WorldToScreen(b.X, b.Y)
		w, h := float32(b.HalfW)*scale, float32(b.HalfH)*scale
		rl.DrawRectangleRec(rl.Rectangle{X: sx - w, Y: sy - h, Width: 2 * w, Height: 2 * h}, ObstacleColor)
	}

	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, WallColor)
}
