// Package camera maps the arena, measured in metres with y pointing up, onto
// the screen.
package camera

// Camera controls the viewport into the arena.
type Camera struct {
	// Position is the camera center in world coordinates (metres)
	X, Y float64

	// Zoom level (1.0 fits the whole arena in the viewport)
	Zoom float64

	// Viewport dimensions (screen pixels)
	ViewportW, ViewportH float32

	// Arena dimensions in metres
	WorldW, WorldH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// fit is pixels per metre at zoom 1
	fit float64
}

// New creates a camera showing the whole arena.
func New(viewportW, viewportH float32, worldW, worldH float64) *Camera {
	c := &Camera{
		WorldW:  worldW,
		WorldH:  worldH,
		MinZoom: 1,
		MaxZoom: 8,
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// PixelsPerMetre returns the current scale.
func (c *Camera) PixelsPerMetre() float32 {
	return float32(c.fit * c.Zoom)
}

// WorldToScreen converts world coordinates to screen coordinates. Screen y
// grows downwards, world y upwards.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float32) {
	s := c.fit * c.Zoom
	sx = c.ViewportW/2 + float32((wx-c.X)*s)
	sy = c.ViewportH/2 - float32((wy-c.Y)*s)
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float64) {
	s := c.fit * c.Zoom
	wx = c.X + float64(sx-c.ViewportW/2)/s
	wy = c.Y - float64(sy-c.ViewportH/2)/s
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX && wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and the fit scale.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.fit = min(float64(viewportW)/c.WorldW, float64(viewportH)/c.WorldH)
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels. The centre
// stays inside the arena.
func (c *Camera) Pan(dx, dy float32) {
	s := c.fit * c.Zoom
	c.X += float64(dx) / s
	c.Y -= float64(dy) / s
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	s := c.fit * c.Zoom
	halfW := float64(c.ViewportW) / (2 * s)
	halfH := float64(c.ViewportH) / (2 * s)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

func (c *Camera) clampCenter() {
	c.X = clamp(c.X, 0, c.WorldW)
	c.Y = clamp(c.Y, 0, c.WorldH)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
