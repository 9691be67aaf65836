// Package components defines ECS components for the arena.
package components

// Robot identifies a controlled robot and accumulates its run statistics.
type Robot struct {
	ID         int     `inspect:"label"`
	Collisions int     `inspect:"label"`
	Fallbacks  int     `inspect:"label"`
	Odometer   float64 `inspect:"label,fmt:%.1f m"`
	// Contact is set while the body overlaps a wall, an obstacle or another
	// robot. A collision is counted on the rising edge.
	Contact bool `inspect:"bool"`
}

// Sonar holds the most recent sweep, normalized to [0,1].
type Sonar struct {
	Readings []float64 `inspect:"bar,max:1"`
}

// Shape selects the obstacle geometry.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeBox
)

func (s Shape) String() string {
	if s == ShapeBox {
		return "box"
	}
	return "circle"
}

// ParseShape is the inverse of String. Unknown names are circles.
func ParseShape(name string) Shape {
	if name == "box" {
		return ShapeBox
	}
	return ShapeCircle
}

// Obstacle is a static obstacle centred on its Position. Circles use Radius,
// boxes use the half extents.
type Obstacle struct {
	Shape  Shape
	Radius float64
	HalfW  float64
	HalfH  float64
}
