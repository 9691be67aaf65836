package components

// Position is a world position in metres. Y points up.
type Position struct {
	X float64 `inspect:"label,fmt:%.2f m"`
	Y float64 `inspect:"label,fmt:%.2f m"`
}

// Heading is the orientation in radians, counter-clockwise from +X.
type Heading struct {
	Theta float64 `inspect:"angle"`
}
