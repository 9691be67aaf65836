package components

// Body is the collision disc of a robot.
type Body struct {
	Radius float64 `inspect:"label,fmt:%.2f m"`
}

// Wheels holds the last commanded wheel speeds and the twist they produce.
type Wheels struct {
	Left  float64 `inspect:"label,fmt:%+.3f"`
	Right float64 `inspect:"label,fmt:%+.3f"`
	V     float64 `inspect:"label,fmt:%+.2f m/s"`
	W     float64 `inspect:"label,fmt:%+.2f rad/s"`
}
