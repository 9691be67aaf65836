package policy

// DefaultDeadband is the turn rate magnitude below which the robot drives
// straight.
const DefaultDeadband = 0.05

// MapOutput converts crisp (velocidad, angularVel) into (left, right) wheel
// speeds.
//
// Outside the deadband the turn rate replaces one wheel's speed outright: a
// right turn (angularVel < -deadband) drives the right wheel at angularVel,
// a left turn drives the left wheel at angularVel. This is not a
// differential-steering law and must stay as is until the behaviour owner
// signs off on a change. Inside the deadband, inclusive, both wheels get
// velocidad.
func MapOutput(velocidad, angularVel, deadband float64) (left, right float64) {
	switch {
	case angularVel < -deadband:
		return velocidad, angularVel
	case angularVel > deadband:
		return angularVel, velocidad
	default:
		return velocidad, velocidad
	}
}
