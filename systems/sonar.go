package systems

import "math"

// Rander draws one random sample. distuv.Normal implements it.
type Rander interface {
	Rand() float64
}

// SonarRing describes proximity sensors mounted on the rim of a round body.
type SonarRing struct {
	Angles []float64 // radians, counter-clockwise from the heading
	Range  float64   // metres
}

// Sweep appends one reading per sensor to dst[:0] for a robot at (x,y) with
// the given heading and body radius. Rays start on the rim; a reading is the
// hit distance divided by Range, and 1 when nothing lies within range.
// The robot's own body (Owner == self) is ignored. noise, if non-nil, is
// added to each reading before clamping to [0,1].
func (r SonarRing) Sweep(s *Scene, x, y, heading, radius float64, self int, noise Rander, dst []float64) []float64 {
	dst = dst[:0]
	for _, a := range r.Angles {
		sin, cos := math.Sincos(heading + a)
		ox, oy := x+cos*radius, y+sin*radius

		reading := 1.0
		if d, hit := s.Raycast(ox, oy, cos, sin, r.Range, self); hit {
			reading = d / r.Range
		}
		if noise != nil {
			reading += noise.Rand()
		}
		dst = append(dst, clamp01(reading))
	}
	return dst
}
