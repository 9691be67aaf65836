// Package systems contains the arena's geometry and ECS systems.
package systems

import "math"

// NoOwner marks a circle that belongs to no robot.
const NoOwner = -1

// Circle is a disc in the scene. Owner is the robot ID for robot bodies and
// NoOwner for obstacles.
type Circle struct {
	X, Y, R float64
	Owner   int
}

// Box is an axis-aligned rectangle given by its centre and half extents.
type Box struct {
	X, Y         float64
	HalfW, HalfH float64
}

// Scene is a snapshot of everything a sonar ray can hit. The arena walls
// bound [0,Width]x[0,Height]. A Scene is read-only while rays are cast on
// it, so one snapshot may be shared by many goroutines.
type Scene struct {
	Width, Height float64
	Circles       []Circle
	Boxes         []Box
}

// Reset empties the scene for reuse, keeping capacity.
func (s *Scene) Reset(width, height float64) {
	s.Width, s.Height = width, height
	s.Circles = s.Circles[:0]
	s.Boxes = s.Boxes[:0]
}

// Raycast returns the distance from (x,y) along the unit direction (dx,dy)
// to the first surface, capped at maxDist. Circles owned by skip are
// ignored. hit is false when nothing lies within maxDist.
func (s *Scene) Raycast(x, y, dx, dy, maxDist float64, skip int) (dist float64, hit bool) {
	dist = maxDist
	if t, ok := rayWalls(x, y, dx, dy, s.Width, s.Height); ok && t < dist {
		dist, hit = t, true
	}
	for i := range s.Circles {
		c := &s.Circles[i]
		if c.Owner != NoOwner && c.Owner == skip {
			continue
		}
		if t, ok := rayCircle(x, y, dx, dy, c); ok && t < dist {
			dist, hit = t, true
		}
	}
	for i := range s.Boxes {
		if t, ok := rayBox(x, y, dx, dy, &s.Boxes[i]); ok && t < dist {
			dist, hit = t, true
		}
	}
	return dist, hit
}

// rayWalls intersects a ray with the inside of the arena rectangle. An origin
// on or outside the boundary hits at zero.
func rayWalls(x, y, dx, dy, w, h float64) (float64, bool) {
	if x <= 0 || y <= 0 || x >= w || y >= h {
		return 0, true
	}
	t := math.Inf(1)
	if dx > 0 {
		t = min(t, (w-x)/dx)
	} else if dx < 0 {
		t = min(t, -x/dx)
	}
	if dy > 0 {
		t = min(t, (h-y)/dy)
	} else if dy < 0 {
		t = min(t, -y/dy)
	}
	return t, !math.IsInf(t, 1)
}

// rayCircle intersects a ray with a disc. An origin inside the disc hits at
// zero.
func rayCircle(x, y, dx, dy float64, c *Circle) (float64, bool) {
	ox, oy := x-c.X, y-c.Y
	cc := ox*ox + oy*oy - c.R*c.R
	if cc <= 0 {
		return 0, true
	}
	b := ox*dx + oy*dy
	if b >= 0 {
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}

// rayBox intersects a ray with an axis-aligned box using the slab method. An
// origin inside the box hits at zero.
func rayBox(x, y, dx, dy float64, b *Box) (float64, bool) {
	minX, maxX := b.X-b.HalfW, b.X+b.HalfW
	minY, maxY := b.Y-b.HalfH, b.Y+b.HalfH
	if x >= minX && x <= maxX && y >= minY && y <= maxY {
		return 0, true
	}

	tmin, tmax := math.Inf(-1), math.Inf(1)
	for _, slab := range [2][4]float64{{x, dx, minX, maxX}, {y, dy, minY, maxY}} {
		o, d, lo, hi := slab[0], slab[1], slab[2], slab[3]
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < tmin || tmin < 0 {
		return 0, false
	}
	return tmin, true
}
