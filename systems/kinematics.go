package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/avoid/components"
)

// DiffDrive converts wheel commands into a body twist.
type DiffDrive struct {
	WheelRadius float64 // metres
	AxleLength  float64 // metres between the wheels
	DriveGain   float64 // wheel command to rad/s
	MaxWheel    float64 // rad/s clamp per wheel
}

// Twist returns the forward speed v (m/s) and yaw rate w (rad/s, positive
// counter-clockwise) for the given wheel commands.
func (d DiffDrive) Twist(left, right float64) (v, w float64) {
	wl := clamp(left*d.DriveGain, -d.MaxWheel, d.MaxWheel)
	wr := clamp(right*d.DriveGain, -d.MaxWheel, d.MaxWheel)
	v = d.WheelRadius * (wr + wl) / 2
	w = d.WheelRadius * (wr - wl) / d.AxleLength
	return v, w
}

// Integrate advances a pose under a constant twist for dt seconds, following
// the exact arc.
func Integrate(x, y, theta, v, w, dt float64) (float64, float64, float64) {
	if math.Abs(w) < 1e-9 {
		sin, cos := math.Sincos(theta)
		return x + v*cos*dt, y + v*sin*dt, theta
	}
	th := theta + w*dt
	r := v / w
	x += r * (math.Sin(th) - math.Sin(theta))
	y -= r * (math.Cos(th) - math.Cos(theta))
	return x, y, NormalizeAngle(th)
}

// PushOut moves a disc at (x,y) with radius r out of the walls and every
// shape in s, skipping circles owned by skip. contact reports whether any
// overlap was resolved.
func (s *Scene) PushOut(x, y, r float64, skip int) (nx, ny float64, contact bool) {
	for i := range s.Circles {
		c := &s.Circles[i]
		if c.Owner != NoOwner && c.Owner == skip {
			continue
		}
		minDist := r + c.R
		dSq := distanceSq(x, y, c.X, c.Y)
		if dSq >= minDist*minDist {
			continue
		}
		contact = true
		d := math.Sqrt(dSq)
		if d == 0 {
			x = c.X + minDist
			continue
		}
		k := minDist / d
		x = c.X + (x-c.X)*k
		y = c.Y + (y-c.Y)*k
	}

	for i := range s.Boxes {
		b := &s.Boxes[i]
		cx := clamp(x, b.X-b.HalfW, b.X+b.HalfW)
		cy := clamp(y, b.Y-b.HalfH, b.Y+b.HalfH)
		dSq := distanceSq(x, y, cx, cy)
		if dSq >= r*r {
			continue
		}
		contact = true
		if dSq == 0 {
			// Centre inside the box: leave along the shallowest axis.
			px := b.HalfW - math.Abs(x-b.X)
			py := b.HalfH - math.Abs(y-b.Y)
			if px < py {
				x = b.X + math.Copysign(b.HalfW+r, x-b.X)
			} else {
				y = b.Y + math.Copysign(b.HalfH+r, y-b.Y)
			}
			continue
		}
		d := math.Sqrt(dSq)
		x = cx + (x-cx)*r/d
		y = cy + (y-cy)*r/d
	}

	if s.Width > 0 && s.Height > 0 {
		wx := clamp(x, r, s.Width-r)
		wy := clamp(y, r, s.Height-r)
		if wx != x || wy != y {
			contact = true
			x, y = wx, wy
		}
	}
	return x, y, contact
}

// KinematicsSystem moves robots according to their wheel commands and
// resolves collisions against static geometry and each other.
type KinematicsSystem struct {
	filter ecs.Filter5[components.Position, components.Heading, components.Body, components.Wheels, components.Robot]
	drive  DiffDrive
	static *Scene
	scene  Scene
}

// NewKinematicsSystem creates a kinematics system. static holds the arena
// bounds and obstacles and must not change while the system runs.
func NewKinematicsSystem(w *ecs.World, drive DiffDrive, static *Scene) *KinematicsSystem {
	return &KinematicsSystem{
		filter: *ecs.NewFilter5[components.Position, components.Heading, components.Body, components.Wheels, components.Robot](w),
		drive:  drive,
		static: static,
	}
}

// Drive returns the drive model.
func (k *KinematicsSystem) Drive() DiffDrive { return k.drive }

// Update advances every robot by dt seconds. Robots are moved in query
// order; each one is pushed out of the others' current positions.
func (k *KinematicsSystem) Update(dt float64) {
	k.scene.Reset(k.static.Width, k.static.Height)
	k.scene.Circles = append(k.scene.Circles, k.static.Circles...)
	k.scene.Boxes = append(k.scene.Boxes, k.static.Boxes...)
	base := len(k.scene.Circles)

	query := k.filter.Query()
	for query.Next() {
		pos, _, body, _, robot := query.Get()
		k.scene.Circles = append(k.scene.Circles, Circle{X: pos.X, Y: pos.Y, R: body.Radius, Owner: robot.ID})
	}

	i := base
	query = k.filter.Query()
	for query.Next() {
		pos, head, body, wheels, robot := query.Get()

		wheels.V, wheels.W = k.drive.Twist(wheels.Left, wheels.Right)
		x, y, th := Integrate(pos.X, pos.Y, head.Theta, wheels.V, wheels.W, dt)
		x, y, contact := k.scene.PushOut(x, y, body.Radius, robot.ID)

		robot.Odometer += math.Hypot(x-pos.X, y-pos.Y)
		if contact && !robot.Contact {
			robot.Collisions++
		}
		robot.Contact = contact

		pos.X, pos.Y, head.Theta = x, y, th
		k.scene.Circles[i].X, k.scene.Circles[i].Y = x, y
		i++
	}
}
