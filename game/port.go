package game

import (
	"context"
	"sync"

	"github.com/pthm-cable/avoid/systems"
)

// pose is a robot's placement as seen by its sonar.
type pose struct {
	X, Y, Heading float64
	Contact       bool
}

// arenaView is the read-only picture of the arena that sonar sweeps are
// cast against. Writers hold mu while rebuilding it between control ticks.
type arenaView struct {
	mu    sync.RWMutex
	scene systems.Scene
	poses []pose // indexed by robot ID
}

// Port connects one control loop to the arena. It implements
// control.SensorProvider and control.ActuatorSink.
type Port struct {
	id     int
	view   *arenaView
	ring   systems.SonarRing
	radius float64
	noise  systems.Rander // nil for noiseless sonar
	buf    []float64

	mu          sync.Mutex
	left, right float64
}

func newPort(id int, view *arenaView, ring systems.SonarRing, radius float64, noise systems.Rander) *Port {
	return &Port{
		id:     id,
		view:   view,
		ring:   ring,
		radius: radius,
		noise:  noise,
		buf:    make([]float64, 0, len(ring.Angles)),
	}
}

// ReadSonar sweeps the ring from the robot's current pose. The returned
// slice is reused by the next call.
func (p *Port) ReadSonar(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.view.mu.RLock()
	defer p.view.mu.RUnlock()

	at := p.view.poses[p.id]
	p.buf = p.ring.Sweep(&p.view.scene, at.X, at.Y, at.Heading, p.radius, p.id, p.noise, p.buf)
	return p.buf, nil
}

// SetWheelSpeeds stores the command for the next physics step.
func (p *Port) SetWheelSpeeds(ctx context.Context, left, right float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.left, p.right = left, right
	p.mu.Unlock()
	return nil
}

// Command returns the last wheel speeds received.
func (p *Port) Command() (left, right float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.left, p.right
}
