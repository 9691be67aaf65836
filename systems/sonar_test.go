package systems

import (
	"math"
	"testing"
)

type constNoise float64

func (c constNoise) Rand() float64 { return float64(c) }

var crossRing = SonarRing{
	Angles: []float64{0, math.Pi / 2, math.Pi, -math.Pi / 2},
	Range:  1,
}

func TestSweepClear(t *testing.T) {
	s := &Scene{Width: 10, Height: 10}
	got := crossRing.Sweep(s, 5, 5, 0, 0.2, 0, nil, nil)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i, r := range got {
		if r != 1 {
			t.Errorf("reading %d = %v, want 1", i, r)
		}
	}
}

func TestSweepMeasuresFromRim(t *testing.T) {
	s := &Scene{Width: 10, Height: 10, Circles: []Circle{{X: 5.9, Y: 5, R: 0.2, Owner: NoOwner}}}
	got := crossRing.Sweep(s, 5, 5, 0, 0.2, 0, nil, nil)
	// Rim at 5.2, obstacle surface at 5.7.
	if math.Abs(got[0]-0.5) > 1e-9 {
		t.Errorf("front reading = %v, want 0.5", got[0])
	}
	for i := 1; i < 4; i++ {
		if got[i] != 1 {
			t.Errorf("reading %d = %v, want 1", i, got[i])
		}
	}
}

func TestSweepFollowsHeading(t *testing.T) {
	s := &Scene{Width: 10, Height: 10, Circles: []Circle{{X: 5, Y: 5.9, R: 0.2, Owner: NoOwner}}}
	got := crossRing.Sweep(s, 5, 5, math.Pi/2, 0.2, 0, nil, nil)
	if math.Abs(got[0]-0.5) > 1e-9 {
		t.Errorf("front reading = %v, want 0.5", got[0])
	}
	// The +90 degree sensor now faces -X.
	if got[1] != 1 {
		t.Errorf("left reading = %v, want 1", got[1])
	}
}

func TestSweepIgnoresOwnBody(t *testing.T) {
	s := &Scene{Width: 10, Height: 10, Circles: []Circle{{X: 5, Y: 5, R: 0.2, Owner: 7}}}
	got := crossRing.Sweep(s, 5, 5, 0, 0.2, 7, nil, nil)
	for i, r := range got {
		if r != 1 {
			t.Errorf("reading %d = %v, want 1", i, r)
		}
	}
}

func TestSweepNoiseIsClamped(t *testing.T) {
	s := &Scene{Width: 10, Height: 10, Circles: []Circle{{X: 5.9, Y: 5, R: 0.2, Owner: NoOwner}}}

	up := crossRing.Sweep(s, 5, 5, 0, 0.2, 0, constNoise(0.3), nil)
	if math.Abs(up[0]-0.8) > 1e-9 || up[1] != 1 {
		t.Errorf("positive noise: %v", up)
	}
	down := crossRing.Sweep(s, 5, 5, 0, 0.2, 0, constNoise(-0.6), nil)
	if down[0] != 0 || math.Abs(down[1]-0.4) > 1e-9 {
		t.Errorf("negative noise: %v", down)
	}
}

func TestSweepReusesBuffer(t *testing.T) {
	s := &Scene{Width: 10, Height: 10}
	buf := make([]float64, 0, 16)
	got := crossRing.Sweep(s, 5, 5, 0, 0.2, 0, nil, buf)
	if &got[0] != &buf[:1][0] {
		t.Error("Sweep should write into the provided buffer")
	}
}
