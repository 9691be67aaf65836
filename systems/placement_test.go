package systems

import (
	"math"
	"reflect"
	"testing"
)

func testPlacement() Placement {
	return Placement{
		Width: 10, Height: 8,
		Count:     14,
		MinRadius: 0.15, MaxRadius: 0.45,
		NoiseScale: 0.35,
		Seed:       42,
		Clearance:  0.3,
		KeepOut:    []Circle{{X: 5, Y: 4, R: 0.6, Owner: 0}},
	}
}

func TestPlaceObstaclesDeterministic(t *testing.T) {
	c1, b1 := PlaceObstacles(testPlacement())
	c2, b2 := PlaceObstacles(testPlacement())
	if !reflect.DeepEqual(c1, c2) || !reflect.DeepEqual(b1, b2) {
		t.Error("same placement produced different layouts")
	}
	if len(c1)+len(b1) == 0 {
		t.Error("expected at least one obstacle")
	}
}

func TestPlaceObstaclesRespectsBounds(t *testing.T) {
	p := testPlacement()
	circles, boxes := PlaceObstacles(p)

	if n := len(circles) + len(boxes); n > p.Count {
		t.Errorf("placed %d obstacles, want at most %d", n, p.Count)
	}

	var all []Circle
	for _, c := range circles {
		if c.R < p.MinRadius-1e-12 || c.R > p.MaxRadius+1e-12 {
			t.Errorf("radius %v outside [%v, %v]", c.R, p.MinRadius, p.MaxRadius)
		}
		if c.Owner != NoOwner {
			t.Errorf("obstacle owned by %d", c.Owner)
		}
		all = append(all, c)
	}
	for _, b := range boxes {
		all = append(all, Circle{X: b.X, Y: b.Y, R: math.Hypot(b.HalfW, b.HalfH)})
	}

	for i, a := range all {
		if a.X-a.R < 0 || a.Y-a.R < 0 || a.X+a.R > p.Width || a.Y+a.R > p.Height {
			t.Errorf("obstacle %d at (%v, %v) crosses a wall", i, a.X, a.Y)
		}
		for _, k := range p.KeepOut {
			if math.Hypot(a.X-k.X, a.Y-k.Y) < a.R+k.R+p.Clearance-1e-9 {
				t.Errorf("obstacle %d intrudes on the keep-out at (%v, %v)", i, k.X, k.Y)
			}
		}
		for j := i + 1; j < len(all); j++ {
			b := all[j]
			if math.Hypot(a.X-b.X, a.Y-b.Y) < a.R+b.R+p.Clearance-1e-9 {
				t.Errorf("obstacles %d and %d are closer than the clearance", i, j)
			}
		}
	}
}

func TestPlaceObstaclesSeedMatters(t *testing.T) {
	p := testPlacement()
	c1, b1 := PlaceObstacles(p)
	p.Seed = 7
	c2, b2 := PlaceObstacles(p)
	if reflect.DeepEqual(c1, c2) && reflect.DeepEqual(b1, b2) {
		t.Error("different seeds produced identical layouts")
	}
}

func TestPlaceObstaclesEmpty(t *testing.T) {
	p := testPlacement()
	p.Count = 0
	if c, b := PlaceObstacles(p); c != nil || b != nil {
		t.Errorf("Count 0 placed %d circles and %d boxes", len(c), len(b))
	}
}
