package systems

import (
	"cmp"
	"math"
	"slices"

	"github.com/ojrac/opensimplex-go"
)

// Placement describes how obstacles are scattered over the arena.
type Placement struct {
	Width, Height        float64
	Count                int
	MinRadius, MaxRadius float64
	NoiseScale           float64 // spatial frequency of the placement field
	Seed                 int64
	// Clearance is the free gap kept between obstacles, around every
	// KeepOut disc and along the walls.
	Clearance float64
	KeepOut   []Circle
}

type candidate struct {
	x, y, score float64
}

// PlaceObstacles picks obstacle sites where 2D OpenSimplex noise peaks. The
// same Placement always produces the same layout. Fewer than Count
// obstacles are returned when the arena is too crowded.
func PlaceObstacles(p Placement) ([]Circle, []Box) {
	if p.Count <= 0 || p.MaxRadius <= 0 {
		return nil, nil
	}
	field := opensimplex.NewNormalized(p.Seed)
	size := opensimplex.NewNormalized(p.Seed + 1)
	shape := opensimplex.NewNormalized(p.Seed + 2)

	step := p.MaxRadius
	var cands []candidate
	for y := step; y < p.Height-step; y += step {
		for x := step; x < p.Width-step; x += step {
			cands = append(cands, candidate{x: x, y: y, score: field.Eval2(x*p.NoiseScale, y*p.NoiseScale)})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return cmp.Compare(b.score, a.score) })

	var circles []Circle
	var boxes []Box
	taken := append([]Circle(nil), p.KeepOut...)
	for _, c := range cands {
		if len(circles)+len(boxes) >= p.Count {
			break
		}
		r := p.MinRadius + (p.MaxRadius-p.MinRadius)*size.Eval2(c.x*p.NoiseScale, c.y*p.NoiseScale)
		isBox := shape.Eval2(c.x*p.NoiseScale, c.y*p.NoiseScale) > 0.6
		halfW, halfH := r, r*0.6
		bound := r
		if isBox {
			bound = math.Hypot(halfW, halfH)
		}
		if !fits(c.x, c.y, bound, p, taken) {
			continue
		}
		taken = append(taken, Circle{X: c.x, Y: c.y, R: bound, Owner: NoOwner})
		if isBox {
			boxes = append(boxes, Box{X: c.x, Y: c.y, HalfW: halfW, HalfH: halfH})
		} else {
			circles = append(circles, Circle{X: c.x, Y: c.y, R: r, Owner: NoOwner})
		}
	}
	return circles, boxes
}

func fits(x, y, r float64, p Placement, taken []Circle) bool {
	margin := r + p.Clearance
	if x < margin || y < margin || x > p.Width-margin || y > p.Height-margin {
		return false
	}
	for _, t := range taken {
		gap := r + t.R + p.Clearance
		if distanceSq(x, y, t.X, t.Y) < gap*gap {
			return false
		}
	}
	return true
}
