// Package fuzzy implements a Mamdani inference engine: linguistic variables
// over sampled universes, a declarative rule base and the
// fuzzify / evaluate / aggregate / defuzzify pipeline.
package fuzzy

import (
	"fmt"
	"math"
)

// MembershipFunc maps a crisp value to a degree of truth in [0,1].
type MembershipFunc interface {
	// Degree evaluates the function at x.
	Degree(x float64) float64
	// Support returns the interval outside of which the degree is zero.
	Support() (lo, hi float64)
	// Validate reports malformed breakpoints.
	Validate() error
	fmt.Stringer
}

// Triangle is a triangular membership function with feet at A and C and its
// peak at B. A == B gives a step on the left edge, B == C on the right.
type Triangle struct {
	A, B, C float64
}

// Degree implements MembershipFunc.
func (t Triangle) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x == t.B:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

// Support implements MembershipFunc.
func (t Triangle) Support() (lo, hi float64) { return t.A, t.C }

// Validate implements MembershipFunc.
func (t Triangle) Validate() error {
	return checkBreakpoints("triangle", t.A, t.B, t.C)
}

func (t Triangle) String() string {
	return fmt.Sprintf("tri[%g %g %g]", t.A, t.B, t.C)
}

// Trapezoid ramps up from A to B, holds 1 over [B,C] and ramps down to D.
type Trapezoid struct {
	A, B, C, D float64
}

// Degree implements MembershipFunc.
func (t Trapezoid) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

// Support implements MembershipFunc.
func (t Trapezoid) Support() (lo, hi float64) { return t.A, t.D }

// Validate implements MembershipFunc.
func (t Trapezoid) Validate() error {
	return checkBreakpoints("trapezoid", t.A, t.B, t.C, t.D)
}

func (t Trapezoid) String() string {
	return fmt.Sprintf("trap[%g %g %g %g]", t.A, t.B, t.C, t.D)
}

func checkBreakpoints(shape string, pts ...float64) error {
	for i, p := range pts {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return configErrorf("%s breakpoint %d is not finite", shape, i)
		}
		if i > 0 && p < pts[i-1] {
			return configErrorf("%s breakpoints %v are not non-decreasing", shape, pts)
		}
	}
	return nil
}

// NewTriangle builds a validated Triangle.
func NewTriangle(a, b, c float64) (Triangle, error) {
	t := Triangle{A: a, B: b, C: c}
	return t, t.Validate()
}

// NewTrapezoid builds a validated Trapezoid.
func NewTrapezoid(a, b, c, d float64) (Trapezoid, error) {
	t := Trapezoid{A: a, B: b, C: c, D: d}
	return t, t.Validate()
}
