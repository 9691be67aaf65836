package fuzzy

import (
	"errors"
	"math"
	"testing"
)

func TestTriangleDegree(t *testing.T) {
	tri := Triangle{A: 0.2, B: 0.3, C: 0.5}

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"left of support", 0.1, 0},
		{"left foot", 0.2, 0},
		{"left ramp", 0.25, 0.5},
		{"peak", 0.3, 1},
		{"right ramp", 0.4, 0.5},
		{"right foot", 0.5, 0},
		{"right of support", 0.9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tri.Degree(tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Degree(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestTriangleSteps(t *testing.T) {
	left := Triangle{A: 0, B: 0, C: 1}
	if got := left.Degree(0); got != 1 {
		t.Errorf("left step at a: got %v, want 1", got)
	}
	if got := left.Degree(0.5); got != 0.5 {
		t.Errorf("left step ramp: got %v, want 0.5", got)
	}

	right := Triangle{A: 0, B: 1, C: 1}
	if got := right.Degree(1); got != 1 {
		t.Errorf("right step at c: got %v, want 1", got)
	}

	spike := Triangle{A: 0.5, B: 0.5, C: 0.5}
	if got := spike.Degree(0.5); got != 1 {
		t.Errorf("degenerate spike: got %v, want 1", got)
	}
	if got := spike.Degree(0.50001); got != 0 {
		t.Errorf("degenerate spike off-peak: got %v, want 0", got)
	}
}

func TestTrapezoidDegree(t *testing.T) {
	trap := Trapezoid{A: 0.5, B: 1.1, C: 1.5, D: 1.5}

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"below", 0.4, 0},
		{"left foot", 0.5, 0},
		{"left ramp", 0.8, 0.5},
		{"shoulder start", 1.1, 1},
		{"plateau", 1.3, 1},
		{"right edge", 1.5, 1},
		{"above", 1.6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trap.Degree(tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Degree(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestMembershipRange(t *testing.T) {
	mfs := []MembershipFunc{
		Triangle{A: -0.5, B: -0.01, C: 0},
		Triangle{A: -0.01, B: 0, C: 0.01},
		Triangle{A: 0.3, B: 0.6, C: 0.9},
		Trapezoid{A: 0, B: 0, C: 0.2, D: 0.3},
		Trapezoid{A: 0.8, B: 0.9, C: 1, D: 1},
	}

	for _, mf := range mfs {
		lo, hi := mf.Support()
		for x := -1.0; x <= 2.0; x += 0.001 {
			d := mf.Degree(x)
			if d < 0 || d > 1 || math.IsNaN(d) {
				t.Fatalf("%v: Degree(%v) = %v outside [0,1]", mf, x, d)
			}
			if (x < lo || x > hi) && d != 0 {
				t.Fatalf("%v: Degree(%v) = %v outside support [%v,%v]", mf, x, d, lo, hi)
			}
		}
	}
}

func TestMembershipValidate(t *testing.T) {
	tests := []struct {
		name string
		mf   MembershipFunc
		ok   bool
	}{
		{"triangle ok", Triangle{A: 0, B: 0.5, C: 1}, true},
		{"triangle flat", Triangle{A: 1, B: 1, C: 1}, true},
		{"triangle decreasing", Triangle{A: 0.5, B: 0.2, C: 1}, false},
		{"triangle nan", Triangle{A: math.NaN(), B: 0.2, C: 1}, false},
		{"trapezoid ok", Trapezoid{A: 0, B: 0, C: 0.2, D: 0.3}, true},
		{"trapezoid decreasing", Trapezoid{A: 0, B: 0.3, C: 0.2, D: 0.4}, false},
		{"trapezoid inf", Trapezoid{A: 0, B: 0.3, C: 0.4, D: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mf.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewConstructorsValidate(t *testing.T) {
	if _, err := NewTriangle(0, 1, 0.5); err == nil {
		t.Error("NewTriangle accepted decreasing breakpoints")
	}
	if _, err := NewTrapezoid(0, 0.1, 0.2, 0.3); err != nil {
		t.Errorf("NewTrapezoid: %v", err)
	}
}
