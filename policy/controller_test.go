package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/avoid/fuzzy"
)

// unfiredTurn leaves every angularVel rule at zero strength: the lateral
// sensors sit in the gap between cerca and lejos and the frontal pair
// disagrees on every label.
var unfiredTurn = []float64{0.6, 0.6, 0.6, 0.25, 0.85, 0.6, 0.6, 0.6}

func TestMapOutput(t *testing.T) {
	tests := []struct {
		name        string
		vel, turn   float64
		left, right float64
	}{
		{"right turn", 0.4, -0.06, 0.4, -0.06},
		{"left turn", 0.4, 0.06, 0.06, 0.4},
		{"straight", 0.4, 0, 0.4, 0.4},
		{"deadband lower edge", 0.4, -0.05, 0.4, 0.4},
		{"deadband upper edge", 0.4, 0.05, 0.4, 0.4},
		{"reverse right turn", -0.17, -0.13, -0.17, -0.13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := MapOutput(tt.vel, tt.turn, DefaultDeadband)
			if left != tt.left || right != tt.right {
				t.Errorf("MapOutput(%v, %v) = (%v, %v), want (%v, %v)",
					tt.vel, tt.turn, left, right, tt.left, tt.right)
			}
		})
	}
}

func TestControllerAvoid(t *testing.T) {
	c := NewController(buildSystem(t), Options{})

	cmd, err := c.Avoid(clearSonar())
	if err != nil {
		t.Fatalf("Avoid: %v", err)
	}
	if cmd.Fallback {
		t.Error("clear sonar should not fall back")
	}
	if cmd.Left != cmd.Velocidad || cmd.Right != cmd.Velocidad {
		t.Errorf("expected straight command, got %+v", cmd)
	}
	if len(cmd.Strengths) != 32 {
		t.Errorf("expected 32 strengths, got %d", len(cmd.Strengths))
	}

	// The ring carries 16 readings; the rear half is ignored.
	ring := append(clearSonar(), 0, 0, 0, 0, 0, 0, 0, 0)
	cmd16, err := c.Avoid(ring)
	if err != nil {
		t.Fatalf("Avoid(16): %v", err)
	}
	if cmd16.Left != cmd.Left || cmd16.Right != cmd.Right {
		t.Errorf("rear readings changed the command: %+v vs %+v", cmd16, cmd)
	}

	sonar := clearSonar()
	sonar[6] = 0.05
	cmd, err = c.Avoid(sonar)
	if err != nil {
		t.Fatalf("Avoid: %v", err)
	}
	if cmd.Right != cmd.AngularVel || cmd.Left != cmd.Velocidad {
		t.Errorf("left obstacle should steer right, got %+v", cmd)
	}
}

func TestControllerInputErrors(t *testing.T) {
	c := NewController(buildSystem(t), Options{})

	if _, err := c.Avoid([]float64{1, 1, 1}); !errors.Is(err, fuzzy.ErrMissingInput) {
		t.Errorf("short sonar: expected ErrMissingInput, got %v", err)
	}

	for _, bad := range []float64{-0.01, 1.2, math.NaN()} {
		sonar := clearSonar()
		sonar[2] = bad
		if _, err := c.Avoid(sonar); !errors.Is(err, fuzzy.ErrInputOutOfRange) {
			t.Errorf("reading %v: expected ErrInputOutOfRange, got %v", bad, err)
		}
	}
}

func TestControllerFallback(t *testing.T) {
	sys := buildSystem(t)

	t.Run("hold", func(t *testing.T) {
		c := NewController(sys, Options{Fallback: FallbackHold})
		prev, err := c.Avoid(clearSonar())
		if err != nil {
			t.Fatalf("Avoid: %v", err)
		}
		cmd, err := c.Avoid(unfiredTurn)
		if err != nil {
			t.Fatalf("hold fallback should not error: %v", err)
		}
		if !cmd.Fallback {
			t.Error("expected Fallback flag")
		}
		if cmd.Left != prev.Left || cmd.Right != prev.Right {
			t.Errorf("held (%v, %v), want previous (%v, %v)", cmd.Left, cmd.Right, prev.Left, prev.Right)
		}
		if len(cmd.Unfired) != 1 || cmd.Unfired[0] != AngularVel {
			t.Errorf("Unfired = %v, want [angularVel]", cmd.Unfired)
		}
	})

	t.Run("hold without history stops", func(t *testing.T) {
		c := NewController(sys, Options{Fallback: FallbackHold})
		cmd, err := c.Avoid(unfiredTurn)
		if err != nil {
			t.Fatalf("Avoid: %v", err)
		}
		if !cmd.Fallback || cmd.Left != 0 || cmd.Right != 0 {
			t.Errorf("expected stop fallback, got %+v", cmd)
		}
	})

	t.Run("stop", func(t *testing.T) {
		c := NewController(sys, Options{Fallback: FallbackStop})
		if _, err := c.Avoid(clearSonar()); err != nil {
			t.Fatalf("Avoid: %v", err)
		}
		cmd, err := c.Avoid(unfiredTurn)
		if err != nil {
			t.Fatalf("Avoid: %v", err)
		}
		if !cmd.Fallback || cmd.Left != 0 || cmd.Right != 0 || cmd.Velocidad != 0 {
			t.Errorf("expected stop, got %+v", cmd)
		}
	})

	t.Run("none", func(t *testing.T) {
		c := NewController(sys, Options{Fallback: FallbackNone})
		cmd, err := c.Avoid(unfiredTurn)
		var nrf *fuzzy.NoRuleFiredError
		if !errors.As(err, &nrf) {
			t.Fatalf("expected *NoRuleFiredError, got %v", err)
		}
		if cmd.Velocidad <= 0 {
			t.Errorf("velocidad should still be reported, got %v", cmd.Velocidad)
		}
		if _, ok := c.Last(); ok {
			t.Error("an unresolved tick must not become the held command")
		}
	})
}

func TestParseFallback(t *testing.T) {
	for _, f := range []Fallback{FallbackHold, FallbackStop, FallbackNone} {
		got, err := ParseFallback(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFallback(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFallback("coast"); !errors.Is(err, fuzzy.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestControllersShareSystem(t *testing.T) {
	sys := buildSystem(t)
	a := NewController(sys, Options{})
	b := NewController(sys, Options{})

	blocked := clearSonar()
	blocked[3], blocked[4] = 0.1, 0.1

	ca, _ := a.Avoid(clearSonar())
	cb, _ := b.Avoid(blocked)
	ca2, _ := a.Avoid(clearSonar())
	if ca.Left != ca2.Left || ca.Right != ca2.Right {
		t.Errorf("controller a changed after b ran: %+v vs %+v", ca, ca2)
	}
	if cb.Velocidad >= 0 {
		t.Errorf("controller b should reverse, got %v", cb.Velocidad)
	}
}
