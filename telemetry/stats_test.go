package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/avoid/control"
	"github.com/pthm-cable/avoid/policy"
)

func TestQuantiles(t *testing.T) {
	tests := []struct {
		name                 string
		values               []float64
		mean, p10, p50, p90 float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"single", []float64{5}, 5, 5, 5, 5},
		{"odd", []float64{5, 1, 4, 2, 3}, 3, 1, 3, 5},
		{"ten", []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}, 0.55, 0.1, 0.5, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, p10, p50, p90 := Quantiles(tt.values)
			got := []float64{mean, p10, p50, p90}
			want := []float64{tt.mean, tt.p10, tt.p50, tt.p90}
			for i := range got {
				if math.Abs(got[i]-want[i]) > 1e-9 {
					t.Errorf("Quantiles(%v) = %v, want %v", tt.values, got, want)
					break
				}
			}
		})
	}
}

func TestQuantilesDoesNotReorder(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantiles(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestClassifyTurn(t *testing.T) {
	tests := []struct {
		name string
		cmd  policy.Command
		want Turn
	}{
		{"straight", policy.Command{Velocidad: 1, AngularVel: 0.005, Left: 1, Right: 1}, TurnStraight},
		{"right", policy.Command{Velocidad: 0.5, AngularVel: -0.17}, TurnRight},
		{"left", policy.Command{Velocidad: 0.5, AngularVel: 0.21}, TurnLeft},
		{"deadband edge", policy.Command{AngularVel: 0.05}, TurnStraight},
		{"stop", policy.Command{Fallback: true}, TurnStop},
		{"held", policy.Command{Fallback: true, AngularVel: 0.3, Left: 0.3, Right: 0.6}, TurnLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTurn(tt.cmd, 0.05); got != tt.want {
				t.Errorf("ClassifyTurn = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewTickRecord(t *testing.T) {
	tick := control.Tick{
		Sonar: []float64{1, 1, 0.4, 0.2, 0.9, 1, 1, 1, 0.1, 0.1, 1, 1, 1, 1, 1, 1},
		Command: policy.Command{
			Velocidad: 0.6, AngularVel: -0.17, Left: 0.6, Right: -0.17,
			Strengths: []float64{0, 0.3, 0, 0.8},
		},
		Substituted: 2,
		Infer:       120 * time.Microsecond,
	}
	r := NewTickRecord(7, 0.7, 3, Pose{X: 1, Y: 2, Heading: 0.5}, tick, 0.05)

	if r.Tick != 7 || r.Robot != 3 || r.X != 1 || r.Y != 2 {
		t.Errorf("identity fields = %+v", r)
	}
	if r.S3 != 0.2 || r.S7 != 1 {
		t.Errorf("sensor columns s3=%v s7=%v", r.S3, r.S7)
	}
	// Rear readings do not count towards the front minimum.
	if r.MinFront != 0.2 {
		t.Errorf("min front = %v, want 0.2", r.MinFront)
	}
	if r.Fired != 2 {
		t.Errorf("fired = %d, want 2", r.Fired)
	}
	if r.Turn != TurnRight {
		t.Errorf("turn = %s, want right", r.Turn)
	}
	if r.InferUS != 120 || r.Substitute != 2 {
		t.Errorf("infer_us=%d substituted=%d", r.InferUS, r.Substitute)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10, 0.1)

	for i := 0; i < 4; i++ {
		c.Record(TickRecord{Velocidad: float64(i + 1), MinFront: 0.5, Turn: TurnStraight, Fired: 2})
	}
	c.Record(TickRecord{Velocidad: 0, MinFront: 0.1, Turn: TurnStop, Fallback: true, Unfired: "angularVel", SensorErr: true, Substitute: 16})

	if c.ShouldFlush(9) {
		t.Error("window should not flush before 10 ticks")
	}
	if !c.ShouldFlush(10) {
		t.Fatal("window should flush at 10 ticks")
	}

	s := c.Flush(10, Totals{Robots: 1, Collisions: 2, Odometer: 0.5})
	if s.Commands != 5 {
		t.Errorf("commands = %d, want 5", s.Commands)
	}
	if math.Abs(s.VelMean-2) > 1e-9 || s.VelP50 != 2 {
		t.Errorf("velocity mean=%v p50=%v, want 2 and 2", s.VelMean, s.VelP50)
	}
	if math.Abs(s.TurnStraight-0.8) > 1e-9 || math.Abs(s.TurnStop-0.2) > 1e-9 {
		t.Errorf("turns straight=%v stop=%v", s.TurnStraight, s.TurnStop)
	}
	if s.Fallbacks != 1 || s.NoRuleFired != 1 || s.SensorErrors != 1 || s.Substituted != 16 {
		t.Errorf("counters = %+v", s)
	}
	if s.MinFrontP10 != 0.1 {
		t.Errorf("min front p10 = %v, want 0.1", s.MinFrontP10)
	}
	if s.Collisions != 2 || s.Distance != 0.5 {
		t.Errorf("collisions=%d distance=%v", s.Collisions, s.Distance)
	}
	if math.Abs(s.MeanSpeed-0.5) > 1e-9 {
		t.Errorf("mean speed = %v, want 0.5 m/s", s.MeanSpeed)
	}
	if math.Abs(s.SimTimeSec-1) > 1e-9 {
		t.Errorf("sim time = %v, want 1", s.SimTimeSec)
	}

	// The next window reports deltas only.
	c.Record(TickRecord{Velocidad: 1, Turn: TurnLeft})
	s = c.Flush(20, Totals{Robots: 1, Collisions: 3, Odometer: 1.5})
	if s.WindowStartTick != 10 || s.Commands != 1 || s.Collisions != 1 || s.Distance != 1 {
		t.Errorf("second window = %+v", s)
	}
	if s.Fallbacks != 0 || s.TurnLeft != 1 {
		t.Errorf("counters not reset: %+v", s)
	}
}
