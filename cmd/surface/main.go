// Command surface sweeps two sonar readings over a grid, holding the others
// fixed, and writes the controller's output surface as CSV.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/avoid/config"
	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/policy"
)

// Point is one grid sample.
type Point struct {
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	Velocidad  float64 `csv:"velocidad"`
	AngularVel float64 `csv:"angular_vel"`
	Left       float64 `csv:"left"`
	Right      float64 `csv:"right"`
	Fired      int     `csv:"fired_rules"`
	NoRule     bool    `csv:"no_rule_fired"`
}

// Sweep configures a grid.
type Sweep struct {
	XSensor, YSensor int
	Steps            int     // samples per axis, >= 2
	Rest             float64 // reading for every other sensor
}

// Run evaluates the grid row by row, x varying fastest. Grid points where
// no rule fires are reported with NoRule set and zero outputs.
func (s Sweep) Run(ctrl *policy.Controller) ([]Point, error) {
	if s.Steps < 2 {
		return nil, fmt.Errorf("steps must be at least 2, got %d", s.Steps)
	}
	for _, i := range []int{s.XSensor, s.YSensor} {
		if i < 0 || i >= policy.NumSensors {
			return nil, fmt.Errorf("sensor %d out of range", i)
		}
	}
	if s.XSensor == s.YSensor {
		return nil, errors.New("x and y sensors must differ")
	}

	sonar := make([]float64, policy.NumSensors)
	points := make([]Point, 0, s.Steps*s.Steps)
	for yi := 0; yi < s.Steps; yi++ {
		for xi := 0; xi < s.Steps; xi++ {
			for i := range sonar {
				sonar[i] = s.Rest
			}
			x := float64(xi) / float64(s.Steps-1)
			y := float64(yi) / float64(s.Steps-1)
			sonar[s.XSensor], sonar[s.YSensor] = x, y

			cmd, err := ctrl.Avoid(sonar)
			p := Point{X: x, Y: y}
			switch {
			case errors.Is(err, fuzzy.ErrNoRuleFired):
				p.NoRule = true
			case err != nil:
				return nil, fmt.Errorf("at (%g, %g): %w", x, y, err)
			default:
				p.Velocidad, p.AngularVel = cmd.Velocidad, cmd.AngularVel
				p.Left, p.Right = cmd.Left, cmd.Right
			}
			p.Fired = fired(cmd.Strengths)
			points = append(points, p)
		}
	}
	return points, nil
}

func fired(strengths []float64) int {
	n := 0
	for _, s := range strengths {
		if s > 0 {
			n++
		}
	}
	return n
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	xSensor := flag.Int("x", 3, "Sensor swept along x")
	ySensor := flag.Int("y", 4, "Sensor swept along y")
	steps := flag.Int("steps", 21, "Samples per axis")
	rest := flag.Float64("rest", 1.0, "Reading for the other sensors")
	out := flag.String("out", "", "Output CSV file (empty = stdout)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *out, Sweep{XSensor: *xSensor, YSensor: *ySensor, Steps: *steps, Rest: *rest}); err != nil {
		logger.Error("surface failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, out string, s Sweep) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params, err := cfg.PolicyParams()
	if err != nil {
		return err
	}
	sys, err := policy.Build(params)
	if err != nil {
		return err
	}
	opts, err := cfg.ControllerOptions()
	if err != nil {
		return err
	}
	opts.Fallback = policy.FallbackNone
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	points, err := s.Run(policy.NewController(sys, opts))
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return gocsv.Marshal(points, w)
}
