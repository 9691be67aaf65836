// Package control runs the fixed-period sense, infer, actuate cycle against
// external sensor and actuator collaborators.
package control

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/policy"
)

// DefaultPeriod is the control tick period.
const DefaultPeriod = 100 * time.Millisecond

// DefaultReadings is the size of the sonar ring.
const DefaultReadings = 16

// SensorProvider returns one sonar sweep. Readings are normalized to [0,1],
// 1 meaning nothing detected.
type SensorProvider interface {
	ReadSonar(ctx context.Context) ([]float64, error)
}

// ActuatorSink accepts target wheel speeds. Delivery is fire-and-forget.
type ActuatorSink interface {
	SetWheelSpeeds(ctx context.Context, left, right float64) error
}

// Avoider turns a sonar sweep into a command. *policy.Controller implements it.
type Avoider interface {
	Avoid(sonar []float64) (policy.Command, error)
}

// Tick is the record of one control cycle.
type Tick struct {
	Seq     uint64
	Start   time.Time
	Sonar   []float64
	Command policy.Command
	// Substituted counts readings replaced by the default value.
	Substituted int
	SensorErr   error
	Err         error

	Sense   time.Duration
	Infer   time.Duration
	Actuate time.Duration
}

// Observer receives every tick after the command has been sent.
type Observer interface {
	ObserveTick(t Tick)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Tick)

// ObserveTick implements Observer.
func (f ObserverFunc) ObserveTick(t Tick) { f(t) }

// Options configures a Loop. Zero fields take the package defaults; a zero
// DefaultReading means 1.0.
type Options struct {
	Period         time.Duration
	Readings       int
	DefaultReading float64
	Observer       Observer
	Logger         *slog.Logger
}

// Loop drives one robot.
type Loop struct {
	sensor   SensorProvider
	actuator ActuatorSink
	ctrl     Avoider
	opts     Options
	seq      uint64
}

// NewLoop wires a loop. It does not start ticking.
func NewLoop(sensor SensorProvider, actuator ActuatorSink, ctrl Avoider, opts Options) *Loop {
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.Readings <= 0 {
		opts.Readings = DefaultReadings
	}
	if opts.DefaultReading == 0 {
		opts.DefaultReading = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loop{sensor: sensor, actuator: actuator, ctrl: ctrl, opts: opts}
}

// Period returns the tick period.
func (l *Loop) Period() time.Duration { return l.opts.Period }

// Run ticks until ctx is cancelled. A failed tick is logged and the loop
// moves on to the next one.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.opts.Period)
	defer ticker.Stop()

	for {
		if _, err := l.Step(ctx); err != nil && ctx.Err() == nil {
			l.opts.Logger.Error("control tick failed", "seq", l.seq, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step runs one cycle synchronously.
//
// A failed sonar read is replaced by a sweep of default readings, and so is
// every missing or NaN reading. If the controller fails the robot is sent a
// stop command and the error is returned. Actuator errors are logged only.
func (l *Loop) Step(ctx context.Context) (Tick, error) {
	l.seq++
	t := Tick{Seq: l.seq, Start: time.Now()}

	raw, err := l.sensor.ReadSonar(ctx)
	if err != nil {
		t.SensorErr = err
		l.opts.Logger.Warn("sonar read failed, using defaults", "seq", t.Seq, "error", err)
		raw = nil
	}
	t.Sonar, t.Substituted = l.normalize(raw)
	sensed := time.Now()
	t.Sense = sensed.Sub(t.Start)

	cmd, err := l.ctrl.Avoid(t.Sonar)
	inferred := time.Now()
	t.Infer = inferred.Sub(sensed)
	if err != nil {
		t.Err = err
		if errors.Is(err, fuzzy.ErrNoRuleFired) {
			l.opts.Logger.Warn("no rule fired, stopping", "seq", t.Seq, "error", err)
		}
		cmd = policy.Command{Fallback: true, Unfired: cmd.Unfired, Strengths: cmd.Strengths}
	}
	t.Command = cmd

	if aerr := l.actuator.SetWheelSpeeds(ctx, cmd.Left, cmd.Right); aerr != nil {
		l.opts.Logger.Warn("actuator write failed", "seq", t.Seq, "error", aerr)
	}
	t.Actuate = time.Since(inferred)

	if l.opts.Observer != nil {
		l.opts.Observer.ObserveTick(t)
	}
	return t, t.Err
}

func (l *Loop) normalize(raw []float64) ([]float64, int) {
	n := l.opts.Readings
	if len(raw) > n {
		n = len(raw)
	}
	out := make([]float64, n)
	subs := 0
	for i := range out {
		if i < len(raw) && !math.IsNaN(raw[i]) {
			out[i] = raw[i]
			continue
		}
		out[i] = l.opts.DefaultReading
		subs++
	}
	return out, subs
}
