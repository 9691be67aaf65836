package policy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/avoid/fuzzy"
)

// Fallback selects the command issued when an output has no rule firing.
type Fallback uint8

const (
	// FallbackHold repeats the previous command, or stops if there is none.
	FallbackHold Fallback = iota
	// FallbackStop commands zero speed on both wheels.
	FallbackStop
	// FallbackNone returns the *fuzzy.NoRuleFiredError to the caller.
	FallbackNone
)

var fallbackNames = [...]string{"hold", "stop", "none"}

func (f Fallback) String() string {
	if int(f) < len(fallbackNames) {
		return fallbackNames[f]
	}
	return fmt.Sprintf("fallback(%d)", f)
}

// ParseFallback maps "hold", "stop" or "none" to a Fallback.
func ParseFallback(s string) (Fallback, error) {
	for i, name := range fallbackNames {
		if name == s {
			return Fallback(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown fallback %q", fuzzy.ErrInvalidConfig, s)
}

// Command is one tick's output.
type Command struct {
	Velocidad  float64
	AngularVel float64
	Left       float64
	Right      float64
	// Fallback is set when the command was not produced by inference.
	Fallback bool
	// Unfired names the consequents that had no rule firing this tick.
	Unfired []string
	// Strengths holds every rule's firing strength in rule-table order.
	Strengths []float64
}

// LogValue implements slog.LogValuer.
func (c Command) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("velocidad", c.Velocidad),
		slog.Float64("angular_vel", c.AngularVel),
		slog.Float64("left", c.Left),
		slog.Float64("right", c.Right),
		slog.Bool("fallback", c.Fallback),
	)
}

// Options configures a Controller. The zero value uses DefaultDeadband,
// FallbackHold and slog.Default().
type Options struct {
	Deadband float64
	Fallback Fallback
	Logger   *slog.Logger
}

// Controller runs the avoidance system for one robot. It keeps its own
// session and the last command, so it must not be shared between
// goroutines; many controllers may share one *fuzzy.System.
type Controller struct {
	sys      *fuzzy.System
	sess     *fuzzy.Session
	deadband float64
	fallback Fallback
	logger   *slog.Logger

	last    Command
	hasLast bool
}

// NewController creates a controller over sys.
func NewController(sys *fuzzy.System, opts Options) *Controller {
	if opts.Deadband <= 0 {
		opts.Deadband = DefaultDeadband
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		sys:      sys,
		sess:     sys.NewSession(),
		deadband: opts.Deadband,
		fallback: opts.Fallback,
		logger:   opts.Logger,
	}
}

// System returns the shared rule base.
func (c *Controller) System() *fuzzy.System { return c.sys }

// Avoid computes the wheel command for a sonar sweep. Only the first
// NumSensors readings are used; the ring may carry more.
//
// Readings outside [0,1] fail fast with fuzzy.ErrInputOutOfRange. When an
// output has no rule firing the configured fallback decides the command; with
// FallbackNone the partial command and the *fuzzy.NoRuleFiredError are both
// returned.
func (c *Controller) Avoid(sonar []float64) (Command, error) {
	if len(sonar) < NumSensors {
		return Command{}, &fuzzy.MissingInputError{Variable: SensorName(len(sonar))}
	}
	c.sess.Reset()
	for i := 0; i < NumSensors; i++ {
		if err := c.sess.Set(SensorName(i), sonar[i]); err != nil {
			return Command{}, err
		}
	}

	out, err := c.sess.Compute()
	var nrf *fuzzy.NoRuleFiredError
	if err != nil && !errors.As(err, &nrf) {
		return Command{}, err
	}

	if nrf != nil {
		c.logger.Warn("no rule fired", "variables", nrf.Variables, "fallback", c.fallback.String())
		if c.fallback == FallbackNone {
			cmd := Command{
				Velocidad:  out.Values[Velocidad],
				AngularVel: out.Values[AngularVel],
				Unfired:    nrf.Variables,
				Strengths:  out.Strengths,
			}
			return cmd, err
		}
		cmd := c.fallbackCommand()
		cmd.Unfired = nrf.Variables
		cmd.Strengths = out.Strengths
		c.remember(cmd)
		return cmd, nil
	}

	cmd := Command{
		Velocidad:  out.Values[Velocidad],
		AngularVel: out.Values[AngularVel],
		Strengths:  out.Strengths,
	}
	cmd.Left, cmd.Right = MapOutput(cmd.Velocidad, cmd.AngularVel, c.deadband)
	c.logger.Debug("avoid", "command", cmd)
	c.remember(cmd)
	return cmd, nil
}

func (c *Controller) fallbackCommand() Command {
	if c.fallback == FallbackHold && c.hasLast {
		cmd := c.last
		cmd.Fallback = true
		return cmd
	}
	return Command{Fallback: true}
}

func (c *Controller) remember(cmd Command) {
	c.last = cmd
	c.last.Unfired = nil
	c.last.Strengths = nil
	c.hasLast = true
}

// Last returns the previous command and whether one was issued.
func (c *Controller) Last() (Command, bool) { return c.last, c.hasLast }
