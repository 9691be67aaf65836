// Package config provides configuration loading and access for the controller
// and its arena.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/policy"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Control   ControlConfig   `yaml:"control"`
	Engine    EngineConfig    `yaml:"engine"`
	Sonar     SonarConfig     `yaml:"sonar"`
	Robot     RobotConfig     `yaml:"robot"`
	Arena     ArenaConfig     `yaml:"arena"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ControlConfig holds the per-tick control loop parameters.
type ControlConfig struct {
	Period       time.Duration `yaml:"period"`        // Tick period
	Deadband     float64       `yaml:"deadband"`      // |angularVel| at or below this drives straight
	Fallback     string        `yaml:"fallback"`      // hold, stop or none when no rule fires
	SonarDefault float64       `yaml:"sonar_default"` // Substituted for failed or missing readings
}

// EngineConfig holds inference engine settings.
type EngineConfig struct {
	Resolution     float64 `yaml:"resolution"`      // Universe sampling step
	VelocityMethod string  `yaml:"velocity_method"` // Defuzzifier for velocidad
	TurnMethod     string  `yaml:"turn_method"`     // Defuzzifier for angularVel
}

// SonarConfig describes the proximity ring.
type SonarConfig struct {
	Count  int       `yaml:"count"`  // Readings per sweep
	Range  float64   `yaml:"range"`  // Detection range in metres; readings are distance/range
	Angles []float64 `yaml:"angles"` // Mounting angle per sensor in degrees, CCW from heading
	Noise  float64   `yaml:"noise"`  // Gaussian noise stddev added to normalized readings
}

// RobotConfig holds differential-drive geometry.
type RobotConfig struct {
	Radius      float64 `yaml:"radius"`       // Body radius in metres
	WheelRadius float64 `yaml:"wheel_radius"` // Metres
	AxleLength  float64 `yaml:"axle_length"`  // Distance between wheels in metres
	DriveGain   float64 `yaml:"drive_gain"`   // Wheel command to rad/s
	MaxWheel    float64 `yaml:"max_wheel"`    // Clamp on wheel rad/s
}

// ArenaConfig holds the simulated world.
type ArenaConfig struct {
	Width             float64 `yaml:"width"`  // Metres
	Height            float64 `yaml:"height"` // Metres
	DT                float64 `yaml:"dt"`     // Physics step in seconds
	Robots            int     `yaml:"robots"`
	Seed              int64   `yaml:"seed"`
	Obstacles         int     `yaml:"obstacles"`
	ObstacleMinRadius float64 `yaml:"obstacle_min_radius"`
	ObstacleMaxRadius float64 `yaml:"obstacle_max_radius"`
	NoiseScale        float64 `yaml:"noise_scale"` // Spatial frequency of obstacle placement noise
	Workers           int     `yaml:"workers"`     // Parallel robot workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow int  `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int  `yaml:"perf_window"`  // Ticks in the rolling perf window
	TickLog     bool `yaml:"tick_log"`     // Write one CSV row per robot per tick
}

// ServerConfig holds the optional HTTP inference API.
type ServerConfig struct {
	Listen    string  `yaml:"listen"`     // Empty disables the server
	RateLimit float64 `yaml:"rate_limit"` // Requests per second per client
	Burst     int     `yaml:"burst"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	SonarAnglesRad []float64
	ScreenW32      float32
	ScreenH32      float32
	TickSeconds    float64
	PhysicsSteps   int // Physics steps per control tick
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{fuzzy.ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Control.Period > 0, "control.period must be positive, got %v", c.Control.Period)
	// Zero means "use the default" to policy.NewController and control.NewLoop.
	check(c.Control.Deadband > 0, "control.deadband must be positive, got %g", c.Control.Deadband)
	check(c.Control.SonarDefault > 0 && c.Control.SonarDefault <= 1,
		"control.sonar_default must be in (0,1], got %g", c.Control.SonarDefault)
	if _, err := policy.ParseFallback(c.Control.Fallback); err != nil {
		errs = append(errs, fmt.Errorf("control.fallback: %w", err))
	}

	check(c.Engine.Resolution > 0 && c.Engine.Resolution <= 0.1,
		"engine.resolution must be in (0, 0.1], got %g", c.Engine.Resolution)
	if _, err := fuzzy.ParseDefuzzifier(c.Engine.VelocityMethod); err != nil {
		errs = append(errs, fmt.Errorf("engine.velocity_method: %w", err))
	}
	if _, err := fuzzy.ParseDefuzzifier(c.Engine.TurnMethod); err != nil {
		errs = append(errs, fmt.Errorf("engine.turn_method: %w", err))
	}

	check(c.Sonar.Count >= policy.NumSensors, "sonar.count must be at least %d, got %d", policy.NumSensors, c.Sonar.Count)
	check(len(c.Sonar.Angles) == c.Sonar.Count, "sonar.angles has %d entries, want %d", len(c.Sonar.Angles), c.Sonar.Count)
	check(c.Sonar.Range > 0, "sonar.range must be positive, got %g", c.Sonar.Range)
	check(c.Sonar.Noise >= 0, "sonar.noise must be >= 0, got %g", c.Sonar.Noise)

	check(c.Robot.Radius > 0, "robot.radius must be positive")
	check(c.Robot.WheelRadius > 0, "robot.wheel_radius must be positive")
	check(c.Robot.AxleLength > 0, "robot.axle_length must be positive")
	check(c.Robot.MaxWheel > 0, "robot.max_wheel must be positive")

	check(c.Arena.Width > 0 && c.Arena.Height > 0, "arena size must be positive, got %gx%g", c.Arena.Width, c.Arena.Height)
	check(c.Arena.DT > 0, "arena.dt must be positive, got %g", c.Arena.DT)
	check(c.Arena.Robots >= 1, "arena.robots must be at least 1, got %d", c.Arena.Robots)
	check(c.Arena.Obstacles >= 0, "arena.obstacles must be >= 0")
	check(c.Arena.ObstacleMinRadius > 0 && c.Arena.ObstacleMinRadius <= c.Arena.ObstacleMaxRadius,
		"arena obstacle radii [%g, %g] invalid", c.Arena.ObstacleMinRadius, c.Arena.ObstacleMaxRadius)

	check(c.Telemetry.StatsWindow > 0, "telemetry.stats_window must be positive")
	check(c.Telemetry.PerfWindow > 0, "telemetry.perf_window must be positive")

	if c.Server.Listen != "" {
		check(c.Server.RateLimit > 0, "server.rate_limit must be positive")
		check(c.Server.Burst > 0, "server.burst must be positive")
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.TickSeconds = c.Control.Period.Seconds()

	c.Derived.SonarAnglesRad = make([]float64, len(c.Sonar.Angles))
	for i, deg := range c.Sonar.Angles {
		c.Derived.SonarAnglesRad[i] = deg * math.Pi / 180
	}

	steps := int(math.Round(c.Derived.TickSeconds / c.Arena.DT))
	if steps < 1 {
		steps = 1
	}
	c.Derived.PhysicsSteps = steps
}

// PolicyParams returns the rule base parameters.
func (c *Config) PolicyParams() (policy.Params, error) {
	vm, err := fuzzy.ParseDefuzzifier(c.Engine.VelocityMethod)
	if err != nil {
		return policy.Params{}, err
	}
	tm, err := fuzzy.ParseDefuzzifier(c.Engine.TurnMethod)
	if err != nil {
		return policy.Params{}, err
	}
	return policy.Params{Resolution: c.Engine.Resolution, VelocityMethod: vm, TurnMethod: tm}, nil
}

// ControllerOptions returns the per-robot controller settings.
func (c *Config) ControllerOptions() (policy.Options, error) {
	fb, err := policy.ParseFallback(c.Control.Fallback)
	if err != nil {
		return policy.Options{}, err
	}
	return policy.Options{Deadband: c.Control.Deadband, Fallback: fb}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
