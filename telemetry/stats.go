package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Robots   int `csv:"robots"`
	Commands int `csv:"commands"`

	// Commanded forward speed
	VelMean float64 `csv:"vel_mean"`
	VelP10  float64 `csv:"vel_p10"`
	VelP50  float64 `csv:"vel_p50"`
	VelP90  float64 `csv:"vel_p90"`

	// Turn distribution, as fractions of Commands
	TurnLeft     float64 `csv:"turn_left"`
	TurnRight    float64 `csv:"turn_right"`
	TurnStraight float64 `csv:"turn_straight"`
	TurnStop     float64 `csv:"turn_stop"`

	Fallbacks    int     `csv:"fallbacks"`
	NoRuleFired  int     `csv:"no_rule_fired"`
	SensorErrors int     `csv:"sensor_errors"`
	Substituted  int     `csv:"substituted"`
	FiredMean    float64 `csv:"fired_rules_mean"`

	// Proximity: smallest front reading per command
	MinFrontP10 float64 `csv:"min_front_p10"`
	MinFrontP50 float64 `csv:"min_front_p50"`

	// Arena outcome during the window
	Collisions int     `csv:"collisions"`
	Distance   float64 `csv:"distance"`   // metres covered by all robots
	MeanSpeed  float64 `csv:"mean_speed"` // metres per second per robot
}

// Quantiles returns the mean and the 10th, 50th and 90th percentiles of
// values using the empirical CDF. values is not modified.
func Quantiles(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("robots", s.Robots),
		slog.Int("commands", s.Commands),
		slog.Float64("vel_mean", s.VelMean),
		slog.Float64("vel_p10", s.VelP10),
		slog.Float64("vel_p50", s.VelP50),
		slog.Float64("vel_p90", s.VelP90),
		slog.Float64("turn_left", s.TurnLeft),
		slog.Float64("turn_right", s.TurnRight),
		slog.Float64("turn_straight", s.TurnStraight),
		slog.Float64("turn_stop", s.TurnStop),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("no_rule_fired", s.NoRuleFired),
		slog.Int("sensor_errors", s.SensorErrors),
		slog.Int("substituted", s.Substituted),
		slog.Float64("fired_rules_mean", s.FiredMean),
		slog.Float64("min_front_p10", s.MinFrontP10),
		slog.Float64("min_front_p50", s.MinFrontP50),
		slog.Int("collisions", s.Collisions),
		slog.Float64("distance", s.Distance),
		slog.Float64("mean_speed", s.MeanSpeed),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"robots", s.Robots,
		"vel_p50", s.VelP50,
		"turn_left", s.TurnLeft,
		"turn_right", s.TurnRight,
		"fallbacks", s.Fallbacks,
		"no_rule_fired", s.NoRuleFired,
		"collisions", s.Collisions,
		"mean_speed", s.MeanSpeed,
	)
}
