package telemetry

// Totals are the cumulative per-run counters a window is measured against.
type Totals struct {
	Robots     int
	Collisions int
	Odometer   float64
}

// Collector accumulates tick records within fixed windows and produces
// WindowStats.
type Collector struct {
	windowTicks int32
	tickSec     float64

	windowStartTick int32
	lastTotals      Totals

	velocities []float64
	minFront   []float64
	turns      map[Turn]int
	fallbacks  int
	noRule     int
	sensorErrs int
	subs       int
	fired      int
}

// NewCollector creates a collector flushing every windowTicks control
// ticks of tickSec seconds each.
func NewCollector(windowTicks int, tickSec float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int32(windowTicks),
		tickSec:     tickSec,
		turns:       make(map[Turn]int),
	}
}

// Record adds one robot tick to the current window.
func (c *Collector) Record(r TickRecord) {
	c.velocities = append(c.velocities, r.Velocidad)
	c.minFront = append(c.minFront, r.MinFront)
	c.turns[r.Turn]++
	if r.Fallback {
		c.fallbacks++
	}
	if r.Unfired != "" {
		c.noRule++
	}
	if r.SensorErr {
		c.sensorErrs++
	}
	c.subs += r.Substitute
	c.fired += r.Fired
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// totals are the run's cumulative counters at currentTick; the window
// reports their change since the previous flush.
func (c *Collector) Flush(currentTick int32, totals Totals) WindowStats {
	n := len(c.velocities)
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.tickSec,
		Robots:          totals.Robots,
		Commands:        n,
		Fallbacks:       c.fallbacks,
		NoRuleFired:     c.noRule,
		SensorErrors:    c.sensorErrs,
		Substituted:     c.subs,
		Collisions:      totals.Collisions - c.lastTotals.Collisions,
		Distance:        totals.Odometer - c.lastTotals.Odometer,
	}

	stats.VelMean, stats.VelP10, stats.VelP50, stats.VelP90 = Quantiles(c.velocities)
	_, stats.MinFrontP10, stats.MinFrontP50, _ = Quantiles(c.minFront)

	if n > 0 {
		stats.TurnLeft = float64(c.turns[TurnLeft]) / float64(n)
		stats.TurnRight = float64(c.turns[TurnRight]) / float64(n)
		stats.TurnStraight = float64(c.turns[TurnStraight]) / float64(n)
		stats.TurnStop = float64(c.turns[TurnStop]) / float64(n)
		stats.FiredMean = float64(c.fired) / float64(n)
	}
	if elapsed := float64(currentTick-c.windowStartTick) * c.tickSec; elapsed > 0 && totals.Robots > 0 {
		stats.MeanSpeed = stats.Distance / elapsed / float64(totals.Robots)
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.lastTotals = totals
	c.velocities = c.velocities[:0]
	c.minFront = c.minFront[:0]
	clear(c.turns)
	c.fallbacks = 0
	c.noRule = 0
	c.sensorErrs = 0
	c.subs = 0
	c.fired = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowTicks
}
