package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/avoid/config"
	"github.com/pthm-cable/avoid/game"
	"github.com/pthm-cable/avoid/telemetry"
)

// Fitness weights. A collision costs as much as collisionPenalty metres of
// travel; a fallback tick costs fallbackPenalty metres.
const (
	collisionPenalty = 2.0
	fallbackPenalty  = 0.05
	clearanceBonus   = 0.2
)

// failedRun scores an arena that could not be built or run.
var failedRun = runSummary{Collisions: 1e6}

// FitnessEvaluator runs headless arenas and scores them.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu          sync.Mutex
	bestFitness float64
	last        runSummary // mean over seeds of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		bestFitness: math.Inf(1),
	}
}

// runSummary is one run's outcome, per robot.
type runSummary struct {
	Distance   float64 // metres
	Collisions float64
	Fallbacks  float64
	Clearance  float64 // mean of the windows' median frontal reading
}

// Last returns the seed-averaged summary of the most recent evaluation.
func (fe *FitnessEvaluator) Last() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for a parameter vector (lower = better). Seeds
// run in parallel; each arena is independent.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runSummary, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var mean runSummary
	var total float64
	for _, r := range results {
		total += computeFitness(r)
		mean.Distance += r.Distance
		mean.Collisions += r.Collisions
		mean.Fallbacks += r.Fallbacks
		mean.Clearance += r.Clearance
	}
	n := float64(len(results))
	mean.Distance /= n
	mean.Collisions /= n
	mean.Fallbacks /= n
	mean.Clearance /= n
	avg := total / n

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, avg)
	fe.last = mean
	fe.mu.Unlock()
	return avg
}

// runSimulation runs one arena for maxTicks control ticks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runSummary {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Arena.Seed = seed
	cfg.Arena.Workers = 1 // seeds already run in parallel

	var windows []telemetry.WindowStats
	g, err := game.NewGame(game.Options{
		Config:   cfg,
		Headless: true,
		Logger:   fe.logger,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		fe.logger.Error("building arena", "error", err)
		return failedRun
	}
	defer g.Unload()

	if err := g.Run(context.Background(), fe.maxTicks); err != nil {
		return failedRun
	}
	return summarize(windows, g.RobotCount())
}

// summarize reduces window stats to per-robot totals.
func summarize(windows []telemetry.WindowStats, robots int) runSummary {
	var s runSummary
	if robots == 0 || len(windows) == 0 {
		return s
	}
	for _, w := range windows {
		s.Distance += w.Distance
		s.Collisions += float64(w.Collisions)
		s.Fallbacks += float64(w.Fallbacks)
		s.Clearance += w.MinFrontP50
	}
	r := float64(robots)
	s.Distance /= r
	s.Collisions /= r
	s.Fallbacks /= r
	s.Clearance /= float64(len(windows))
	return s
}

// copyConfig returns a copy of the base config. Slices are shared and must
// not be modified.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness scores a run (lower = better):
// -(distance × (1 + clearanceBonus × clearance)) + penalties.
// Distance dominates; clearance rewards keeping away from obstacles.
func computeFitness(r runSummary) float64 {
	reward := r.Distance * (1 + clearanceBonus*clamp01(r.Clearance))
	return -reward + collisionPenalty*r.Collisions + fallbackPenalty*r.Fallbacks
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
