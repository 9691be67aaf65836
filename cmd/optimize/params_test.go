package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/avoid/config"
	"github.com/pthm-cable/avoid/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	got := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(got[i]-def[i]) > 1e-12 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, got[i], def[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config has %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{-1, 100, 4, 1.5})

	if cfg.Control.Deadband != 0.01 {
		t.Errorf("deadband = %v, want clamp to 0.01", cfg.Control.Deadband)
	}
	if cfg.Robot.DriveGain != 6 {
		t.Errorf("drive gain = %v, want clamp to 6", cfg.Robot.DriveGain)
	}
	if cfg.Robot.MaxWheel != 4 || cfg.Sonar.Range != 1.5 {
		t.Errorf("max wheel %v, range %v", cfg.Robot.MaxWheel, cfg.Sonar.Range)
	}
}

func TestComputeFitness(t *testing.T) {
	clean := runSummary{Distance: 10, Clearance: 0.5}
	crashy := runSummary{Distance: 10, Clearance: 0.5, Collisions: 2}

	if got, want := computeFitness(clean), -11.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("clean fitness = %v, want %v", got, want)
	}
	if computeFitness(crashy) <= computeFitness(clean) {
		t.Error("collisions should worsen fitness")
	}
	if computeFitness(failedRun) < 1e5 {
		t.Error("failed runs should score far worse than any real run")
	}
}

func TestSummarize(t *testing.T) {
	windows := []telemetry.WindowStats{
		{Distance: 4, Collisions: 1, Fallbacks: 2, MinFrontP50: 0.6},
		{Distance: 6, Collisions: 1, Fallbacks: 0, MinFrontP50: 0.8},
	}
	s := summarize(windows, 2)
	if s.Distance != 5 || s.Collisions != 1 || s.Fallbacks != 1 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.Clearance-0.7) > 1e-12 {
		t.Errorf("clearance = %v, want 0.7", s.Clearance)
	}
	if got := summarize(nil, 2); got != (runSummary{}) {
		t.Errorf("empty summary = %+v", got)
	}
}
