package ui

import (
	"testing"
	"time"

	"github.com/pthm-cable/avoid/telemetry"
)

func TestSortedPhases(t *testing.T) {
	stats := telemetry.PerfStats{
		PhaseAvg: map[string]time.Duration{
			telemetry.PhaseControl:  600 * time.Microsecond,
			telemetry.PhasePhysics:  200 * time.Microsecond,
			telemetry.PhaseApply:    100 * time.Microsecond,
			telemetry.PhaseSnapshot: 100 * time.Microsecond,
		},
		PhasePct: map[string]float64{
			telemetry.PhaseControl:  60,
			telemetry.PhasePhysics:  20,
			telemetry.PhaseApply:    10,
			telemetry.PhaseSnapshot: 10,
		},
	}

	got := SortedPhases(stats)
	want := []string{telemetry.PhaseControl, telemetry.PhasePhysics, telemetry.PhaseApply, telemetry.PhaseSnapshot}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("phase %d = %q, want %q", i, got[i].Name, name)
		}
	}
	if got[0].Avg != 600*time.Microsecond || got[0].Pct != 60 {
		t.Errorf("control row = %+v", got[0])
	}
}

func TestSortedPhasesEmpty(t *testing.T) {
	if got := SortedPhases(telemetry.PerfStats{}); len(got) != 0 {
		t.Errorf("SortedPhases(empty) = %v, want none", got)
	}
}
