package ui

import (
	"testing"
	"time"

	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/telemetry"
)

func fieldIDs(fields []FieldDescriptor) []string {
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}
	return ids
}

func TestFleetPanelHidesEmptySections(t *testing.T) {
	pd := FleetPanel(220)

	if got := pd.VisibleFields(&FleetData{}); len(got) != 0 {
		t.Errorf("before the first window: visible = %v, want none", fieldIDs(got))
	}

	data := &FleetData{Stats: telemetry.WindowStats{WindowEndTick: 100, Commands: 400}}
	got := pd.VisibleFields(data)
	if len(got) == 0 || got[0].Widget != WidgetSection || got[0].Label != "Last window" {
		t.Fatalf("first field = %+v, want the window header", got)
	}
	for _, f := range got {
		if f.ID == "fallbacks" {
			t.Error("fallback row should hide when there were none")
		}
		if f.ID == "inference" {
			t.Error("inference section should hide without samples")
		}
	}

	data.Stats.Fallbacks = 3
	data.Perf.Inferences = 10
	ids := fieldIDs(pd.VisibleFields(data))
	for _, want := range []string{"fallbacks", "inference", "infer_p99"} {
		found := false
		for _, id := range ids {
			found = found || id == want
		}
		if !found {
			t.Errorf("%q missing from %v", want, ids)
		}
	}
}

func TestFieldText(t *testing.T) {
	data := &FleetData{
		Stats: telemetry.WindowStats{
			WindowEndTick: 10,
			Commands:      40,
			TurnLeft:      0.25,
			TurnStraight:  0.5,
			TurnRight:     0.25,
			MeanSpeed:     0.123,
		},
		Perf: telemetry.PerfStats{Inferences: 1, InferP50: 150 * time.Microsecond},
	}
	want := map[string]string{
		"commands":  "40",
		"turn":      "25% 50% 25%",
		"speed":     "0.12 m/s",
		"infer_p50": "150µs",
	}
	for _, f := range FleetPanel(220).VisibleFields(data) {
		if w, ok := want[f.ID]; ok {
			if got := f.Text(data); got != w {
				t.Errorf("%s: Text() = %q, want %q", f.ID, got, w)
			}
			delete(want, f.ID)
		}
	}
	if len(want) > 0 {
		t.Errorf("fields not found: %v", want)
	}
}

func TestFieldTextDefaultFormat(t *testing.T) {
	fd := FieldDescriptor{Getter: func(any) float64 { return 1.0 / 3 }}
	if got := fd.Text(nil); got != "0.33" {
		t.Errorf("Text() = %q, want 0.33", got)
	}
	if got := (FieldDescriptor{}).Text(nil); got != "" {
		t.Errorf("empty descriptor Text() = %q, want empty", got)
	}
}

func TestRobotPanelFallbackBanner(t *testing.T) {
	pd := RobotPanel(220)
	data := &RobotData{Command: policy.Command{Velocidad: 0.5}}
	for _, f := range pd.VisibleFields(data) {
		if f.ID == "fallback" {
			t.Error("banner shown for an inferred command")
		}
	}

	data.Command.Fallback = true
	fields := pd.VisibleFields(data)
	if last := fields[len(fields)-1]; last.ID != "fallback" {
		t.Errorf("last field = %q, want the fallback banner", last.ID)
	}
}
