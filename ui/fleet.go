package ui

import (
	"fmt"

	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/telemetry"
)

// FleetData is what the fleet panel shows.
type FleetData struct {
	Stats telemetry.WindowStats
	Perf  telemetry.PerfStats
}

func fleet(data any) *FleetData {
	if d, ok := data.(*FleetData); ok {
		return d
	}
	return &FleetData{}
}

func hasWindow(data any) bool { return fleet(data).Stats.WindowEndTick > 0 }

// FleetPanel describes the fleet statistics panel.
func FleetPanel(width int32) PanelDescriptor {
	return PanelDescriptor{
		ID:    "fleet",
		Title: "Fleet",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID:      "window",
				Title:   "Last window",
				Visible: hasWindow,
				Fields: []FieldDescriptor{
					{ID: "commands", Label: "Commands", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(fleet(d).Stats.Commands) }},
					{ID: "vel_p50", Label: "Velocidad", Widget: WidgetBar, Range: FieldRange{Max: 1.5},
						Getter: func(d any) float64 { return fleet(d).Stats.VelP50 }},
					{ID: "turn", Label: "Turns L/S/R", Widget: WidgetText,
						TextGetter: func(d any) string {
							s := fleet(d).Stats
							return fmt.Sprintf("%.0f%% %.0f%% %.0f%%", s.TurnLeft*100, s.TurnStraight*100, s.TurnRight*100)
						}},
					{ID: "min_front", Label: "Front p10", Widget: WidgetBar, Range: DefaultRange(),
						Getter: func(d any) float64 { return fleet(d).Stats.MinFrontP10 }},
					{ID: "collisions", Label: "Collisions", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(fleet(d).Stats.Collisions) }},
					{ID: "fallbacks", Label: "Fallbacks", Widget: WidgetText, Format: "%.0f",
						Getter:  func(d any) float64 { return float64(fleet(d).Stats.Fallbacks) },
						Visible: func(d any) bool { return fleet(d).Stats.Fallbacks > 0 }},
					{ID: "speed", Label: "Mean speed", Widget: WidgetText, Format: "%.2f m/s",
						Getter: func(d any) float64 { return fleet(d).Stats.MeanSpeed }},
				},
			},
			{
				ID:      "inference",
				Title:   "Inference",
				Visible: func(d any) bool { return fleet(d).Perf.Inferences > 0 },
				Fields: []FieldDescriptor{
					{ID: "infer_p50", Label: "p50", Widget: WidgetText,
						TextGetter: func(d any) string { return fleet(d).Perf.InferP50.String() }},
					{ID: "infer_p99", Label: "p99", Widget: WidgetText,
						TextGetter: func(d any) string { return fleet(d).Perf.InferP99.String() }},
					{ID: "tps", Label: "Ticks/s", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return fleet(d).Perf.TicksPerSecond }},
				},
			},
		},
	}
}

// RobotData is what the robot panel shows for the selected robot.
type RobotData struct {
	ID      int
	Command policy.Command
}

// RobotPanel describes the selected robot's command panel.
func RobotPanel(width int32) PanelDescriptor {
	get := func(data any) policy.Command {
		if d, ok := data.(*RobotData); ok {
			return d.Command
		}
		return policy.Command{}
	}
	return PanelDescriptor{
		ID:    "robot",
		Title: "Command",
		Width: width,
		Sections: []SectionDescriptor{{
			ID: "outputs",
			Fields: []FieldDescriptor{
				{ID: "velocidad", Label: "velocidad", Widget: WidgetBar, Range: FieldRange{Max: 1.5},
					Getter: func(d any) float64 { return get(d).Velocidad }},
				{ID: "angular", Label: "angularVel", Widget: WidgetCenteredBar, Range: CenteredRange(),
					Getter: func(d any) float64 { return get(d).AngularVel }},
				{ID: "left", Label: "left", Widget: WidgetCenteredBar, Range: FieldRange{Min: -1.5, Max: 1.5},
					Getter: func(d any) float64 { return get(d).Left }},
				{ID: "right", Label: "right", Widget: WidgetCenteredBar, Range: FieldRange{Min: -1.5, Max: 1.5},
					Getter: func(d any) float64 { return get(d).Right }},
				{ID: "fallback", Label: "FALLBACK", Widget: WidgetSection,
					Visible: func(d any) bool { return get(d).Fallback }},
			},
		}},
	}
}
