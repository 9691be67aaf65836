package main

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/avoid/policy"
)

func newController(t *testing.T) *policy.Controller {
	t.Helper()
	sys, err := policy.Build(policy.DefaultParams())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return policy.NewController(sys, policy.Options{
		Fallback: policy.FallbackNone,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestSweepGrid(t *testing.T) {
	points, err := Sweep{XSensor: 3, YSensor: 4, Steps: 5, Rest: 1}.Run(newController(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(points) != 25 {
		t.Fatalf("got %d points, want 25", len(points))
	}
	if points[1].X != 0.25 || points[1].Y != 0 {
		t.Errorf("x should vary fastest, got %+v", points[1])
	}

	// (1,1) is the all-clear sweep.
	last := points[24]
	if math.Abs(last.Velocidad-1.1286) > 0.01 {
		t.Errorf("all clear velocidad = %v", last.Velocidad)
	}
	if last.Left != last.Right {
		t.Errorf("all clear should drive straight, got %v/%v", last.Left, last.Right)
	}
	for _, p := range points {
		if !p.NoRule && p.Fired == 0 {
			t.Errorf("%+v: output without a fired rule", p)
		}
	}
}

func TestSweepRejectsBadGrid(t *testing.T) {
	ctrl := newController(t)
	tests := []struct {
		name string
		s    Sweep
	}{
		{"one step", Sweep{XSensor: 3, YSensor: 4, Steps: 1}},
		{"same sensor", Sweep{XSensor: 3, YSensor: 3, Steps: 3}},
		{"sensor out of range", Sweep{XSensor: 3, YSensor: 8, Steps: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Run(ctrl); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSurfaceCSV(t *testing.T) {
	points, err := Sweep{XSensor: 0, YSensor: 7, Steps: 3, Rest: 1}.Run(newController(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var buf bytes.Buffer
	if err := gocsv.Marshal(points, &buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	header, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	want := "x,y,velocidad,angular_vel,left,right,fired_rules,no_rule_fired"
	if string(header) != want {
		t.Errorf("header = %q, want %q", header, want)
	}
}
