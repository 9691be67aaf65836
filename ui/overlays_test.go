package ui

import (
	"slices"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	r := NewOverlayRegistry()

	want := []OverlayID{OverlaySonarRays, OverlayContacts, OverlayFleetPanel}
	if got := r.EnabledOverlays(); !slices.Equal(got, want) {
		t.Errorf("EnabledOverlays() = %v, want %v", got, want)
	}
}

func TestOverlayToggleExclusive(t *testing.T) {
	r := NewOverlayRegistry()

	if !r.Toggle(OverlaySonarHits) {
		t.Fatal("Toggle(sonar_hits) should enable it")
	}
	if r.IsEnabled(OverlaySonarRays) {
		t.Error("enabling hits should disable rays")
	}

	r.SetEnabled(OverlaySonarRays, true)
	if r.IsEnabled(OverlaySonarHits) {
		t.Error("enabling rays should disable hits")
	}

	// Disabling does not re-enable the exclusive partner.
	r.Toggle(OverlaySonarRays)
	if r.IsEnabled(OverlaySonarRays) || r.IsEnabled(OverlaySonarHits) {
		t.Error("both sonar overlays should be off")
	}
}

func TestOverlayUnknownID(t *testing.T) {
	r := NewOverlayRegistry()
	if r.Toggle("nope") {
		t.Error("Toggle of an unknown overlay should report false")
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("Get of an unknown overlay should fail")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	r := NewOverlayRegistry()

	id, on, ok := r.HandleKeyPress(rl.KeyL)
	if !ok || id != OverlayRobotLabels || !on {
		t.Errorf("HandleKeyPress(L) = (%q, %v, %v), want (robot_labels, true, true)", id, on, ok)
	}
	if _, _, ok := r.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}
}

func TestOverlayCategories(t *testing.T) {
	r := NewOverlayRegistry()

	want := []string{"sonar", "debug", "panels"}
	if got := r.Categories(); !slices.Equal(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if n := len(r.ByCategory("sonar")); n != 2 {
		t.Errorf("sonar overlays = %d, want 2", n)
	}
}
