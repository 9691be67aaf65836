// Package inspector renders a detail panel for the selected robot, driven
// by `inspect` struct tags on its components.
package inspector

import (
	"fmt"
	"reflect"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Panel dimensions
const (
	PanelWidth    = 320
	PanelPadding  = 10
	HeaderHeight  = 30
	ContentWidth  = PanelWidth - 2*PanelPadding
	diagramHeight = 260
	topRuleLines  = 4
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// View is everything the panel shows for one robot.
type View struct {
	ID         int
	Components []any // pointers to tagged component structs
	Strengths  []float64
	Outputs    []float64 // defuzzified values in RuleGraph.Outputs order
}

// Inspector manages robot selection and panel rendering.
type Inspector struct {
	selected     int
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
	graph        RuleGraph
}

// NewInspector creates a new inspector for a rule base laid out as graph.
func NewInspector(screenWidth, screenHeight int32, graph RuleGraph) *Inspector {
	ins := &Inspector{graph: graph}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize keeps the panel anchored to the top-right corner.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// Select shows robot id.
func (ins *Inspector) Select(id int) {
	ins.selected = id
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected robot ID.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

// Contains reports whether a screen point lies on the open panel, so the
// caller does not treat the click as a world pick.
func (ins *Inspector) Contains(mx, my float32, view View) bool {
	if !ins.hasSelected {
		return false
	}
	h := ins.panelHeight(view)
	return mx >= float32(ins.panelX) && mx <= float32(ins.panelX+PanelWidth) &&
		my >= float32(ins.panelY) && my <= float32(ins.panelY+h)
}

// HandleClick deselects when the close button is hit. It reports whether
// the click was consumed by the panel.
func (ins *Inspector) HandleClick(mx, my float32, view View) bool {
	if !ins.Contains(mx, my, view) {
		return false
	}
	closeX := float32(ins.panelX + PanelWidth - 25)
	closeY := float32(ins.panelY + 5)
	if mx >= closeX && mx <= closeX+20 && my >= closeY && my <= closeY+20 {
		ins.Deselect()
	}
	return true
}

// Draw renders the inspector panel if a robot is selected.
func (ins *Inspector) Draw(view View) {
	if !ins.hasSelected {
		return
	}

	panelHeight := ins.panelHeight(view)
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	// Header and close button
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("ROBOT %d", view.ID), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding

	for _, c := range view.Components {
		ins.drawSectionHeader(x, y, componentName(c))
		y += 20
		for _, f := range ExtractFields(c) {
			y += DrawField(x, y, f)
		}
		y += 4
	}

	ins.drawSectionHeader(x, y, "RULES")
	y += 20
	DrawRuleDiagram(x, y, ContentWidth, diagramHeight, ins.graph, view.Strengths, view.Outputs)
	y += diagramHeight

	for _, rs := range TopRules(view.Strengths, topRuleLines) {
		text := fmt.Sprintf("%.2f  #%d", rs.Strength, rs.Index)
		if rs.Index < len(ins.graph.Rules) {
			r := ins.graph.Rules[rs.Index]
			text = fmt.Sprintf("%.2f  #%d -> %s", rs.Strength, rs.Index, r.Label)
		}
		rl.DrawText(text, x, y, 12, ColorTextDim)
		y += 14
	}
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, ContentWidth+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight computes the dynamic panel height.
func (ins *Inspector) panelHeight(view View) int32 {
	height := int32(HeaderHeight + PanelPadding)
	for _, c := range view.Components {
		height += 20 + 4
		for _, f := range ExtractFields(c) {
			height += FieldHeight(f)
		}
	}
	height += 20 + diagramHeight
	height += 14 * int32(len(TopRules(view.Strengths, topRuleLines)))
	return height + PanelPadding
}

// componentName is the upper-cased type name of a component.
func componentName(c any) string {
	t := reflect.TypeOf(c)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return strings.ToUpper(t.Name())
}
