package inspector

import (
	"cmp"
	"fmt"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/avoid/fuzzy"
)

// Diagram colors.
var (
	ColorNodeInactive = rl.Color{R: 60, G: 60, B: 60, A: 255}
	ColorNodeActive   = rl.Color{R: 255, G: 180, B: 80, A: 255}
	ColorEdgeActive   = rl.Color{R: 255, G: 180, B: 80, A: 160}
	ColorEdgeIdle     = rl.Color{R: 90, G: 90, B: 110, A: 40}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// RuleNode is one rule in the diagram.
type RuleNode struct {
	Text   string
	Inputs []int // indices into RuleGraph.Inputs
	Output int   // index into RuleGraph.Outputs
	Label  string
}

// RuleGraph lays out a rule base as inputs, rules and outputs.
type RuleGraph struct {
	Inputs  []string
	Outputs []string
	Rules   []RuleNode
}

// NewRuleGraph extracts the wiring of sys in rule-table order.
func NewRuleGraph(sys *fuzzy.System) RuleGraph {
	g := RuleGraph{Inputs: sys.Inputs(), Outputs: sys.Outputs()}
	for _, r := range sys.Rules() {
		node := RuleNode{
			Text:   r.String(),
			Output: slices.Index(g.Outputs, r.Consequent.Variable),
			Label:  r.Consequent.Label,
		}
		for _, a := range r.Antecedent.Atoms(nil) {
			if i := slices.Index(g.Inputs, a.Variable); i >= 0 && !slices.Contains(node.Inputs, i) {
				node.Inputs = append(node.Inputs, i)
			}
		}
		g.Rules = append(g.Rules, node)
	}
	return g
}

// RuleStrength pairs a rule index with its firing strength.
type RuleStrength struct {
	Index    int
	Strength float64
}

// TopRules returns up to n fired rules, strongest first. Ties keep table
// order.
func TopRules(strengths []float64, n int) []RuleStrength {
	var out []RuleStrength
	for i, s := range strengths {
		if s > 0 {
			out = append(out, RuleStrength{Index: i, Strength: s})
		}
	}
	slices.SortStableFunc(out, func(a, b RuleStrength) int { return cmp.Compare(b.Strength, a.Strength) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// DrawRuleDiagram renders inputs on the left, one bar per rule in the
// middle and outputs on the right. Edges from fired rules are highlighted.
func DrawRuleDiagram(x, y, width, height int32, g RuleGraph, strengths []float64, outputs []float64) {
	if len(g.Rules) == 0 || len(strengths) != len(g.Rules) {
		rl.DrawText("No rule data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	inputX := float32(x) + 40
	ruleX := float32(x) + float32(width)/2
	outputX := float32(x + width - 50)
	span := float32(height - 10)

	nodeY := func(i, n int) float32 {
		return float32(y) + 5 + span*(float32(i)+0.5)/float32(n)
	}

	inputs := make([]rl.Vector2, len(g.Inputs))
	for i := range inputs {
		inputs[i] = rl.Vector2{X: inputX, Y: nodeY(i, len(inputs))}
	}
	outs := make([]rl.Vector2, len(g.Outputs))
	for i := range outs {
		outs[i] = rl.Vector2{X: outputX, Y: nodeY(i, len(outs))}
	}

	// Idle edges first so fired ones draw on top
	for pass := 0; pass < 2; pass++ {
		for i, r := range g.Rules {
			fired := strengths[i] > 0
			if fired != (pass == 1) {
				continue
			}
			color := ColorEdgeIdle
			if fired {
				color = ColorEdgeActive
				color.A = uint8(60 + 195*clamp01(strengths[i]))
			}
			p := rl.Vector2{X: ruleX, Y: nodeY(i, len(g.Rules))}
			for _, in := range r.Inputs {
				rl.DrawLineEx(inputs[in], p, 1, color)
			}
			if r.Output >= 0 {
				rl.DrawLineEx(p, outs[r.Output], 1, color)
			}
		}
	}

	rowH := max(2, int32(span/float32(len(g.Rules)))-1)
	for i := range g.Rules {
		p := nodeY(i, len(g.Rules))
		w := int32(30 * clamp01(strengths[i]))
		rl.DrawRectangle(int32(ruleX)-15, int32(p)-rowH/2, 30, rowH, ColorNodeInactive)
		rl.DrawRectangle(int32(ruleX)-15, int32(p)-rowH/2, w, rowH, ColorNodeActive)
	}

	for i, name := range g.Inputs {
		rl.DrawCircleV(inputs[i], 4, ColorNodeInactive)
		rl.DrawText(name, x, int32(inputs[i].Y)-4, 8, ColorLabelDim)
	}
	for i, name := range g.Outputs {
		rl.DrawCircleV(outs[i], 6, ColorNodeActive)
		text := name
		if i < len(outputs) {
			text = fmt.Sprintf("%s\n%+.3f", name, outputs[i])
		}
		rl.DrawText(text, int32(outs[i].X)+10, int32(outs[i].Y)-8, 10, ColorText)
	}
}
