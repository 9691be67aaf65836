package fuzzy

import (
	"fmt"
	"math"
)

// Rule states "IF Antecedent THEN Consequent". Build rules with NewRule so
// the weight defaults to 1.
type Rule struct {
	Antecedent Clause
	Consequent Atom
	weight     float64
}

// NewRule builds a rule with weight 1.
func NewRule(antecedent Clause, consequent Atom) Rule {
	return Rule{Antecedent: antecedent, Consequent: consequent, weight: 1}
}

// WithWeight returns a copy of r scaled by w. The firing strength is
// multiplied by w and clipped to [0,1].
func (r Rule) WithWeight(w float64) Rule {
	r.weight = w
	return r
}

// Weight returns the rule weight.
func (r Rule) Weight() float64 { return r.weight }

// Strength evaluates the rule's firing strength for fuzzified atoms.
func (r Rule) Strength(d Degrees) float64 {
	s := r.Antecedent.Eval(d) * r.weight
	return math.Max(0, math.Min(1, s))
}

func (r Rule) String() string {
	s := fmt.Sprintf("IF %s THEN %s", r.Antecedent, r.Consequent)
	if r.weight != 1 {
		s += fmt.Sprintf(" WITH %g", r.weight)
	}
	return s
}
