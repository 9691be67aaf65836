package fuzzy

import "fmt"

// Role tags a variable as an input or an output of the rule base.
type Role uint8

const (
	Antecedent Role = iota
	Consequent
)

func (r Role) String() string {
	switch r {
	case Antecedent:
		return "antecedent"
	case Consequent:
		return "consequent"
	default:
		return "unknown"
	}
}

// Term is one labelled membership function of a variable.
type Term struct {
	Label string
	MF    MembershipFunc
}

// Variable is a named linguistic variable. Labels keep insertion order so
// that iteration and partitioning are deterministic.
type Variable struct {
	Name     string
	Universe Universe
	Role     Role
	// Method is the defuzzifier for consequents; ignored for antecedents.
	Method Defuzzifier

	terms []Term
	index map[string]int
}

// NewAntecedent creates an input variable with no terms.
func NewAntecedent(name string, u Universe) *Variable {
	return &Variable{Name: name, Universe: u, Role: Antecedent, index: map[string]int{}}
}

// NewConsequent creates an output variable defuzzified with method.
func NewConsequent(name string, u Universe, method Defuzzifier) *Variable {
	return &Variable{Name: name, Universe: u, Role: Consequent, Method: method, index: map[string]int{}}
}

// AddTerm registers label with membership function mf. It fails on an empty
// or duplicate label, malformed breakpoints, or breakpoints outside the
// universe.
func (v *Variable) AddTerm(label string, mf MembershipFunc) error {
	if label == "" {
		return configErrorf("variable %q: empty label", v.Name)
	}
	if _, dup := v.index[label]; dup {
		return configErrorf("variable %q: duplicate label %q", v.Name, label)
	}
	if mf == nil {
		return configErrorf("variable %q: label %q has no membership function", v.Name, label)
	}
	if err := mf.Validate(); err != nil {
		return fmt.Errorf("variable %q: label %q: %w", v.Name, label, err)
	}
	lo, hi := mf.Support()
	if !v.Universe.Contains(lo) || !v.Universe.Contains(hi) {
		return configErrorf("variable %q: label %q %v exceeds universe [%g, %g]",
			v.Name, label, mf, v.Universe.Min, v.Universe.Max)
	}
	if v.index == nil {
		v.index = map[string]int{}
	}
	v.index[label] = len(v.terms)
	v.terms = append(v.terms, Term{Label: label, MF: mf})
	return nil
}

// MustAddTerm is like AddTerm but panics on error.
func (v *Variable) MustAddTerm(label string, mf MembershipFunc) *Variable {
	if err := v.AddTerm(label, mf); err != nil {
		panic(err)
	}
	return v
}

// Term returns the membership function for label.
func (v *Variable) Term(label string) (MembershipFunc, bool) {
	i, ok := v.index[label]
	if !ok {
		return nil, false
	}
	return v.terms[i].MF, true
}

// Terms returns the variable's terms in insertion order.
func (v *Variable) Terms() []Term {
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Labels returns the term labels in insertion order.
func (v *Variable) Labels() []string {
	out := make([]string, len(v.terms))
	for i, t := range v.terms {
		out[i] = t.Label
	}
	return out
}

// Classify returns the label with the highest degree at x. Ties go to the
// earlier label. ok is false when every degree is zero.
func (v *Variable) Classify(x float64) (label string, degree float64, ok bool) {
	for _, t := range v.terms {
		if d := t.MF.Degree(x); d > degree {
			label, degree = t.Label, d
		}
	}
	return label, degree, degree > 0
}
