package fuzzy

import (
	"math"
	"sort"
)

// Output holds the crisp result of one evaluation.
type Output struct {
	// Values maps each consequent that fired to its defuzzified value.
	Values map[string]float64
	// Strengths is the firing strength of every rule, in rule-base order.
	Strengths []float64
}

// Session binds crisp inputs for one evaluation of a System. It owns no
// shared state; reuse it across ticks with fresh bindings or discard it.
// A Session must not be used from several goroutines at once.
type Session struct {
	sys      *System
	inputs   map[string]float64
	degrees  Degrees
	agg      map[string][]float64
	strength []float64
}

// NewSession creates an empty session over s.
func (s *System) NewSession() *Session {
	agg := make(map[string][]float64, len(s.outputs))
	for _, name := range s.outputs {
		agg[name] = make([]float64, len(s.samples[name]))
	}
	return &Session{
		sys:      s,
		inputs:   make(map[string]float64, len(s.inputs)),
		degrees:  make(Degrees, len(s.atoms)),
		agg:      agg,
		strength: make([]float64, len(s.rules)),
	}
}

// Set binds the crisp value x to the antecedent called name. Values outside
// the variable's universe, or NaN, are rejected.
func (ss *Session) Set(name string, x float64) error {
	v, ok := ss.sys.vars[name]
	if !ok || v.Role != Antecedent {
		return configErrorf("unknown antecedent %q", name)
	}
	if math.IsNaN(x) || !v.Universe.Contains(x) {
		return &InputError{Variable: name, Value: x, Universe: v.Universe}
	}
	ss.inputs[name] = x
	return nil
}

// Reset clears all bindings.
func (ss *Session) Reset() {
	for k := range ss.inputs {
		delete(ss.inputs, k)
	}
}

// Compute runs the inference pipeline on the current bindings.
//
// Every consequent whose aggregate is uniformly zero is left out of
// Output.Values and named in a *NoRuleFiredError; the other consequents are
// still returned.
func (ss *Session) Compute() (Output, error) {
	sys := ss.sys

	// Fuzzification.
	for _, a := range sys.atoms {
		x, ok := ss.inputs[a.Variable]
		if !ok {
			return Output{}, &MissingInputError{Variable: a.Variable}
		}
		mf, _ := sys.vars[a.Variable].Term(a.Label)
		ss.degrees[a] = mf.Degree(x)
	}

	// Rule evaluation, independent per rule.
	for i, r := range sys.rules {
		ss.strength[i] = r.Strength(ss.degrees)
	}

	// Implication and aggregation, one pass per consequent.
	out := Output{
		Values:    make(map[string]float64, len(sys.outputs)),
		Strengths: append([]float64(nil), ss.strength...),
	}
	var unfired []string
	for _, name := range sys.outputs {
		agg := ss.agg[name]
		for i := range agg {
			agg[i] = 0
		}
		for _, ri := range sys.byOutput[name] {
			w := ss.strength[ri]
			if w <= 0 {
				continue
			}
			term := sys.sampledTerm[sys.rules[ri].Consequent]
			for i, mu := range term {
				if clipped := math.Min(mu, w); clipped > agg[i] {
					agg[i] = clipped
				}
			}
		}

		method := sys.vars[name].Method
		value, ok := method.Defuzzify(sys.samples[name], agg)
		if !ok {
			unfired = append(unfired, name)
			continue
		}
		out.Values[name] = value
	}

	if len(unfired) > 0 {
		sort.Strings(unfired)
		return out, &NoRuleFiredError{Variables: unfired}
	}
	return out, nil
}

// Aggregate returns a copy of the aggregate set of the named consequent from
// the last Compute, sampled over its universe.
func (ss *Session) Aggregate(name string) (xs, mu []float64, ok bool) {
	agg, ok := ss.agg[name]
	if !ok {
		return nil, nil, false
	}
	return append([]float64(nil), ss.sys.samples[name]...), append([]float64(nil), agg...), true
}
