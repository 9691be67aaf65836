package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// System is an immutable rule base together with its variable registry.
// It is built once and shared; every evaluation happens in a Session, so a
// System may be used from many goroutines at once.
type System struct {
	vars        map[string]*Variable
	inputs      []string // antecedent names, registration order
	outputs     []string // consequent names, registration order
	rules       []Rule
	atoms       []Atom           // antecedent atoms referenced by any rule
	byOutput    map[string][]int // rule indices per consequent variable
	samples     map[string][]float64
	sampledTerm map[Atom][]float64 // consequent label sampled over its universe
}

// NewSystem validates vars and rules and precomputes the sampled consequent
// terms. All configuration problems are reported together, each wrapping
// ErrInvalidConfig.
func NewSystem(vars []*Variable, rules []Rule) (*System, error) {
	s := &System{
		vars:        make(map[string]*Variable, len(vars)),
		byOutput:    make(map[string][]int),
		samples:     make(map[string][]float64),
		sampledTerm: make(map[Atom][]float64),
	}

	var errs []error
	for _, v := range vars {
		if v == nil {
			errs = append(errs, configErrorf("nil variable"))
			continue
		}
		if v.Name == "" {
			errs = append(errs, configErrorf("variable with empty name"))
			continue
		}
		if _, dup := s.vars[v.Name]; dup {
			errs = append(errs, configErrorf("duplicate variable %q", v.Name))
			continue
		}
		if err := v.Universe.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("variable %q: %w", v.Name, err))
			continue
		}
		if len(v.terms) == 0 {
			errs = append(errs, configErrorf("variable %q has no terms", v.Name))
			continue
		}
		c := v.clone()
		s.vars[v.Name] = c
		switch c.Role {
		case Antecedent:
			s.inputs = append(s.inputs, c.Name)
		case Consequent:
			if _, ok := defuzzNames[c.Method]; !ok {
				errs = append(errs, configErrorf("variable %q: unknown defuzzifier %d", c.Name, c.Method))
				continue
			}
			s.outputs = append(s.outputs, c.Name)
		default:
			errs = append(errs, configErrorf("variable %q: unknown role %d", c.Name, c.Role))
		}
	}
	if len(s.outputs) == 0 {
		errs = append(errs, configErrorf("no consequent variables"))
	}

	seen := make(map[Atom]bool)
	for i, r := range rules {
		if err := s.checkRule(r); err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%v): %w", i, safeRuleString(r), err))
			continue
		}
		for _, a := range r.Antecedent.Atoms(nil) {
			if !seen[a] {
				seen[a] = true
				s.atoms = append(s.atoms, a)
			}
		}
		s.byOutput[r.Consequent.Variable] = append(s.byOutput[r.Consequent.Variable], len(s.rules))
		s.rules = append(s.rules, r)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, name := range s.outputs {
		v := s.vars[name]
		xs := v.Universe.Samples()
		s.samples[name] = xs
		for _, t := range v.terms {
			mu := make([]float64, len(xs))
			for i, x := range xs {
				mu[i] = t.MF.Degree(x)
			}
			s.sampledTerm[Atom{Variable: name, Label: t.Label}] = mu
		}
	}
	return s, nil
}

func (s *System) checkRule(r Rule) error {
	if err := validateClause(r.Antecedent); err != nil {
		return err
	}
	if math.IsNaN(r.weight) || math.IsInf(r.weight, 0) || r.weight < 0 {
		return configErrorf("weight %g must be a finite value >= 0", r.weight)
	}
	for _, a := range r.Antecedent.Atoms(nil) {
		if err := s.checkAtom(a, Antecedent); err != nil {
			return err
		}
	}
	return s.checkAtom(r.Consequent, Consequent)
}

func (s *System) checkAtom(a Atom, role Role) error {
	v, ok := s.vars[a.Variable]
	if !ok {
		return configErrorf("unknown variable %q", a.Variable)
	}
	if v.Role != role {
		return configErrorf("variable %q is an %v, used as %v", a.Variable, v.Role, role)
	}
	if _, ok := v.Term(a.Label); !ok {
		return configErrorf("variable %q has no label %q", a.Variable, a.Label)
	}
	return nil
}

func safeRuleString(r Rule) string {
	if r.Antecedent == nil {
		return "THEN " + r.Consequent.String()
	}
	return r.String()
}

// Variable returns a copy of the registered variable called name.
func (s *System) Variable(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	if !ok {
		return nil, false
	}
	return v.clone(), true
}

// Inputs returns the antecedent names in registration order.
func (s *System) Inputs() []string { return append([]string(nil), s.inputs...) }

// Outputs returns the consequent names in registration order.
func (s *System) Outputs() []string { return append([]string(nil), s.outputs...) }

// Rules returns a copy of the rule base.
func (s *System) Rules() []Rule { return append([]Rule(nil), s.rules...) }

// Compute is a convenience wrapper that evaluates inputs in a fresh Session.
func (s *System) Compute(inputs map[string]float64) (Output, error) {
	sess := s.NewSession()
	for name, x := range inputs {
		if err := sess.Set(name, x); err != nil {
			return Output{}, err
		}
	}
	return sess.Compute()
}

func (v *Variable) clone() *Variable {
	c := *v
	c.terms = append([]Term(nil), v.terms...)
	c.index = make(map[string]int, len(v.index))
	for k, i := range v.index {
		c.index[k] = i
	}
	return &c
}
