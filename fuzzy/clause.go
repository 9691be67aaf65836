package fuzzy

import (
	"math"
	"strings"
)

// Degrees holds the fuzzified value of every antecedent atom for one
// evaluation.
type Degrees map[Atom]float64

// Clause is a boolean expression over atoms. The concrete variants are Atom,
// AndClause, OrClause and NotClause.
type Clause interface {
	// Eval returns the truth degree of the clause given fuzzified atoms.
	Eval(d Degrees) float64
	// Atoms appends every atom referenced by the clause to dst.
	Atoms(dst []Atom) []Atom
	String() string
}

// Atom is the leaf "variable is label".
type Atom struct {
	Variable string
	Label    string
}

// Is builds an Atom.
func Is(variable, label string) Atom {
	return Atom{Variable: variable, Label: label}
}

// Eval implements Clause.
func (a Atom) Eval(d Degrees) float64 { return d[a] }

// Atoms implements Clause.
func (a Atom) Atoms(dst []Atom) []Atom { return append(dst, a) }

func (a Atom) String() string { return a.Variable + "[" + a.Label + "]" }

// AndClause is the Zadeh conjunction (minimum) of its terms.
type AndClause struct{ Terms []Clause }

// And builds an AndClause.
func And(terms ...Clause) AndClause { return AndClause{Terms: terms} }

// Eval implements Clause.
func (c AndClause) Eval(d Degrees) float64 {
	v := 1.0
	for _, t := range c.Terms {
		v = math.Min(v, t.Eval(d))
	}
	return v
}

// Atoms implements Clause.
func (c AndClause) Atoms(dst []Atom) []Atom {
	for _, t := range c.Terms {
		dst = t.Atoms(dst)
	}
	return dst
}

func (c AndClause) String() string { return join(c.Terms, " AND ") }

// OrClause is the Zadeh disjunction (maximum) of its terms.
type OrClause struct{ Terms []Clause }

// Or builds an OrClause.
func Or(terms ...Clause) OrClause { return OrClause{Terms: terms} }

// Eval implements Clause.
func (c OrClause) Eval(d Degrees) float64 {
	v := 0.0
	for _, t := range c.Terms {
		v = math.Max(v, t.Eval(d))
	}
	return v
}

// Atoms implements Clause.
func (c OrClause) Atoms(dst []Atom) []Atom {
	for _, t := range c.Terms {
		dst = t.Atoms(dst)
	}
	return dst
}

func (c OrClause) String() string { return join(c.Terms, " OR ") }

// NotClause is the standard complement 1 - x.
type NotClause struct{ Term Clause }

// Not builds a NotClause.
func Not(term Clause) NotClause { return NotClause{Term: term} }

// Eval implements Clause.
func (c NotClause) Eval(d Degrees) float64 { return 1 - c.Term.Eval(d) }

// Atoms implements Clause.
func (c NotClause) Atoms(dst []Atom) []Atom { return c.Term.Atoms(dst) }

func (c NotClause) String() string { return "NOT " + c.Term.String() }

func join(terms []Clause, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// validateClause rejects nil nodes and empty AND/OR lists.
func validateClause(c Clause) error {
	switch c := c.(type) {
	case nil:
		return configErrorf("nil clause")
	case Atom:
		return nil
	case AndClause:
		return validateTerms("AND", c.Terms)
	case OrClause:
		return validateTerms("OR", c.Terms)
	case NotClause:
		return validateClause(c.Term)
	default:
		return configErrorf("unsupported clause type %T", c)
	}
}

func validateTerms(op string, terms []Clause) error {
	if len(terms) == 0 {
		return configErrorf("empty %s clause", op)
	}
	for _, t := range terms {
		if err := validateClause(t); err != nil {
			return err
		}
	}
	return nil
}
