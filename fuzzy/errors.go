package fuzzy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is wrapped by every error raised while building
	// variables, rules or systems.
	ErrInvalidConfig = errors.New("fuzzy: invalid configuration")

	// ErrNoRuleFired reports that an output's aggregate set is empty.
	ErrNoRuleFired = errors.New("fuzzy: no rule fired")

	// ErrMissingInput reports an antecedent without a bound crisp value.
	ErrMissingInput = errors.New("fuzzy: missing input")

	// ErrInputOutOfRange reports a crisp input outside its universe.
	ErrInputOutOfRange = errors.New("fuzzy: input out of range")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// NoRuleFiredError lists the consequents whose aggregate was uniformly zero.
// Defuzzification is undefined for them, so no value is reported.
type NoRuleFiredError struct {
	Variables []string
}

func (e *NoRuleFiredError) Error() string {
	return fmt.Sprintf("fuzzy: no rule fired for %s", strings.Join(e.Variables, ", "))
}

// Is makes errors.Is(err, ErrNoRuleFired) hold.
func (e *NoRuleFiredError) Is(target error) bool {
	return target == ErrNoRuleFired
}

// InputError reports a crisp input outside its variable's universe.
type InputError struct {
	Variable string
	Value    float64
	Universe Universe
}

func (e *InputError) Error() string {
	return fmt.Sprintf("fuzzy: input %s=%g outside [%g, %g]", e.Variable, e.Value, e.Universe.Min, e.Universe.Max)
}

// Is makes errors.Is(err, ErrInputOutOfRange) hold.
func (e *InputError) Is(target error) bool {
	return target == ErrInputOutOfRange
}

// MissingInputError reports an antecedent that is referenced by a rule but
// has no bound value.
type MissingInputError struct {
	Variable string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("fuzzy: no input bound for %s", e.Variable)
}

// Is makes errors.Is(err, ErrMissingInput) hold.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}
