package fuzzy

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Universe is the closed numeric domain of a variable together with the
// spacing used to sample it for aggregation and defuzzification.
type Universe struct {
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
	Resolution float64 `yaml:"resolution"`
}

// Validate checks that the universe is a non-empty finite interval with a
// positive resolution no wider than the interval.
func (u Universe) Validate() error {
	for _, v := range []float64{u.Min, u.Max, u.Resolution} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf("universe %v is not finite", u)
		}
	}
	if u.Max <= u.Min {
		return configErrorf("universe max %g must exceed min %g", u.Max, u.Min)
	}
	if u.Resolution <= 0 || u.Resolution > u.Max-u.Min {
		return configErrorf("universe resolution %g out of range for [%g, %g]", u.Resolution, u.Min, u.Max)
	}
	return nil
}

// Contains reports whether x lies in [Min, Max].
func (u Universe) Contains(x float64) bool {
	return x >= u.Min && x <= u.Max
}

// Samples returns evenly spaced points from Min to Max inclusive. The count
// is the number of whole resolution steps that fit, plus one; the last point
// is always exactly Max.
func (u Universe) Samples() []float64 {
	steps := int(math.Round((u.Max - u.Min) / u.Resolution))
	if steps < 1 {
		steps = 1
	}
	xs := floats.Span(make([]float64, steps+1), u.Min, u.Max)
	xs[steps] = u.Max
	return xs
}
