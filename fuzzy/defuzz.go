package fuzzy

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Defuzzifier selects how an aggregate fuzzy set becomes a crisp value.
type Defuzzifier uint8

const (
	// Centroid is the center of area: ∫x·μ(x)dx / ∫μ(x)dx.
	Centroid Defuzzifier = iota
	// Bisector splits the area under μ into two equal halves.
	Bisector
	// MeanOfMaximum averages every sample reaching the maximum degree.
	MeanOfMaximum
	// SmallestOfMaximum is the leftmost sample reaching the maximum.
	SmallestOfMaximum
	// LargestOfMaximum is the rightmost sample reaching the maximum.
	LargestOfMaximum
)

// maxTolerance is how close a sample must be to the peak to count as a
// maximum. Peaks of adjacent labels that are equal analytically can differ
// in the last bits once sampled.
const maxTolerance = 1e-9

var defuzzNames = map[Defuzzifier]string{
	Centroid:          "centroid",
	Bisector:          "bisector",
	MeanOfMaximum:     "mom",
	SmallestOfMaximum: "som",
	LargestOfMaximum:  "lom",
}

func (m Defuzzifier) String() string {
	if s, ok := defuzzNames[m]; ok {
		return s
	}
	return fmt.Sprintf("defuzzifier(%d)", m)
}

// ParseDefuzzifier maps a method name ("centroid", "bisector", "mom", "som",
// "lom") to a Defuzzifier.
func ParseDefuzzifier(s string) (Defuzzifier, error) {
	for m, name := range defuzzNames {
		if name == s {
			return m, nil
		}
	}
	return 0, configErrorf("unknown defuzzification method %q", s)
}

// Defuzzify reduces the sampled set (xs, mu) to a crisp value. ok is false
// when the set is uniformly zero, in which case the result is undefined.
func (m Defuzzifier) Defuzzify(xs, mu []float64) (value float64, ok bool) {
	if len(xs) == 0 || len(xs) != len(mu) {
		return 0, false
	}
	peak := floats.Max(mu)
	if peak <= 0 {
		return 0, false
	}

	switch m {
	case Centroid:
		area := integrate.Trapezoidal(xs, mu)
		if area <= 0 {
			// A single nonzero sample has no area; fall back to its position.
			return MeanOfMaximum.Defuzzify(xs, mu)
		}
		moment := make([]float64, len(xs))
		floats.MulTo(moment, xs, mu)
		return integrate.Trapezoidal(xs, moment) / area, true

	case Bisector:
		return bisector(xs, mu)

	case MeanOfMaximum, SmallestOfMaximum, LargestOfMaximum:
		var sum float64
		var n int
		first, last := -1, -1
		for i, v := range mu {
			if v >= peak-maxTolerance {
				if first < 0 {
					first = i
				}
				last = i
				sum += xs[i]
				n++
			}
		}
		switch m {
		case SmallestOfMaximum:
			return xs[first], true
		case LargestOfMaximum:
			return xs[last], true
		default:
			return sum / float64(n), true
		}
	}
	return 0, false
}

// bisector finds the abscissa where the cumulative trapezoidal area reaches
// half the total, interpolating linearly inside the crossing segment.
func bisector(xs, mu []float64) (float64, bool) {
	total := integrate.Trapezoidal(xs, mu)
	if total <= 0 {
		return MeanOfMaximum.Defuzzify(xs, mu)
	}
	half := total / 2
	var acc float64
	for i := 1; i < len(xs); i++ {
		seg := (xs[i] - xs[i-1]) * (mu[i] + mu[i-1]) / 2
		if acc+seg >= half {
			if seg == 0 {
				return xs[i-1], true
			}
			frac := (half - acc) / seg
			return xs[i-1] + frac*(xs[i]-xs[i-1]), true
		}
		acc += seg
	}
	return xs[len(xs)-1], true
}
