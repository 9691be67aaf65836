// Package policy instantiates the obstacle-avoidance rule base on the fuzzy
// engine and turns its crisp outputs into wheel commands.
//
// Sonar indices follow the robot's ring from right to left: 0 is the
// rightmost sensor, 3 and 4 face forward and 7 is the leftmost. A reading of
// 0 means an obstacle at the sensor, 1 means nothing in range.
package policy

import (
	"errors"
	"strconv"

	"github.com/pthm-cable/avoid/fuzzy"
)

// Consequent variable names.
const (
	Velocidad  = "velocidad"
	AngularVel = "angularVel"
)

// Proximity labels shared by every sensor, nearest first.
const (
	MuyCerca = "muyCerca"
	Cerca    = "cerca"
	Medio    = "medio"
	Lejos    = "lejos"
)

// Linear speed labels.
const (
	Atras  = "atras"
	Stop   = "stop"
	Lento  = "lento"
	Rapido = "rapido"
)

// Turn labels. Negative turn rates steer right.
const (
	MuyDerecha      = "muyDerecha"
	DerechaLigero   = "derechaLigero"
	Derecha         = "derecha"
	Recto           = "recto"
	Izquierda       = "izquierda"
	IzquierdaLigero = "izquierdaLigero"
	MuyIzquierda    = "muyIzquierda"
)

// NumSensors is the number of sonar readings consumed by the rule base.
const NumSensors = 8

var (
	frontal   = [...]int{3, 4}
	rightSide = [...]int{0, 1, 2}
	leftSide  = [...]int{5, 6, 7}
)

// TurnLabels returns the angularVel labels ordered across its universe from
// the most negative to the most positive turn rate.
func TurnLabels() []string {
	return []string{MuyDerecha, DerechaLigero, Derecha, Recto, Izquierda, IzquierdaLigero, MuyIzquierda}
}

// SensorName is the antecedent name for sonar index i.
func SensorName(i int) string {
	return "sensor" + strconv.Itoa(i)
}

// Params tunes the numeric side of the rule base. The shapes and the rule
// table are fixed.
type Params struct {
	// Resolution is the sampling step for every universe.
	Resolution float64
	// VelocityMethod and TurnMethod defuzzify velocidad and angularVel.
	VelocityMethod fuzzy.Defuzzifier
	TurnMethod     fuzzy.Defuzzifier
}

// DefaultParams samples at 0.01, uses the centroid for velocidad and the
// mean of maximum for angularVel.
func DefaultParams() Params {
	return Params{
		Resolution:     0.01,
		VelocityMethod: fuzzy.Centroid,
		TurnMethod:     fuzzy.MeanOfMaximum,
	}
}

// Universes for the three kinds of variable.
func sensorUniverse(res float64) fuzzy.Universe {
	return fuzzy.Universe{Min: 0, Max: 1, Resolution: res}
}

func velocityUniverse(res float64) fuzzy.Universe {
	return fuzzy.Universe{Min: -0.5, Max: 1.5, Resolution: res}
}

func turnUniverse(res float64) fuzzy.Universe {
	return fuzzy.Universe{Min: -0.2, Max: 0.21, Resolution: res}
}

// Variables builds the eight sonar antecedents followed by velocidad and
// angularVel.
func Variables(p Params) ([]*fuzzy.Variable, error) {
	var errs []error
	add := func(v *fuzzy.Variable, label string, mf fuzzy.MembershipFunc) {
		if err := v.AddTerm(label, mf); err != nil {
			errs = append(errs, err)
		}
	}

	vars := make([]*fuzzy.Variable, 0, NumSensors+2)
	for i := 0; i < NumSensors; i++ {
		s := fuzzy.NewAntecedent(SensorName(i), sensorUniverse(p.Resolution))
		add(s, MuyCerca, fuzzy.Trapezoid{A: 0, B: 0, C: 0.2, D: 0.3})
		add(s, Cerca, fuzzy.Triangle{A: 0.2, B: 0.3, C: 0.5})
		add(s, Medio, fuzzy.Triangle{A: 0.3, B: 0.6, C: 0.9})
		add(s, Lejos, fuzzy.Trapezoid{A: 0.8, B: 0.9, C: 1, D: 1})
		vars = append(vars, s)
	}

	vel := fuzzy.NewConsequent(Velocidad, velocityUniverse(p.Resolution), p.VelocityMethod)
	add(vel, Atras, fuzzy.Triangle{A: -0.5, B: -0.01, C: 0})
	add(vel, Stop, fuzzy.Triangle{A: -0.01, B: 0, C: 0.01})
	add(vel, Lento, fuzzy.Triangle{A: 0.01, B: 0.3, C: 0.7})
	add(vel, Rapido, fuzzy.Trapezoid{A: 0.5, B: 1.1, C: 1.5, D: 1.5})
	vars = append(vars, vel)

	turn := fuzzy.NewConsequent(AngularVel, turnUniverse(p.Resolution), p.TurnMethod)
	if err := fuzzy.AutoPartitionVariable(turn, TurnLabels()...); err != nil {
		errs = append(errs, err)
	}
	vars = append(vars, turn)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vars, nil
}

// Rules returns the avoidance rule table: fourteen rules on the frontal pair
// and three per lateral sensor.
func Rules() []fuzzy.Rule {
	f0, f1 := SensorName(frontal[0]), SensorName(frontal[1])
	both := func(label string) fuzzy.Clause {
		return fuzzy.And(fuzzy.Is(f0, label), fuzzy.Is(f1, label))
	}
	speed := func(label string) fuzzy.Atom { return fuzzy.Is(Velocidad, label) }
	turn := func(label string) fuzzy.Atom { return fuzzy.Is(AngularVel, label) }

	rules := []fuzzy.Rule{
		// Clear ahead.
		fuzzy.NewRule(both(Lejos), turn(Recto)),
		fuzzy.NewRule(both(Lejos), speed(Rapido)),
		fuzzy.NewRule(fuzzy.Is(f0, Lejos), speed(Rapido)),
		fuzzy.NewRule(fuzzy.Is(f1, Lejos), speed(Rapido)),

		fuzzy.NewRule(both(Medio), turn(Recto)),
		fuzzy.NewRule(both(Medio), speed(Lento)),

		fuzzy.NewRule(both(Cerca), turn(Derecha)),
		fuzzy.NewRule(both(Cerca), speed(Stop)),
		fuzzy.NewRule(fuzzy.Is(f0, Cerca), speed(Atras)),
		fuzzy.NewRule(fuzzy.Is(f1, Cerca), speed(Stop)),

		fuzzy.NewRule(both(MuyCerca), turn(DerechaLigero)),
		fuzzy.NewRule(both(MuyCerca), speed(Atras)),
		fuzzy.NewRule(fuzzy.Is(f0, MuyCerca), speed(Atras)),
		fuzzy.NewRule(fuzzy.Is(f1, MuyCerca), speed(Atras)),
	}

	// Obstacles on the left push the turn right and vice versa.
	for _, i := range leftSide {
		s := SensorName(i)
		rules = append(rules,
			fuzzy.NewRule(fuzzy.Is(s, MuyCerca), turn(MuyDerecha)),
			fuzzy.NewRule(fuzzy.Is(s, Cerca), turn(DerechaLigero)),
			fuzzy.NewRule(fuzzy.Is(s, Lejos), turn(Izquierda)),
		)
	}
	for _, i := range rightSide {
		s := SensorName(i)
		rules = append(rules,
			fuzzy.NewRule(fuzzy.Is(s, MuyCerca), turn(MuyIzquierda)),
			fuzzy.NewRule(fuzzy.Is(s, Cerca), turn(IzquierdaLigero)),
			fuzzy.NewRule(fuzzy.Is(s, Lejos), turn(Derecha)),
		)
	}
	return rules
}

// Build constructs the immutable avoidance system.
func Build(p Params) (*fuzzy.System, error) {
	vars, err := Variables(p)
	if err != nil {
		return nil, err
	}
	return fuzzy.NewSystem(vars, Rules())
}
