package fuzzy

import (
	"math"
	"testing"
)

var turnLabels = []string{
	"muyDerecha", "derechaLigero", "derecha", "recto",
	"izquierda", "izquierdaLigero", "muyIzquierda",
}

func TestAutoPartitionBreakpoints(t *testing.T) {
	u := Universe{Min: -0.2, Max: 0.21, Resolution: 0.01}
	terms, err := AutoPartition(u, turnLabels)
	if err != nil {
		t.Fatalf("AutoPartition: %v", err)
	}
	if len(terms) != len(turnLabels) {
		t.Fatalf("expected %d terms, got %d", len(turnLabels), len(terms))
	}

	step := 0.41 / 6
	c := func(i int) float64 { return -0.2 + float64(i)*step }

	first, ok := terms[0].MF.(Trapezoid)
	if !ok {
		t.Fatalf("first term should be a trapezoid, got %T", terms[0].MF)
	}
	if first.A != -0.2 || first.B != -0.2 || first.C != -0.2 || math.Abs(first.D-c(1)) > 1e-12 {
		t.Errorf("first term = %v", first)
	}

	last, ok := terms[6].MF.(Trapezoid)
	if !ok {
		t.Fatalf("last term should be a trapezoid, got %T", terms[6].MF)
	}
	if math.Abs(last.A-c(5)) > 1e-12 || last.B != 0.21 || last.C != 0.21 || last.D != 0.21 {
		t.Errorf("last term = %v", last)
	}

	for i := 1; i < 6; i++ {
		tri, ok := terms[i].MF.(Triangle)
		if !ok {
			t.Fatalf("term %d should be a triangle, got %T", i, terms[i].MF)
		}
		if math.Abs(tri.A-c(i-1)) > 1e-12 || math.Abs(tri.B-c(i)) > 1e-12 || math.Abs(tri.C-c(i+1)) > 1e-12 {
			t.Errorf("term %d (%s) = %v, want centers %v %v %v", i, terms[i].Label, tri, c(i-1), c(i), c(i+1))
		}
	}

	// recto is centered at 0.005 for this universe.
	if recto := terms[3].MF.(Triangle); math.Abs(recto.B-0.005) > 1e-12 {
		t.Errorf("recto peak = %v, want 0.005", recto.B)
	}
}

func TestAutoPartitionSumsToOne(t *testing.T) {
	u := Universe{Min: -0.2, Max: 0.21, Resolution: 0.01}
	terms, err := AutoPartition(u, turnLabels)
	if err != nil {
		t.Fatalf("AutoPartition: %v", err)
	}

	for _, x := range u.Samples() {
		var sum float64
		nonzero := 0
		for _, term := range terms {
			d := term.MF.Degree(x)
			sum += d
			if d > 0 {
				nonzero++
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("degrees at %v sum to %v, want 1", x, sum)
		}
		if nonzero > 2 {
			t.Errorf("%d labels overlap at %v, want at most 2", nonzero, x)
		}
	}
}

func TestAutoPartitionCrossover(t *testing.T) {
	u := Universe{Min: 0, Max: 6, Resolution: 0.5}
	terms, err := AutoPartition(u, turnLabels)
	if err != nil {
		t.Fatalf("AutoPartition: %v", err)
	}
	// Centers at 0..6; neighbours cross at 0.5 halfway between them.
	for i := 0; i < len(terms)-1; i++ {
		x := float64(i) + 0.5
		l, r := terms[i].MF.Degree(x), terms[i+1].MF.Degree(x)
		if math.Abs(l-0.5) > 1e-12 || math.Abs(r-0.5) > 1e-12 {
			t.Errorf("crossover %s/%s at %v: %v, %v", terms[i].Label, terms[i+1].Label, x, l, r)
		}
	}
}

func TestAutoPartitionErrors(t *testing.T) {
	u := Universe{Min: 0, Max: 1, Resolution: 0.1}
	if _, err := AutoPartition(u, []string{"only"}); err == nil {
		t.Error("expected error for a single label")
	}
	if _, err := AutoPartition(Universe{Min: 1, Max: 0, Resolution: 0.1}, turnLabels); err == nil {
		t.Error("expected error for an inverted universe")
	}

	v := NewConsequent("turn", u, MeanOfMaximum)
	if err := AutoPartitionVariable(v, "a", "b", "a"); err == nil {
		t.Error("expected duplicate label error")
	}
}
