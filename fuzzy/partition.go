package fuzzy

// AutoPartition generates one membership function per label, spanning the
// universe left to right.
//
// With N labels the centers are c_i = Min + i*(Max-Min)/(N-1):
//
//	label 0:     Trapezoid{Min, Min, c_0, c_1}       (c_0 == Min)
//	label i:     Triangle{c_(i-1), c_i, c_(i+1)}
//	label N-1:   Trapezoid{c_(N-2), c_(N-1), Max, Max} (c_(N-1) == Max)
//
// Neighbours cross at 0.5 halfway between centers, only immediate
// neighbours overlap, and the degrees sum to 1 everywhere in the universe.
func AutoPartition(u Universe, labels []string) ([]Term, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	n := len(labels)
	if n < 2 {
		return nil, configErrorf("auto partition needs at least 2 labels, got %d", n)
	}

	step := (u.Max - u.Min) / float64(n-1)
	center := func(i int) float64 {
		if i == n-1 {
			return u.Max
		}
		return u.Min + float64(i)*step
	}

	terms := make([]Term, n)
	for i, label := range labels {
		var mf MembershipFunc
		switch i {
		case 0:
			mf = Trapezoid{A: u.Min, B: u.Min, C: u.Min, D: center(1)}
		case n - 1:
			mf = Trapezoid{A: center(n - 2), B: u.Max, C: u.Max, D: u.Max}
		default:
			mf = Triangle{A: center(i - 1), B: center(i), C: center(i + 1)}
		}
		terms[i] = Term{Label: label, MF: mf}
	}
	return terms, nil
}

// AutoPartitionVariable partitions v's universe and adds the resulting terms.
func AutoPartitionVariable(v *Variable, labels ...string) error {
	terms, err := AutoPartition(v.Universe, labels)
	if err != nil {
		return err
	}
	for _, t := range terms {
		if err := v.AddTerm(t.Label, t.MF); err != nil {
			return err
		}
	}
	return nil
}
