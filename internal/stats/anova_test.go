package stats

import (
	"math"
	"testing"
)

func TestOneWayANOVAKnownValue(t *testing.T) {
	// Hand-computed: ssBetween = 6, ssWithin = 6, F = (6/2)/(6/6) = 3.
	groups := [][]float64{
		{1, 2, 3},
		{2, 3, 4},
		{3, 4, 5},
	}

	f, p := OneWayANOVA(groups)
	if math.Abs(f-3) > 1e-9 {
		t.Errorf("F = %v, want 3", f)
	}
	// F(2,6) survival at 3 lies between 0.1 and 0.15.
	if p < 0.1 || p > 0.15 {
		t.Errorf("p = %v, want in (0.1, 0.15)", p)
	}
}

func TestOneWayANOVAIdenticalGroups(t *testing.T) {
	g := []float64{5, 6, 7}
	f, p := OneWayANOVA([][]float64{g, g, g})
	if math.Abs(f) > 1e-9 {
		t.Errorf("F = %v, want 0", f)
	}
	if p < 0.99 {
		t.Errorf("p = %v, want ≈ 1", p)
	}
}

func TestOneWayANOVASeparatedGroups(t *testing.T) {
	groups := [][]float64{
		normalSample(10, 5, 1),
		normalSample(10, 10, 1),
		normalSample(10, 15, 1),
	}
	f, p := OneWayANOVA(groups)
	if f < 100 {
		t.Errorf("F = %v, want large for separated groups", f)
	}
	if p > 1e-6 {
		t.Errorf("p = %v, want tiny", p)
	}
}

func TestOneWayANOVAZeroWithinVariance(t *testing.T) {
	// Constant groups with different means leave nothing in the error
	// term; the degenerate ratio is reported as no evidence rather than
	// infinity.
	groups := [][]float64{
		{1, 1, 1},
		{2, 2, 2},
	}
	f, p := OneWayANOVA(groups)
	if f != 0 || p != 1 {
		t.Errorf("degenerate ANOVA = (%v, %v), want (0, 1)", f, p)
	}
}
