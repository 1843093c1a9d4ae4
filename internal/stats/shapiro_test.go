package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// normalSample returns n deterministic values following a normal
// distribution exactly, via the Blom plotting positions.
func normalSample(n int, mean, sd float64) []float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		z := norm.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		out[i] = mean + sd*z
	}
	return out
}

func skewedSample(n int) []float64 {
	base := normalSample(n, 0, 2)
	out := make([]float64, n)
	for i, z := range base {
		out[i] = math.Exp(z)
	}
	return out
}

func TestShapiroWilkNormalData(t *testing.T) {
	for _, n := range []int{3, 5, 11, 20, 50} {
		w, p, err := ShapiroWilk(normalSample(n, 10, 2))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if w < 0.9 || w > 1 {
			t.Errorf("n=%d: W = %v, want close to 1", n, w)
		}
		if p <= 0.05 {
			t.Errorf("n=%d: p = %v, want > 0.05 for exactly normal scores", n, p)
		}
	}
}

func TestShapiroWilkSkewedData(t *testing.T) {
	w, p, err := ShapiroWilk(skewedSample(30))
	if err != nil {
		t.Fatal(err)
	}
	if w > 0.85 {
		t.Errorf("W = %v, want < 0.85 for heavily skewed data", w)
	}
	if p >= 0.05 {
		t.Errorf("p = %v, want < 0.05 for heavily skewed data", p)
	}
}

func TestShapiroWilkRejectsBadInput(t *testing.T) {
	if _, _, err := ShapiroWilk([]float64{1, 2}); err == nil {
		t.Error("accepted n < 3")
	}
	if _, _, err := ShapiroWilk([]float64{4, 4, 4, 4, 4}); err == nil {
		t.Error("accepted constant data")
	}
}

func TestShapiroWilkDeterministic(t *testing.T) {
	values := skewedSample(25)
	w1, p1, err := ShapiroWilk(values)
	if err != nil {
		t.Fatal(err)
	}
	w2, p2, err := ShapiroWilk(values)
	if err != nil {
		t.Fatal(err)
	}
	if w1 != w2 || p1 != p2 {
		t.Errorf("repeat runs differ: (%v,%v) vs (%v,%v)", w1, p1, w2, p2)
	}
}
