package sample

import (
	"math"
	"testing"

	"microplastics/internal/core"
	"microplastics/internal/morphology"
)

func particleWithArea(area float64) morphology.Particle {
	diameter := 2 * math.Sqrt(area/math.Pi)
	return morphology.Particle{
		AreaUM2:              area,
		EquivalentDiameterUM: diameter,
		AspectRatio:          1,
		Solidity:             1,
	}
}

func TestDescribeBasics(t *testing.T) {
	d := Describe([]float64{1, 2, 3, 4, 5})

	if d.Count != 5 {
		t.Errorf("Count = %d, want 5", d.Count)
	}
	if d.Mean != 3 {
		t.Errorf("Mean = %v, want 3", d.Mean)
	}
	if d.Median != 3 {
		t.Errorf("Median = %v, want 3", d.Median)
	}
	if math.Abs(d.StdDev-math.Sqrt(2.5)) > 1e-12 {
		t.Errorf("StdDev = %v, want %v", d.StdDev, math.Sqrt(2.5))
	}
	if d.Min != 1 || d.Max != 5 {
		t.Errorf("Min/Max = %v/%v, want 1/5", d.Min, d.Max)
	}
	if d.Q1 != 2 || d.Q3 != 4 {
		t.Errorf("quartiles = %v/%v, want 2/4", d.Q1, d.Q3)
	}
	if math.Abs(d.IQR-2) > 1e-12 {
		t.Errorf("IQR = %v, want 2", d.IQR)
	}
	if math.Abs(d.CV-d.StdDev/3) > 1e-12 {
		t.Errorf("CV = %v, want %v", d.CV, d.StdDev/3)
	}
}

func TestDescribeQuantileInterpolation(t *testing.T) {
	// Even-length data interpolates between order statistics at index
	// p*(n-1).
	d := Describe([]float64{1, 2, 3, 4})
	if d.Median != 2.5 {
		t.Errorf("Median = %v, want 2.5", d.Median)
	}
	if d.Q1 != 1.75 {
		t.Errorf("Q1 = %v, want 1.75", d.Q1)
	}
	if d.Q3 != 3.25 {
		t.Errorf("Q3 = %v, want 3.25", d.Q3)
	}

	// An odd-length sample's median is its middle element, independent
	// of spacing.
	d = Describe([]float64{1, 10, 1000})
	if d.Median != 10 {
		t.Errorf("Median = %v, want 10", d.Median)
	}
	if d.Q1 != 5.5 || d.Q3 != 505 {
		t.Errorf("quartiles = %v/%v, want 5.5/505", d.Q1, d.Q3)
	}
}

func TestDescribeEdgeCases(t *testing.T) {
	empty := Describe(nil)
	if empty.Count != 0 || !math.IsNaN(empty.Mean) || !math.IsNaN(empty.CV) {
		t.Errorf("empty Describe = %+v", empty)
	}

	single := Describe([]float64{7})
	if single.Count != 1 || single.Mean != 7 || single.StdDev != 0 {
		t.Errorf("single Describe = %+v", single)
	}

	// Zero mean leaves the coefficient of variation undefined.
	zeroMean := Describe([]float64{-1, 1})
	if !math.IsNaN(zeroMean.CV) {
		t.Errorf("CV = %v, want NaN for zero mean", zeroMean.CV)
	}
}

func TestAppendFreezeLifecycle(t *testing.T) {
	s := New("beach_01")
	if s.ID() != "beach_01" {
		t.Errorf("ID = %q", s.ID())
	}

	if err := s.Append(particleWithArea(100)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(particleWithArea(200)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if s.Frozen() {
		t.Error("sample frozen before Freeze")
	}

	s.Freeze()
	if !s.Frozen() {
		t.Error("sample not frozen after Freeze")
	}
	if err := s.Append(particleWithArea(300)); err == nil {
		t.Error("Append succeeded on frozen sample")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	// Freeze is idempotent.
	s.Freeze()
	if s.Len() != 2 {
		t.Errorf("Len after second Freeze = %d, want 2", s.Len())
	}
}

func TestStatisticsCached(t *testing.T) {
	s := New("s")
	for _, a := range []float64{10, 20, 30} {
		if err := s.Append(particleWithArea(a)); err != nil {
			t.Fatal(err)
		}
	}
	s.Freeze()

	first := s.Statistics()
	second := s.Statistics()
	if first != second {
		t.Error("Statistics recomputed on repeated access to a frozen sample")
	}
	if first.Count != 3 {
		t.Errorf("Count = %d, want 3", first.Count)
	}
	area := first.Metrics[core.MetricArea]
	if area.Mean != 20 {
		t.Errorf("area mean = %v, want 20", area.Mean)
	}
}

func TestValuesPreserveAppendOrder(t *testing.T) {
	s := New("s")
	want := []float64{5, 1, 9}
	for _, a := range want {
		if err := s.Append(particleWithArea(a)); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Values(core.MetricArea)
	if len(got) != len(want) {
		t.Fatalf("Values returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCategoryTallies(t *testing.T) {
	s := New("s")
	labels := []struct{ size, shape, class string }{
		{"small", "spherical", "sphere"},
		{"small", "fiber", "fiber"},
		{"medium", "spherical", "sphere"},
		{"small", "spherical", "sphere"},
	}
	for i, l := range labels {
		p := particleWithArea(float64(10 * (i + 1)))
		p.SizeCategory = l.size
		p.ShapeCategory = l.shape
		p.Class = l.class
		if err := s.Append(p); err != nil {
			t.Fatal(err)
		}
	}
	s.Freeze()

	st := s.Statistics()
	if got := st.SizeCategories["small"]; got.Count != 3 || got.Percent != 75 {
		t.Errorf("small = %+v, want {3 75}", got)
	}
	if got := st.SizeCategories["medium"]; got.Count != 1 || got.Percent != 25 {
		t.Errorf("medium = %+v, want {1 25}", got)
	}
	if got := st.ShapeCategories["fiber"]; got.Count != 1 {
		t.Errorf("fiber = %+v, want count 1", got)
	}
	if got := st.Classes["sphere"]; got.Count != 3 {
		t.Errorf("class sphere = %+v, want count 3", got)
	}
}

func TestConcentration(t *testing.T) {
	s := New("s")
	for _, a := range []float64{100, 300} {
		if err := s.Append(particleWithArea(a)); err != nil {
			t.Fatal(err)
		}
	}
	s.Freeze()

	c, err := s.Concentration(2, 1)
	if err != nil {
		t.Fatalf("Concentration: %v", err)
	}
	if c.ParticlesPerML != 1 {
		t.Errorf("ParticlesPerML = %v, want 1", c.ParticlesPerML)
	}
	if c.TotalAreaUM2PerML != 200 {
		t.Errorf("TotalAreaUM2PerML = %v, want 200", c.TotalAreaUM2PerML)
	}

	// A 5x dilution scales both figures.
	c, err = s.Concentration(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if c.ParticlesPerML != 5 || c.TotalAreaUM2PerML != 1000 {
		t.Errorf("diluted concentration = %+v", c)
	}

	if _, err := s.Concentration(0, 1); err == nil {
		t.Error("Concentration accepted zero volume")
	}
}
