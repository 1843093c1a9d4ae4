package morphology

import (
	"math"
	"testing"

	"microplastics/internal/calibrate"
	"microplastics/internal/detect"
	"microplastics/pkg/geometry"
)

func newMeasurer(t *testing.T, factor float64) *Measurer {
	t.Helper()
	conv, err := calibrate.New(factor)
	if err != nil {
		t.Fatalf("calibrate.New(%v): %v", factor, err)
	}
	return NewMeasurer(conv)
}

func circleRegion(cx, cy, r float64) detect.RawRegion {
	return detect.RawRegion{Points: geometry.GenerateCirclePoints(cx, cy, r, 128)}
}

func TestMeasureCircle(t *testing.T) {
	m := newMeasurer(t, 0.2)

	// Radius 25 px gives ≈ 1963 px², which at 0.2 µm/px is ≈ 78.5 µm²
	// and an equivalent diameter of ≈ 10 µm.
	p, ok := m.Measure(circleRegion(100, 100, 25), "sampleA", 1)
	if !ok {
		t.Fatal("Measure rejected a valid circle")
	}

	if p.SampleID != "sampleA" || p.Index != 1 {
		t.Errorf("identity = (%q, %d), want (sampleA, 1)", p.SampleID, p.Index)
	}
	if math.Abs(p.AreaUM2-78.5)/78.5 > 0.01 {
		t.Errorf("AreaUM2 = %v, want ≈ 78.5", p.AreaUM2)
	}
	if math.Abs(p.EquivalentDiameterUM-10)/10 > 0.01 {
		t.Errorf("EquivalentDiameterUM = %v, want ≈ 10", p.EquivalentDiameterUM)
	}
	if p.AspectRatio < 1 || p.AspectRatio > 1.01 {
		t.Errorf("AspectRatio = %v, want ≈ 1", p.AspectRatio)
	}
	if p.Solidity < 0.98 || p.Solidity > 1 {
		t.Errorf("Solidity = %v, want ≈ 1", p.Solidity)
	}
	if p.Eccentricity < 0 || p.Eccentricity > 0.2 {
		t.Errorf("Eccentricity = %v, want ≈ 0", p.Eccentricity)
	}
	if m.Rejected() != 0 {
		t.Errorf("Rejected = %d, want 0", m.Rejected())
	}
}

func TestMeasureAreaDiameterIdentity(t *testing.T) {
	m := newMeasurer(t, 0.37)

	p, ok := m.Measure(circleRegion(40, 60, 17), "s", 1)
	if !ok {
		t.Fatal("Measure rejected a valid circle")
	}

	// The equivalent diameter is defined from the area, so the identity
	// π (d/2)² == area holds for any region.
	back := math.Pi * (p.EquivalentDiameterUM / 2) * (p.EquivalentDiameterUM / 2)
	if math.Abs(back-p.AreaUM2)/p.AreaUM2 > 1e-9 {
		t.Errorf("π(d/2)² = %v, area = %v", back, p.AreaUM2)
	}
}

func TestMeasureElongatedBox(t *testing.T) {
	m := newMeasurer(t, 1)

	region := detect.RawRegion{Points: []geometry.Point2D{
		{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 10}, {X: 0, Y: 10},
	}}
	p, ok := m.Measure(region, "s", 1)
	if !ok {
		t.Fatal("Measure rejected a rectangle")
	}

	if p.MajorAxisPx < p.MinorAxisPx {
		t.Errorf("axis order violated: major %v < minor %v", p.MajorAxisPx, p.MinorAxisPx)
	}
	if math.Abs(p.AspectRatio-4) > 1e-9 {
		t.Errorf("AspectRatio = %v, want 4", p.AspectRatio)
	}
	wantEcc := math.Sqrt(1 - 1.0/16)
	if math.Abs(p.Eccentricity-wantEcc) > 1e-9 {
		t.Errorf("Eccentricity = %v, want %v", p.Eccentricity, wantEcc)
	}
	if p.AreaPx != 400 {
		t.Errorf("AreaPx = %v, want 400", p.AreaPx)
	}
	// A convex region has solidity 1.
	if math.Abs(p.Solidity-1) > 1e-9 {
		t.Errorf("Solidity = %v, want 1", p.Solidity)
	}
}

func TestMeasureConcaveSolidity(t *testing.T) {
	m := newMeasurer(t, 1)

	// An L shape of area 75. Its convex hull is the pentagon
	// (0,0),(10,0),(10,5),(5,10),(0,10) with area 87.5, so solidity is
	// 75/87.5 = 6/7.
	region := detect.RawRegion{Points: []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5},
		{X: 5, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 10},
	}}
	p, ok := m.Measure(region, "s", 1)
	if !ok {
		t.Fatal("Measure rejected an L shape")
	}
	if math.Abs(p.Solidity-6.0/7) > 1e-9 {
		t.Errorf("Solidity = %v, want %v", p.Solidity, 6.0/7)
	}
	if p.AreaPx != 75 || p.HullAreaPx != 87.5 {
		t.Errorf("areas = %v/%v, want 75/87.5", p.AreaPx, p.HullAreaPx)
	}
}

func TestMeasureRejectsDegenerateRegions(t *testing.T) {
	m := newMeasurer(t, 1)

	degenerate := []detect.RawRegion{
		{Points: nil},
		{Points: []geometry.Point2D{{X: 1, Y: 1}}},
		{Points: []geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}}},
		// Collinear points enclose no area.
		{Points: []geometry.Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}},
		// Repeated vertices collapse below 3 distinct points.
		{Points: []geometry.Point2D{{X: 3, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 3}}},
	}

	for i, region := range degenerate {
		if _, ok := m.Measure(region, "s", i); ok {
			t.Errorf("region %d accepted, want rejection", i)
		}
	}
	if m.Rejected() != len(degenerate) {
		t.Errorf("Rejected = %d, want %d", m.Rejected(), len(degenerate))
	}
}
