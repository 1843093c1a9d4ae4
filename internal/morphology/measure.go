package morphology

import (
	"math"
	"sync/atomic"

	"microplastics/internal/calibrate"
	"microplastics/internal/detect"
	"microplastics/pkg/geometry"
)

// Measurer converts raw regions into calibrated Particle records. It is
// safe for concurrent use; the rejection counter is atomic and the
// calibration converter is read-only.
type Measurer struct {
	conv     *calibrate.Converter
	rejected atomic.Int64
}

// NewMeasurer creates a Measurer with the given calibration.
func NewMeasurer(conv *calibrate.Converter) *Measurer {
	return &Measurer{conv: conv}
}

// Rejected returns how many regions were discarded as degenerate.
func (m *Measurer) Rejected() int {
	return int(m.rejected.Load())
}

// Measure computes the full particle record for a region. It returns
// ok=false for degenerate geometry: fewer than 3 distinct points, zero
// enclosed area, zero hull area, or a sliver whose minor axis resolves
// to 0. Rejections are counted, never fatal.
func (m *Measurer) Measure(region detect.RawRegion, sampleID string, index int) (Particle, bool) {
	region, ok := region.Normalize()
	if !ok {
		return m.reject()
	}
	points := region.Points

	areaPx := geometry.Area(points)
	perimeterPx := geometry.Perimeter(points)
	if areaPx <= 0 || perimeterPx <= 0 {
		return m.reject()
	}

	fit, ok := geometry.FitEllipse(points)
	if !ok {
		return m.reject()
	}
	major, minor := fit.Major, fit.Minor
	if minor > major {
		// The moment fit can report the axes inverted for near-circular
		// regions; ordering major >= minor is an invariant.
		major, minor = minor, major
	}
	if minor <= 0 {
		return m.reject()
	}

	hull := geometry.ConvexHull(points)
	hullAreaPx := geometry.Area(hull)
	if hullAreaPx <= 0 {
		return m.reject()
	}

	solidity := areaPx / hullAreaPx
	if solidity > 1 {
		solidity = 1
	}

	eqDiameterPx := 2 * math.Sqrt(areaPx/math.Pi)
	eccentricity := math.Sqrt(1 - (minor/major)*(minor/major))

	return Particle{
		SampleID: sampleID,
		Index:    index,

		AreaPx:      areaPx,
		PerimeterPx: perimeterPx,
		MajorAxisPx: major,
		MinorAxisPx: minor,
		HullAreaPx:  hullAreaPx,
		Centroid:    fit.Center,
		Bounds:      geometry.BoundingBox(points),
		Outline:     points,

		AreaUM2:              m.conv.SquareMicrometers(areaPx),
		PerimeterUM:          m.conv.Micrometers(perimeterPx),
		EquivalentDiameterUM: m.conv.Micrometers(eqDiameterPx),
		MajorAxisUM:          m.conv.Micrometers(major),
		MinorAxisUM:          m.conv.Micrometers(minor),

		AspectRatio:    major / minor,
		Eccentricity:   eccentricity,
		Solidity:       solidity,
		OrientationDeg: fit.OrientationDeg,

		Class:      region.Class,
		Confidence: region.Confidence,
	}, true
}

func (m *Measurer) reject() (Particle, bool) {
	m.rejected.Add(1)
	return Particle{}, false
}
