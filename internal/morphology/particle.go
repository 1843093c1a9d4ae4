// Package morphology measures detected regions into calibrated particle
// records.
package morphology

import "microplastics/pkg/geometry"

// Particle is one fully measured detection. Apart from the two category
// fields, which the classifier assigns exactly once, a Particle is
// immutable after measurement.
type Particle struct {
	// Identity
	SampleID string `json:"sample_id"`
	Index    int    `json:"index"`

	// Raw geometry in pixels
	AreaPx      float64            `json:"area_px"`
	PerimeterPx float64            `json:"perimeter_px"`
	MajorAxisPx float64            `json:"major_axis_px"`
	MinorAxisPx float64            `json:"minor_axis_px"`
	HullAreaPx  float64            `json:"hull_area_px"`
	Centroid    geometry.Point2D   `json:"centroid"`
	Bounds      geometry.Rect      `json:"bounds"`
	Outline     []geometry.Point2D `json:"-"`

	// Calibrated geometry
	AreaUM2              float64 `json:"area_um2"`
	PerimeterUM          float64 `json:"perimeter_um"`
	EquivalentDiameterUM float64 `json:"equivalent_diameter_um"`
	MajorAxisUM          float64 `json:"major_axis_um"`
	MinorAxisUM          float64 `json:"minor_axis_um"`

	// Shape descriptors
	AspectRatio    float64 `json:"aspect_ratio"`
	Eccentricity   float64 `json:"eccentricity"`
	Solidity       float64 `json:"solidity"`
	OrientationDeg float64 `json:"orientation_deg"`

	// Neural-path class annotation; empty for the classical path.
	Class      string  `json:"class,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`

	// Write-once categorical annex assigned by the classifier.
	SizeCategory  string `json:"size_category,omitempty"`
	ShapeCategory string `json:"shape_category,omitempty"`
}

// Classified reports whether the categorical annex has been assigned.
func (p *Particle) Classified() bool {
	return p.SizeCategory != "" || p.ShapeCategory != ""
}
