// Package detect provides particle region detection for microscope images.
// Two backends produce the same RawRegion representation: a classical
// threshold/contour segmenter and a neural object detector. Downstream
// consumers depend only on the Detector interface, never on which backend
// produced a region.
package detect

import (
	"context"
	"image"

	"microplastics/pkg/geometry"
)

// RawRegion is one detected region, normalized to a closed polygon. Class
// and Confidence are populated only by the neural backend; the classical
// backend leaves them empty.
type RawRegion struct {
	Points     []geometry.Point2D `json:"points"`
	Class      string             `json:"class,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
}

// Normalize dedupes the polygon ring and reports whether the region is
// usable. Regions with fewer than 3 distinct points are degenerate and
// must be discarded by the caller.
func (r RawRegion) Normalize() (RawRegion, bool) {
	r.Points = geometry.Dedupe(r.Points)
	return r, len(r.Points) >= 3
}

// RegionFromBox converts an axis-aligned bounding box into a rectangular
// polygon region tagged with its class label and confidence.
func RegionFromBox(box geometry.Rect, class string, confidence float64) RawRegion {
	return RawRegion{
		Points:     box.Corners(),
		Class:      class,
		Confidence: confidence,
	}
}

// Detector is the shared capability of both detection backends.
type Detector interface {
	// Detect extracts candidate particle regions from a decoded raster.
	// An image with no detectable particles yields an empty slice, not an
	// error. The context cancels long-running inference.
	Detect(ctx context.Context, img image.Image) ([]RawRegion, error)

	// Name identifies the backend in logs and reports.
	Name() string
}

// Detection is one raw neural prediction before suppression.
type Detection struct {
	Box        geometry.Rect
	ClassID    int
	Confidence float64
}
