package detect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"microplastics/internal/imgio"
	"microplastics/pkg/geometry"
)

// ClassicalDetector segments particles by thresholding the raster and
// extracting outer connected-component boundaries.
type ClassicalDetector struct {
	params ClassicalParams
}

// NewClassicalDetector creates a threshold/contour backend.
func NewClassicalDetector(params ClassicalParams) *ClassicalDetector {
	return &ClassicalDetector{params: params}
}

// Name implements Detector.
func (d *ClassicalDetector) Name() string { return "classical" }

// Params returns the configured parameters.
func (d *ClassicalDetector) Params() ClassicalParams { return d.params }

// Detect implements Detector. An all-background image yields zero regions
// and no error. Components touching the image border are included.
func (d *ClassicalDetector) Detect(ctx context.Context, img image.Image) ([]RawRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := imgio.ToMat(img)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	if d.params.Preprocess {
		// Light blur against pixel noise, then histogram equalization so
		// a fixed threshold behaves consistently across exposures.
		gocv.GaussianBlur(gray, &gray, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)
		gocv.EqualizeHist(gray, &gray)
	}

	mask := gocv.NewMat()
	defer mask.Close()
	d.binarize(gray, &mask)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.params.CleanupIterations > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 3, Y: 3})
		defer kernel.Close()
		// Open removes small speckle, close fills pinholes inside particles.
		gocv.MorphologyExWithParams(mask, &mask, gocv.MorphOpen, kernel,
			d.params.CleanupIterations, gocv.BorderConstant)
		gocv.MorphologyExWithParams(mask, &mask, gocv.MorphClose, kernel,
			d.params.CleanupIterations, gocv.BorderConstant)
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var regions []RawRegion
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if area < d.params.MinArea || area > d.params.MaxArea {
			continue
		}

		points := make([]geometry.Point2D, contour.Size())
		for j := 0; j < contour.Size(); j++ {
			pt := contour.At(j)
			points[j] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
		}

		region, ok := RawRegion{Points: points}.Normalize()
		if !ok {
			continue
		}
		regions = append(regions, region)
	}

	return regions, nil
}

// binarize thresholds the grayscale raster into a foreground mask
// according to the configured polarity. Threshold <= 0 selects Otsu.
func (d *ClassicalDetector) binarize(gray gocv.Mat, mask *gocv.Mat) {
	typ := gocv.ThresholdBinaryInv
	if d.params.Polarity == BrightForeground {
		typ = gocv.ThresholdBinary
	}

	if d.params.Threshold <= 0 {
		gocv.Threshold(gray, mask, 0, 255, typ|gocv.ThresholdOtsu)
		return
	}
	gocv.Threshold(gray, mask, float32(d.params.Threshold), 255, typ)
}
