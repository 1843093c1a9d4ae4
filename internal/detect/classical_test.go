package detect

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"microplastics/pkg/geometry"
)

// fillImage creates a uniformly colored RGBA test raster.
func fillImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// drawSquare paints a filled square onto img.
func drawSquare(img *image.RGBA, x, y, size int, c color.Color) {
	r := image.Rect(x, y, x+size, y+size)
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func TestClassicalDetectEmptyImage(t *testing.T) {
	// No foreground anywhere: zero regions, no error.
	img := fillImage(400, 400, color.White)
	d := NewClassicalDetector(DefaultClassicalParams())

	regions, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("detected %d regions on a blank image, want 0", len(regions))
	}
}

func TestClassicalDetectDarkSquare(t *testing.T) {
	img := fillImage(400, 400, color.White)
	drawSquare(img, 100, 100, 60, color.Black)

	// Equalization on a two-level histogram can move the levels across a
	// fixed threshold, so segment the synthetic raster directly.
	params := DefaultClassicalParams()
	params.Preprocess = false
	d := NewClassicalDetector(params)

	regions, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("detected %d regions, want 1", len(regions))
	}

	area := geometry.Area(regions[0].Points)
	if area < 3000 || area > 4000 {
		t.Errorf("region area = %v px², want ≈ 3600", area)
	}
	c := geometry.Centroid(regions[0].Points)
	if c.X < 120 || c.X > 140 || c.Y < 120 || c.Y > 140 {
		t.Errorf("region centroid = %v, want near (130, 130)", c)
	}
}

func TestClassicalDetectPolarity(t *testing.T) {
	// Bright particle on dark background requires the inverted polarity.
	img := fillImage(400, 400, color.Black)
	drawSquare(img, 50, 50, 40, color.White)

	params := DefaultClassicalParams().WithPolarity(BrightForeground)
	params.Preprocess = false
	d := NewClassicalDetector(params)

	regions, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("detected %d regions, want 1", len(regions))
	}

	// The default polarity sees the same raster as background plus one
	// image-filling foreground blob, which the area ceiling rejects.
	d = NewClassicalDetector(DefaultClassicalParams())
	regions, err = d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("detected %d regions with inverted polarity, want 0", len(regions))
	}
}

func TestClassicalDetectAreaFilter(t *testing.T) {
	img := fillImage(400, 400, color.White)
	drawSquare(img, 50, 50, 3, color.Black)    // 9 px², below MinArea
	drawSquare(img, 200, 200, 40, color.Black) // passes

	params := DefaultClassicalParams()
	params.Preprocess = false
	params.CleanupIterations = 0
	d := NewClassicalDetector(params)

	regions, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("detected %d regions, want 1 (speck filtered)", len(regions))
	}
	if area := geometry.Area(regions[0].Points); area < 1000 {
		t.Errorf("kept the wrong region, area = %v", area)
	}
}

func TestClassicalDetectOtsu(t *testing.T) {
	// Threshold 0 switches to Otsu, which separates a clean bimodal
	// raster without a hand-picked level.
	img := fillImage(400, 400, color.RGBA{R: 180, G: 180, B: 180, A: 255})
	drawSquare(img, 150, 150, 50, color.RGBA{R: 40, G: 40, B: 40, A: 255})

	params := DefaultClassicalParams().WithThreshold(0)
	params.Preprocess = false
	d := NewClassicalDetector(params)

	regions, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(regions) != 1 {
		t.Errorf("detected %d regions, want 1", len(regions))
	}
}

func TestClassicalDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	d := NewClassicalDetector(DefaultClassicalParams())
	_, err := d.Detect(ctx, fillImage(100, 100, color.White))
	if err == nil {
		t.Error("Detect ignored an expired context")
	}
}
