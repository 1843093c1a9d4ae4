package report

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"microplastics/internal/imgio"
	"microplastics/internal/morphology"
)

var classColors = map[string]color.RGBA{
	"fiber":       {R: 0, G: 0, B: 255, A: 255},
	"fragment":    {R: 0, G: 255, B: 0, A: 255},
	"film":        {R: 255, G: 255, B: 0, A: 255},
	"sphere":      {R: 255, G: 0, B: 255, A: 255},
	"irregular":   {R: 255, G: 165, B: 0, A: 255},
	"agglomerate": {R: 128, G: 0, B: 128, A: 255},
}

var defaultColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// SaveOverlay writes a copy of the source image with every particle's
// bounding box, index and label drawn on it.
func SaveOverlay(path string, src image.Image, particles []morphology.Particle) error {
	mat := imgio.ToMat(src)
	defer mat.Close()

	for i := range particles {
		p := &particles[i]

		c := defaultColor
		if p.Class != "" {
			if cc, ok := classColors[p.Class]; ok {
				c = cc
			}
		}

		r := image.Rect(
			int(p.Bounds.X), int(p.Bounds.Y),
			int(p.Bounds.X+p.Bounds.Width), int(p.Bounds.Y+p.Bounds.Height),
		)
		gocv.Rectangle(&mat, r, c, 2)

		label := fmt.Sprintf("%d", p.Index)
		if p.Class != "" {
			label = fmt.Sprintf("%d %s %.2f", p.Index, p.Class, p.Confidence)
		}
		org := image.Point{X: r.Min.X, Y: r.Min.Y - 5}
		if org.Y < 10 {
			org.Y = r.Max.Y + 15
		}
		gocv.PutText(&mat, label, org, gocv.FontHersheySimplex, 0.5, c, 1)
	}

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to write overlay %s", path)
	}
	return nil
}
