// Package calibrate converts pixel measurements to physical micrometers.
package calibrate

import (
	"fmt"

	"microplastics/internal/core"
)

// Converter holds the microscope calibration factor (μm per pixel). It is
// stateless beyond the factor and safe for concurrent read access.
type Converter struct {
	factor float64
}

// New creates a Converter from a μm-per-pixel factor. The factor must be
// strictly positive.
func New(umPerPixel float64) (*Converter, error) {
	if umPerPixel <= 0 {
		return nil, fmt.Errorf("calibration factor must be > 0, got %g: %w",
			umPerPixel, core.ErrInvalidConfiguration)
	}
	return &Converter{factor: umPerPixel}, nil
}

// Factor returns the μm-per-pixel factor.
func (c *Converter) Factor() float64 {
	return c.factor
}

// Micrometers converts a pixel length to micrometers.
func (c *Converter) Micrometers(pixels float64) float64 {
	return pixels * c.factor
}

// SquareMicrometers converts a pixel area to square micrometers.
func (c *Converter) SquareMicrometers(pixelArea float64) float64 {
	return pixelArea * c.factor * c.factor
}
