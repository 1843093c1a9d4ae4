// Package imgio loads microscope rasters and converts them for the
// detection backends.
package imgio

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Register decoders for the formats microscope software exports.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/disintegration/imaging"

	"microplastics/internal/core"
)

// Load decodes the image at path. Decode failures are reported as
// ErrImageUnreadable so batch callers can skip the image and continue.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrImageUnreadable, path, err)
	}
	return img, nil
}

// SampleID derives the sample identifier from a source image path: the
// base filename without its extension.
func SampleID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
