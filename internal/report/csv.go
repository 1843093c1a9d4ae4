// Package report exports particle records, sample statistics and
// comparison results. It consumes core data read-only.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"microplastics/internal/sample"
)

var csvHeader = []string{
	"sample_id", "index",
	"area_um2", "perimeter_um", "equivalent_diameter_um",
	"major_axis_um", "minor_axis_um",
	"aspect_ratio", "eccentricity", "solidity", "orientation_deg",
	"size_category", "shape_category",
	"class", "confidence",
}

// WriteParticlesCSV writes one row per particle across all samples.
func WriteParticlesCSV(w io.Writer, samples []*sample.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range samples {
		for _, p := range s.Particles() {
			row := []string{
				p.SampleID,
				fmt.Sprintf("%d", p.Index),
				fmt.Sprintf("%.4f", p.AreaUM2),
				fmt.Sprintf("%.4f", p.PerimeterUM),
				fmt.Sprintf("%.4f", p.EquivalentDiameterUM),
				fmt.Sprintf("%.4f", p.MajorAxisUM),
				fmt.Sprintf("%.4f", p.MinorAxisUM),
				fmt.Sprintf("%.4f", p.AspectRatio),
				fmt.Sprintf("%.4f", p.Eccentricity),
				fmt.Sprintf("%.4f", p.Solidity),
				fmt.Sprintf("%.2f", p.OrientationDeg),
				p.SizeCategory,
				p.ShapeCategory,
				p.Class,
				fmt.Sprintf("%.3f", p.Confidence),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveParticlesCSV writes the particle table to a file.
func SaveParticlesCSV(path string, samples []*sample.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteParticlesCSV(f, samples)
}
