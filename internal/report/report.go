package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"microplastics/internal/analysis"
	"microplastics/internal/core"
	"microplastics/internal/sample"
	"microplastics/internal/stats"
)

// File is the JSON analysis report.
type File struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Detector    string    `json:"detector"`
	PixelsToUM  float64   `json:"pixels_to_um"`

	Samples []*sample.Statistics `json:"samples"`

	Comparisons      map[core.Metric]*stats.ComparisonResult `json:"comparisons,omitempty"`
	ComparisonErrors map[core.Metric]string                  `json:"comparison_errors,omitempty"`

	// Concentrations is keyed by sample id; present only when the
	// configuration carries a sample volume.
	Concentrations map[string]sample.Concentration `json:"concentrations,omitempty"`

	RejectedRegions int      `json:"rejected_regions"`
	SkippedImages   []string `json:"skipped_images,omitempty"`
}

// New assembles a report from a batch result and comparison output.
func New(detector string, pixelsToUM float64, result *analysis.Result,
	comparisons map[core.Metric]*stats.ComparisonResult, compErrs map[core.Metric]error) *File {

	f := &File{
		Version:     1,
		GeneratedAt: time.Now(),
		Detector:    detector,
		PixelsToUM:  pixelsToUM,
		Comparisons: comparisons,

		RejectedRegions: result.Rejected,
	}
	for _, s := range result.Samples {
		f.Samples = append(f.Samples, s.Statistics())
	}
	for _, be := range result.Errors {
		f.SkippedImages = append(f.SkippedImages, fmt.Sprintf("%s: %v", be.Path, be.Err))
	}
	if len(compErrs) > 0 {
		f.ComparisonErrors = make(map[core.Metric]string, len(compErrs))
		for metric, err := range compErrs {
			f.ComparisonErrors[metric] = err.Error()
		}
	}
	return f
}

// AddConcentrations attaches per-sample concentration figures for a known
// filtered volume. Samples whose concentration cannot be computed are
// skipped with the error returned to the caller for logging.
func (f *File) AddConcentrations(volumeML, dilutionFactor float64, samples []*sample.Sample) error {
	f.Concentrations = make(map[string]sample.Concentration, len(samples))
	for _, s := range samples {
		c, err := s.Concentration(volumeML, dilutionFactor)
		if err != nil {
			return err
		}
		f.Concentrations[s.ID()] = c
	}
	return nil
}

// Save writes the report as indented JSON.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// TextSummary renders a plain-text summary of one sample's statistics.
func TextSummary(st *sample.Statistics) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "MICROPLASTIC ANALYSIS - sample %s\n", st.SampleID)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Particles detected: %d\n\n", st.Count)

	fmt.Fprintln(&b, "Size distribution:")
	writeCategories(&b, st.SizeCategories)
	fmt.Fprintln(&b, "Shape distribution:")
	writeCategories(&b, st.ShapeCategories)
	if len(st.Classes) > 0 {
		fmt.Fprintln(&b, "Detected classes:")
		writeCategories(&b, st.Classes)
	}

	area := st.Metrics[core.MetricArea]
	fmt.Fprintln(&b, "Area (μm²):")
	fmt.Fprintf(&b, "  mean %.2f  median %.2f  sd %.2f  min %.2f  max %.2f\n",
		area.Mean, area.Median, area.StdDev, area.Min, area.Max)

	diam := st.Metrics[core.MetricDiameter]
	fmt.Fprintln(&b, "Equivalent diameter (μm):")
	fmt.Fprintf(&b, "  mean %.2f  median %.2f  sd %.2f  min %.2f  max %.2f\n",
		diam.Mean, diam.Median, diam.StdDev, diam.Min, diam.Max)

	fmt.Fprintln(&b, rule)
	return b.String()
}

func writeCategories(b *strings.Builder, cats map[string]sample.CategoryCount) {
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cats[name]
		fmt.Fprintf(b, "  %-12s %4d particles (%.1f%%)\n", name, c.Count, c.Percent)
	}
	fmt.Fprintln(b)
}
