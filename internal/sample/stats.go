package sample

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"microplastics/internal/core"
	"microplastics/internal/morphology"
)

// Descriptive holds the descriptive statistics of one metric.
type Descriptive struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
	// CV is the coefficient of variation, stddev/mean. NaN when the mean
	// is zero.
	CV float64 `json:"cv"`
}

// CategoryCount tallies one categorical label.
type CategoryCount struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Statistics is the cached descriptive summary of a frozen sample.
type Statistics struct {
	SampleID string `json:"sample_id"`
	Count    int    `json:"count"`

	Metrics map[core.Metric]Descriptive `json:"metrics"`

	SizeCategories  map[string]CategoryCount `json:"size_categories"`
	ShapeCategories map[string]CategoryCount `json:"shape_categories"`
	// Classes tallies neural class labels; empty for classical-path
	// samples.
	Classes map[string]CategoryCount `json:"classes,omitempty"`
}

// Describe computes descriptive statistics over a metric's values.
func Describe(values []float64) Descriptive {
	n := len(values)
	if n == 0 {
		return Descriptive{CV: math.NaN(), Mean: math.NaN(), Median: math.NaN()}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	sd := 0.0
	if n > 1 {
		sd = stat.StdDev(sorted, nil)
	}

	cv := math.NaN()
	if mean != 0 {
		cv = sd / mean
	}

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)

	return Descriptive{
		Count:  n,
		Mean:   mean,
		Median: quantile(sorted, 0.5),
		StdDev: sd,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
		CV:     cv,
	}
}

// quantile interpolates linearly between order statistics at index
// p*(n-1), the convention dataframe libraries use, so the median of an
// odd-length sample is its middle element.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	h := p * float64(n-1)
	i := int(h)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

func describeSample(id string, particles []morphology.Particle) *Statistics {
	st := &Statistics{
		SampleID:        id,
		Count:           len(particles),
		Metrics:         make(map[core.Metric]Descriptive, len(core.Metrics())),
		SizeCategories:  make(map[string]CategoryCount),
		ShapeCategories: make(map[string]CategoryCount),
		Classes:         make(map[string]CategoryCount),
	}

	values := make([]float64, len(particles))
	for _, metric := range core.Metrics() {
		for i := range particles {
			values[i] = metricValue(&particles[i], metric)
		}
		st.Metrics[metric] = Describe(values)
	}

	sizes := make(map[string]int)
	shapes := make(map[string]int)
	classes := make(map[string]int)
	for i := range particles {
		p := &particles[i]
		if p.SizeCategory != "" {
			sizes[p.SizeCategory]++
		}
		if p.ShapeCategory != "" {
			shapes[p.ShapeCategory]++
		}
		if p.Class != "" {
			classes[p.Class]++
		}
	}
	st.SizeCategories = tally(sizes, len(particles))
	st.ShapeCategories = tally(shapes, len(particles))
	st.Classes = tally(classes, len(particles))

	return st
}

func tally(counts map[string]int, total int) map[string]CategoryCount {
	out := make(map[string]CategoryCount, len(counts))
	for name, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		out[name] = CategoryCount{Count: n, Percent: pct}
	}
	return out
}

// Concentration expresses a sample's particle load per unit volume.
type Concentration struct {
	ParticlesPerML    float64 `json:"particles_per_ml"`
	TotalAreaUM2PerML float64 `json:"total_area_um2_per_ml"`
}

// Concentration computes the particle concentration given the filtered
// sample volume in milliliters and the applied dilution factor.
func (s *Sample) Concentration(volumeML, dilutionFactor float64) (Concentration, error) {
	if volumeML <= 0 {
		return Concentration{}, fmt.Errorf("sample volume must be > 0, got %g", volumeML)
	}
	if dilutionFactor <= 0 {
		dilutionFactor = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalArea float64
	for i := range s.particles {
		totalArea += s.particles[i].AreaUM2
	}
	return Concentration{
		ParticlesPerML:    float64(len(s.particles)) * dilutionFactor / volumeML,
		TotalAreaUM2PerML: totalArea * dilutionFactor / volumeML,
	}, nil
}
