// Package sample groups measured particles by source image and computes
// per-sample descriptive statistics.
package sample

import (
	"fmt"
	"sync"

	"microplastics/internal/core"
	"microplastics/internal/morphology"
)

// Sample is a named collection of particles from one source image. It is
// append-only during the detection phase; Freeze is a single atomic
// transition after which the particle set is immutable and statistics are
// computed once and cached.
type Sample struct {
	id string

	mu        sync.RWMutex
	particles []morphology.Particle
	frozen    bool
	stats     *Statistics
}

// New creates an empty, unfrozen sample.
func New(id string) *Sample {
	return &Sample{id: id}
}

// ID returns the sample identifier.
func (s *Sample) ID() string { return s.id }

// Append adds a particle. Appending to a frozen sample is an error.
func (s *Sample) Append(p morphology.Particle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("sample %s is frozen", s.id)
	}
	s.particles = append(s.particles, p)
	s.stats = nil
	return nil
}

// Freeze closes the sample to further writes. Freezing twice is a no-op.
func (s *Sample) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Frozen reports whether the sample has been finalized.
func (s *Sample) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Len returns the number of particles.
func (s *Sample) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.particles)
}

// Particles returns a copy of the particle records.
func (s *Sample) Particles() []morphology.Particle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]morphology.Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Values returns the particle values for one metric, in append order.
func (s *Sample) Values(metric core.Metric) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]float64, len(s.particles))
	for i := range s.particles {
		out[i] = metricValue(&s.particles[i], metric)
	}
	return out
}

// Statistics returns the sample's descriptive statistics, computing them
// on first access and caching until the particle set changes.
func (s *Sample) Statistics() *Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		s.stats = describeSample(s.id, s.particles)
	}
	return s.stats
}

func metricValue(p *morphology.Particle, metric core.Metric) float64 {
	switch metric {
	case core.MetricArea:
		return p.AreaUM2
	case core.MetricDiameter:
		return p.EquivalentDiameterUM
	case core.MetricPerimeter:
		return p.PerimeterUM
	case core.MetricAspectRatio:
		return p.AspectRatio
	case core.MetricEccentricity:
		return p.Eccentricity
	case core.MetricSolidity:
		return p.Solidity
	default:
		return 0
	}
}
