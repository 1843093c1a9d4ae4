// Package classify assigns categorical size and shape labels to measured
// particles using configurable ordered bin tables.
package classify

import (
	"encoding/json"
	"fmt"
	"math"

	"microplastics/internal/core"
	"microplastics/internal/morphology"
)

// Bin is one category covering [Low, High) of a metric.
type Bin struct {
	Name string
	Low  float64
	High float64
}

// binJSON is the wire form of a Bin. JSON has no +Inf, so an omitted
// "high" means unbounded.
type binJSON struct {
	Name string   `json:"name"`
	Low  float64  `json:"low"`
	High *float64 `json:"high,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (b Bin) MarshalJSON() ([]byte, error) {
	out := binJSON{Name: b.Name, Low: b.Low}
	if !math.IsInf(b.High, 1) {
		out.High = &b.High
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bin) UnmarshalJSON(data []byte) error {
	var in binJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b.Name = in.Name
	b.Low = in.Low
	b.High = math.Inf(1)
	if in.High != nil {
		b.High = *in.High
	}
	return nil
}

// Table is an ordered, exhaustive list of bins. Bins are checked in
// configuration order; the last bin's High must be +Inf.
type Table []Bin

// Validate checks that the table is well formed and exhaustive over
// [domainMin, +Inf): non-empty named bins, Low < High, contiguous bounds,
// first Low at or below domainMin, last High infinite. Malformed tables
// fail fast as configuration errors, never per particle.
func (t Table) Validate(what string, domainMin float64) error {
	if len(t) == 0 {
		return fmt.Errorf("%s table is empty: %w", what, core.ErrInvalidConfiguration)
	}
	for i, b := range t {
		if b.Name == "" {
			return fmt.Errorf("%s bin %d has no name: %w", what, i, core.ErrInvalidConfiguration)
		}
		if !(b.Low < b.High) {
			return fmt.Errorf("%s bin %q has empty range [%g, %g): %w",
				what, b.Name, b.Low, b.High, core.ErrInvalidConfiguration)
		}
		if i > 0 && t[i-1].High != b.Low {
			return fmt.Errorf("%s bins %q and %q leave a gap at %g: %w",
				what, t[i-1].Name, b.Name, t[i-1].High, core.ErrInvalidConfiguration)
		}
	}
	if t[0].Low > domainMin {
		return fmt.Errorf("%s table starts at %g, leaving values below uncovered: %w",
			what, t[0].Low, core.ErrInvalidConfiguration)
	}
	if !math.IsInf(t[len(t)-1].High, 1) {
		return fmt.Errorf("%s table is not open-ended above %g: %w",
			what, t[len(t)-1].High, core.ErrInvalidConfiguration)
	}
	return nil
}

// lookup returns the first bin containing v. Validation guarantees a
// match for any v in the domain.
func (t Table) lookup(v float64) string {
	for _, b := range t {
		if v >= b.Low && v < b.High {
			return b.Name
		}
	}
	// Unreachable for validated tables; values below the domain clamp
	// into the first bin.
	return t[0].Name
}

// DefaultSizeTable bins equivalent diameter in μm.
func DefaultSizeTable() Table {
	return Table{
		{Name: "small", Low: 0, High: 50},
		{Name: "medium", Low: 50, High: 200},
		{Name: "large", Low: 200, High: math.Inf(1)},
	}
}

// DefaultShapeTable bins aspect ratio.
func DefaultShapeTable() Table {
	return Table{
		{Name: "spherical", Low: 0, High: 1.2},
		{Name: "elongated", Low: 1.2, High: 3},
		{Name: "fiber", Low: 3, High: math.Inf(1)},
	}
}

// Classifier assigns size categories over equivalent diameter and shape
// categories over aspect ratio.
type Classifier struct {
	size  Table
	shape Table
}

// New validates both tables and builds a Classifier. The size table must
// cover diameters from 0; the shape table must cover aspect ratios, which
// are >= 1 by construction.
func New(size, shape Table) (*Classifier, error) {
	if err := size.Validate("size", 0); err != nil {
		return nil, err
	}
	if err := shape.Validate("shape", 1); err != nil {
		return nil, err
	}
	return &Classifier{size: size, shape: shape}, nil
}

// Label assigns the categorical annex of a measured particle. The annex
// is write-once: labelling an already classified particle is an error and
// leaves the record untouched.
func (c *Classifier) Label(p *morphology.Particle) error {
	if p.Classified() {
		return fmt.Errorf("particle %s/%d is already classified", p.SampleID, p.Index)
	}
	p.SizeCategory = c.size.lookup(p.EquivalentDiameterUM)
	p.ShapeCategory = c.shape.lookup(p.AspectRatio)
	return nil
}
