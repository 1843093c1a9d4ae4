// Package config provides analysis configuration loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"microplastics/internal/classify"
	"microplastics/internal/core"
	"microplastics/internal/detect"
	"microplastics/internal/stats"
)

// File represents an analysis configuration (.json). All parameters are
// passed explicitly into the components they configure; nothing reads
// ambient process state, so batches with different configurations can run
// concurrently.
type File struct {
	Version int `json:"version"`

	// PixelsToUM is the microscope calibration factor in μm per pixel.
	PixelsToUM float64 `json:"pixels_to_um"`

	// Classical segmentation.
	Threshold        int     `json:"threshold"`
	BrightForeground bool    `json:"bright_foreground,omitempty"`
	MinParticleArea  float64 `json:"min_particle_area"`
	MaxParticleArea  float64 `json:"max_particle_area"`

	// Neural detection.
	ModelPath           string   `json:"model_path,omitempty"`
	ConfidenceThreshold float64  `json:"confidence_threshold"`
	IoUThreshold        float64  `json:"iou_threshold"`
	ClassNames          []string `json:"class_names,omitempty"`

	// Classification bin tables.
	SizeCategories  classify.Table `json:"size_categories"`
	ShapeCategories classify.Table `json:"shape_categories"`

	// Comparative statistics.
	Alpha         float64 `json:"alpha"`
	EqualVariance bool    `json:"equal_variance,omitempty"`

	// Concentration reporting; zero disables it.
	SampleVolumeML float64 `json:"sample_volume_ml,omitempty"`
	DilutionFactor float64 `json:"dilution_factor,omitempty"`
}

// Default returns the stock configuration.
func Default() *File {
	neural := detect.DefaultNeuralParams()
	classical := detect.DefaultClassicalParams()
	return &File{
		Version:             1,
		PixelsToUM:          1.0,
		Threshold:           classical.Threshold,
		MinParticleArea:     classical.MinArea,
		MaxParticleArea:     classical.MaxArea,
		ConfidenceThreshold: neural.ConfidenceThreshold,
		IoUThreshold:        neural.IoUThreshold,
		SizeCategories:      classify.DefaultSizeTable(),
		ShapeCategories:     classify.DefaultShapeTable(),
		Alpha:               0.05,
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a file.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every parameter that is fatal at startup.
func (f *File) Validate() error {
	if f.PixelsToUM <= 0 {
		return fmt.Errorf("pixels_to_um must be > 0, got %g: %w",
			f.PixelsToUM, core.ErrInvalidConfiguration)
	}
	if f.Threshold > 255 {
		return fmt.Errorf("threshold must be in [0,255], got %d: %w",
			f.Threshold, core.ErrInvalidConfiguration)
	}
	if f.MinParticleArea < 0 || f.MaxParticleArea <= f.MinParticleArea {
		return fmt.Errorf("particle area bounds [%g, %g] are invalid: %w",
			f.MinParticleArea, f.MaxParticleArea, core.ErrInvalidConfiguration)
	}
	if f.ConfidenceThreshold < 0 || f.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %g: %w",
			f.ConfidenceThreshold, core.ErrInvalidConfiguration)
	}
	if f.IoUThreshold < 0 || f.IoUThreshold > 1 {
		return fmt.Errorf("iou_threshold must be in [0,1], got %g: %w",
			f.IoUThreshold, core.ErrInvalidConfiguration)
	}
	if f.Alpha <= 0 || f.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0,1), got %g: %w",
			f.Alpha, core.ErrInvalidConfiguration)
	}

	// Bin tables fail fast here, not per particle.
	if _, err := classify.New(f.SizeCategories, f.ShapeCategories); err != nil {
		return err
	}
	return nil
}

// ClassicalParams maps the configuration onto the classical backend.
func (f *File) ClassicalParams() detect.ClassicalParams {
	p := detect.DefaultClassicalParams().
		WithThreshold(f.Threshold).
		WithAreaBounds(f.MinParticleArea, f.MaxParticleArea)
	if f.BrightForeground {
		p = p.WithPolarity(detect.BrightForeground)
	}
	return p
}

// NeuralParams maps the configuration onto the neural backend.
func (f *File) NeuralParams() detect.NeuralParams {
	p := detect.DefaultNeuralParams().
		WithModel(f.ModelPath).
		WithThresholds(f.ConfidenceThreshold, f.IoUThreshold)
	if len(f.ClassNames) > 0 {
		p.ClassNames = f.ClassNames
	}
	return p
}

// StatsConfig maps the configuration onto the comparison engine.
func (f *File) StatsConfig() stats.Config {
	return stats.Config{Alpha: f.Alpha, EqualVariance: f.EqualVariance}
}
