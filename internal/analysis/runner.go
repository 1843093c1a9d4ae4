// Package analysis orchestrates the detection-to-statistics pipeline over
// a batch of microscope images.
package analysis

import (
	"context"
	"image"
	"sort"
	"sync"

	"microplastics/internal/classify"
	"microplastics/internal/detect"
	"microplastics/internal/imgio"
	"microplastics/internal/morphology"
	"microplastics/internal/sample"
)

// BatchError records a per-image failure. Per-image failures never abort
// the rest of the batch.
type BatchError struct {
	Path     string
	SampleID string
	Err      error
}

// Result is the outcome of one batch run.
type Result struct {
	// Samples are frozen and sorted by sample id.
	Samples []*sample.Sample
	// Errors lists the images that were skipped and why.
	Errors []BatchError
	// Rejected counts regions discarded as degenerate geometry.
	Rejected int
}

// Runner fans image analysis out across worker goroutines. The detector
// factory is called once per worker because a loaded network is not safe
// for concurrent inference; the measurer and classifier are shared and
// safe for concurrent use.
type Runner struct {
	newDetector func() (detect.Detector, error)
	measurer    *morphology.Measurer
	classifier  *classify.Classifier
	workers     int

	// loadImage defaults to imgio.Load; tests substitute synthetic
	// rasters.
	loadImage func(path string) (image.Image, error)
}

// NewRunner creates a batch runner. workers <= 0 selects a single worker.
func NewRunner(newDetector func() (detect.Detector, error), measurer *morphology.Measurer, classifier *classify.Classifier, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		newDetector: newDetector,
		measurer:    measurer,
		classifier:  classifier,
		workers:     workers,
		loadImage:   imgio.Load,
	}
}

// Run processes every image path and returns the frozen samples. Each
// image is independent: decode failures, detection errors and degenerate
// regions are recorded and the batch continues. A cancelled context stops
// scheduling new images and returns the partial result with ctx.Err().
func (r *Runner) Run(ctx context.Context, paths []string) (*Result, error) {
	result := &Result{}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			detector, err := r.newDetector()
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, BatchError{Err: err})
				mu.Unlock()
				// Drain so the feeder does not block.
				for range jobs {
				}
				return
			}
			if closer, ok := detector.(interface{ Close() error }); ok {
				defer closer.Close()
			}

			for path := range jobs {
				s, err := r.runImage(ctx, detector, path)
				mu.Lock()
				if err != nil {
					result.Errors = append(result.Errors, BatchError{
						Path:     path,
						SampleID: imgio.SampleID(path),
						Err:      err,
					})
				} else {
					result.Samples = append(result.Samples, s)
				}
				mu.Unlock()
			}
		}()
	}

	feed := func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}
	feed()
	wg.Wait()

	sort.Slice(result.Samples, func(i, j int) bool {
		return result.Samples[i].ID() < result.Samples[j].ID()
	})
	result.Rejected = r.measurer.Rejected()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// runImage analyzes one image into a frozen sample. Region extraction
// completes before any morphology measurement starts, and the sample is
// only published after Freeze, so no reader can observe a partially
// populated finalized sample.
func (r *Runner) runImage(ctx context.Context, detector detect.Detector, path string) (*sample.Sample, error) {
	img, err := r.loadImage(path)
	if err != nil {
		return nil, err
	}

	regions, err := detector.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	s := sample.New(imgio.SampleID(path))
	for i, region := range regions {
		particle, ok := r.measurer.Measure(region, s.ID(), i+1)
		if !ok {
			continue
		}
		if err := r.classifier.Label(&particle); err != nil {
			return nil, err
		}
		if err := s.Append(particle); err != nil {
			return nil, err
		}
	}
	s.Freeze()
	return s, nil
}
