package detect

// Polarity selects which side of the threshold is treated as foreground.
type Polarity int

const (
	// DarkForeground treats pixels below the threshold as particle
	// foreground. Microplastic particles image darker than the backlit
	// field on transmission microscopes.
	DarkForeground Polarity = iota
	// BrightForeground treats pixels above the threshold as foreground,
	// for reflected-light imaging where particles are brighter than the
	// substrate.
	BrightForeground
)

// ClassicalParams configures the threshold/contour backend.
type ClassicalParams struct {
	// Threshold is the binarization cutoff in [0,255]. A value <= 0
	// selects Otsu's automatic threshold.
	Threshold int

	// Polarity selects the foreground side of the threshold.
	Polarity Polarity

	// MinArea and MaxArea bound accepted region areas in pixels.
	// Regions outside the range are noise specks or merged-blob
	// artifacts and are discarded.
	MinArea float64
	MaxArea float64

	// Preprocess enables Gaussian smoothing and histogram equalization
	// before thresholding.
	Preprocess bool

	// CleanupIterations is the number of morphological open/close passes
	// applied to the binary mask.
	CleanupIterations int

	// Note: components touching the image border are included. This is a
	// known edge-truncation bias; border particles measure smaller than
	// their true extent.
}

// DefaultClassicalParams returns parameters tuned for backlit microscope
// images of filter membranes.
func DefaultClassicalParams() ClassicalParams {
	return ClassicalParams{
		Threshold:         127,
		Polarity:          DarkForeground,
		MinArea:           10,
		MaxArea:           50000,
		Preprocess:        true,
		CleanupIterations: 2,
	}
}

// WithThreshold returns a copy with a fixed binarization threshold.
func (p ClassicalParams) WithThreshold(threshold int) ClassicalParams {
	p.Threshold = threshold
	return p
}

// WithAreaBounds returns a copy with pixel area bounds.
func (p ClassicalParams) WithAreaBounds(minArea, maxArea float64) ClassicalParams {
	p.MinArea = minArea
	p.MaxArea = maxArea
	return p
}

// WithPolarity returns a copy with the given foreground polarity.
func (p ClassicalParams) WithPolarity(polarity Polarity) ClassicalParams {
	p.Polarity = polarity
	return p
}

// DefaultClassNames are the six microplastic classes the detection models
// are trained on, in training label order. Model metadata overrides these
// when present.
var DefaultClassNames = []string{
	"fiber",
	"fragment",
	"film",
	"sphere",
	"irregular",
	"agglomerate",
}

// NeuralParams configures the neural object-detection backend.
type NeuralParams struct {
	// ModelPath locates the trained detection artifact (ONNX).
	ModelPath string

	// ConfidenceThreshold is the minimum score for a prediction to be
	// kept.
	ConfidenceThreshold float64

	// IoUThreshold is the overlap above which a lower-confidence
	// prediction of the same object is suppressed.
	IoUThreshold float64

	// InputSize is the square side length the raster is letterboxed to
	// before inference.
	InputSize int

	// ClassNames maps class indices to labels.
	ClassNames []string
}

// DefaultNeuralParams returns the inference defaults the detection models
// are exported with.
func DefaultNeuralParams() NeuralParams {
	return NeuralParams{
		ConfidenceThreshold: 0.25,
		IoUThreshold:        0.45,
		InputSize:           640,
		ClassNames:          DefaultClassNames,
	}
}

// WithModel returns a copy pointing at a trained artifact.
func (p NeuralParams) WithModel(path string) NeuralParams {
	p.ModelPath = path
	return p
}

// WithThresholds returns a copy with confidence and IoU thresholds.
func (p NeuralParams) WithThresholds(confidence, iou float64) NeuralParams {
	p.ConfidenceThreshold = confidence
	p.IoUThreshold = iou
	return p
}
