// Package core holds the error taxonomy and metric identifiers shared
// across the analysis pipeline.
package core

import "errors"

var (
	// ErrInvalidConfiguration indicates a bad calibration factor or
	// malformed classification bin table. Fatal at startup.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrImageUnreadable indicates an image that could not be decoded.
	// Recoverable: the image is skipped and recorded in the batch error
	// list, the rest of the batch continues.
	ErrImageUnreadable = errors.New("image unreadable")

	// ErrModelUnavailable indicates the neural detection artifact could
	// not be loaded. Fatal for the neural path and reported distinctly
	// from zero detections.
	ErrModelUnavailable = errors.New("detection model unavailable")

	// ErrInsufficientData indicates a sample with too few observations to
	// take part in a statistical comparison. Fatal for that metric's
	// comparison only.
	ErrInsufficientData = errors.New("insufficient data")
)
