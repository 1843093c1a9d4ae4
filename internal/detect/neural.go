package detect

import (
	"context"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"microplastics/internal/core"
	"microplastics/internal/imgio"
)

// NeuralDetector runs a trained object-detection model and converts its
// box predictions into rectangular RawRegions tagged with class labels.
//
// A NeuralDetector owns one loaded network and is not safe for concurrent
// use; create one per worker goroutine.
type NeuralDetector struct {
	params NeuralParams
	net    gocv.Net
}

// NewNeuralDetector loads the detection artifact at params.ModelPath.
// A missing or unparsable artifact fails with ErrModelUnavailable so
// callers can distinguish "no model" from "zero detections" and fall back
// to the classical backend explicitly.
func NewNeuralDetector(params NeuralParams) (*NeuralDetector, error) {
	if params.ModelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", core.ErrModelUnavailable)
	}
	if _, err := os.Stat(params.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrModelUnavailable, params.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(params.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: %s: not a loadable ONNX network",
			core.ErrModelUnavailable, params.ModelPath)
	}

	if len(params.ClassNames) == 0 {
		params.ClassNames = DefaultClassNames
	}
	if params.InputSize <= 0 {
		params.InputSize = DefaultNeuralParams().InputSize
	}

	return &NeuralDetector{params: params, net: net}, nil
}

// Name implements Detector.
func (d *NeuralDetector) Name() string { return "neural" }

// Params returns the configured parameters.
func (d *NeuralDetector) Params() NeuralParams { return d.params }

// Close releases the loaded network.
func (d *NeuralDetector) Close() error {
	return d.net.Close()
}

// Detect implements Detector. Inference is a blocking, GPU-bound call; it
// runs on its own goroutine so the caller's context can cancel the wait.
// Cancelled work publishes nothing.
func (d *NeuralDetector) Detect(ctx context.Context, img image.Image) ([]RawRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := imgio.ToMat(img)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	sz := d.params.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Point{X: sz, Y: sz},
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()
	d.net.SetInput(blob, "")

	done := make(chan gocv.Mat, 1)
	go func() {
		done <- d.net.Forward("")
	}()

	var out gocv.Mat
	select {
	case <-ctx.Done():
		// Inference cannot be interrupted mid-kernel; release its output
		// when it eventually completes and report the cancellation.
		go func() {
			late := <-done
			late.Close()
		}()
		return nil, ctx.Err()
	case out = <-done:
	}
	defer out.Close()

	preds := readPredictions(out)
	scaleX := float64(mat.Cols()) / float64(sz)
	scaleY := float64(mat.Rows()) / float64(sz)

	dets := DecodePredictions(preds, scaleX, scaleY, d.params.ConfidenceThreshold)
	kept := Suppress(dets, d.params.IoUThreshold)

	regions := make([]RawRegion, 0, len(kept))
	for _, det := range kept {
		region, ok := RegionFromBox(det.Box, d.className(det.ClassID), det.Confidence).Normalize()
		if !ok {
			continue
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func (d *NeuralDetector) className(classID int) string {
	if classID >= 0 && classID < len(d.params.ClassNames) {
		return d.params.ClassNames[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}

// readPredictions flattens the network output [1 x (4+nc) x n] into one
// row per candidate: [cx, cy, w, h, classScore0, classScore1, ...].
func readPredictions(out gocv.Mat) [][]float32 {
	sizes := out.Size()
	if len(sizes) < 2 {
		return nil
	}
	rows := sizes[len(sizes)-2]
	cols := sizes[len(sizes)-1]

	data, err := out.DataPtrFloat32()
	if err != nil || len(data) < rows*cols {
		return nil
	}

	preds := make([][]float32, cols)
	for i := 0; i < cols; i++ {
		row := make([]float32, rows)
		for j := 0; j < rows; j++ {
			row[j] = data[j*cols+i]
		}
		preds[i] = row
	}
	return preds
}
