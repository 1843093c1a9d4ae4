package detect

import (
	"sort"

	"microplastics/pkg/geometry"
)

// DecodePredictions converts raw model rows into Detections in source
// image coordinates, keeping only candidates whose best class score
// reaches confThreshold. Each row is [cx, cy, w, h, classScores...]
// in network input coordinates; scaleX/scaleY map back to the raster.
func DecodePredictions(preds [][]float32, scaleX, scaleY, confThreshold float64) []Detection {
	var dets []Detection
	for _, row := range preds {
		if len(row) < 5 {
			continue
		}

		classID := 0
		best := float64(row[4])
		for c := 5; c < len(row); c++ {
			if float64(row[c]) > best {
				best = float64(row[c])
				classID = c - 4
			}
		}
		if best < confThreshold {
			continue
		}

		cx := float64(row[0]) * scaleX
		cy := float64(row[1]) * scaleY
		w := float64(row[2]) * scaleX
		h := float64(row[3]) * scaleY

		dets = append(dets, Detection{
			Box:        geometry.Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h},
			ClassID:    classID,
			Confidence: best,
		})
	}
	return dets
}

// Suppress applies greedy non-maximum suppression: candidates are visited
// in descending confidence order and kept only if their IoU with every
// previously kept box stays below iouThreshold.
func Suppress(dets []Detection, iouThreshold float64) []Detection {
	if len(dets) <= 1 {
		return dets
	}

	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var kept []Detection
	for _, cand := range sorted {
		suppressed := false
		for _, k := range kept {
			if IoU(cand.Box, k.Box) >= iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, cand)
		}
	}
	return kept
}

// IoU returns the intersection-over-union of two axis-aligned boxes.
func IoU(a, b geometry.Rect) float64 {
	ix := overlap(a.X, a.X+a.Width, b.X, b.X+b.Width)
	iy := overlap(a.Y, a.Y+a.Height, b.Y, b.Y+b.Height)
	inter := ix * iy
	if inter <= 0 {
		return 0
	}
	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func overlap(aLo, aHi, bLo, bHi float64) float64 {
	lo := aLo
	if bLo > lo {
		lo = bLo
	}
	hi := aHi
	if bHi < hi {
		hi = bHi
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
