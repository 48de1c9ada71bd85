package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Hysteresis thresholds for the edge detector.
const (
	CannyLowThreshold  = 80
	CannyHighThreshold = 160
)

// EdgeDetector runs Canny on the luma channel and emits a binary RGBA map.
type EdgeDetector struct {
	low  float32
	high float32
}

// NewEdgeDetector creates the default edge detector
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{low: CannyLowThreshold, high: CannyHighThreshold}
}

func (e *EdgeDetector) Apply(input gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()

	if err := gocv.CvtColor(input, &gray, gocv.ColorRGBAToGray); err != nil {
		return gocv.NewMat(), fmt.Errorf("rgba to gray: %w", err)
	}

	edges := gocv.NewMat()
	defer edges.Close()

	if err := gocv.Canny(gray, &edges, e.low, e.high); err != nil {
		return gocv.NewMat(), fmt.Errorf("canny: %w", err)
	}

	return grayToRGBA(edges)
}

func (e *EdgeDetector) GetName() string {
	return "Canny Edges"
}

func (e *EdgeDetector) GetDescription() string {
	return fmt.Sprintf("Canny edge map, hysteresis %.0f/%.0f", e.low, e.high)
}
