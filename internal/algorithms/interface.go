// Mode-dispatched pixel transforms over RGBA frames
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"realtime-edge-detector/internal/frame"
)

// Algorithm is a single pixel transform. Apply must not modify input and
// must return a CV_8UC4 Mat of the same size; the caller closes it.
type Algorithm interface {
	Apply(input gocv.Mat) (gocv.Mat, error)
	GetName() string
	GetDescription() string
}

var algorithms = make(map[Mode]Algorithm)

func Register(mode Mode, algorithm Algorithm) {
	algorithms[mode] = algorithm
}

// Get returns the algorithm for mode, falling back to edge detection.
func Get(mode Mode) Algorithm {
	if algorithm, exists := algorithms[mode]; exists {
		return algorithm
	}
	return algorithms[ModeEdges]
}

// ApplyMat runs the algorithm for mode directly on a Mat.
func ApplyMat(mode Mode, input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}
	if input.Channels() != frame.Channels {
		return gocv.NewMat(), fmt.Errorf("expected %d channels, got %d", frame.Channels, input.Channels())
	}
	return Get(mode).Apply(input)
}

// Transform applies mode to rgba and returns a new frame of identical size.
func Transform(rgba *frame.RGBAFrame, mode Mode) (*frame.RGBAFrame, error) {
	if rgba == nil {
		return nil, fmt.Errorf("transform: nil frame")
	}

	input, err := rgba.ToMat()
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", mode, err)
	}
	defer input.Close()

	output, err := ApplyMat(mode, input)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", mode, err)
	}
	defer output.Close()

	out, err := frame.FromMat(output)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", mode, err)
	}
	return out, nil
}

func init() {
	Register(ModeEdges, NewEdgeDetector())
	Register(ModeGrayscale, NewGrayscale())
	Register(ModeInvert, NewInvert())
	Register(ModeBlur, NewGaussianFilter())
}
