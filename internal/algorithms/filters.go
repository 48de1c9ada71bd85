// Color and smoothing filters
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Grayscale collapses RGBA to perceptual luma and broadcasts it back.
type Grayscale struct{}

// NewGrayscale creates a grayscale transform
func NewGrayscale() *Grayscale {
	return &Grayscale{}
}

func (g *Grayscale) Apply(input gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()

	if err := gocv.CvtColor(input, &gray, gocv.ColorRGBAToGray); err != nil {
		return gocv.NewMat(), fmt.Errorf("rgba to gray: %w", err)
	}

	return grayToRGBA(gray)
}

func (g *Grayscale) GetName() string {
	return "Grayscale"
}

func (g *Grayscale) GetDescription() string {
	return "Perceptual luminance broadcast to all color channels"
}

// Invert complements every byte, alpha included.
type Invert struct{}

// NewInvert creates an inversion transform
func NewInvert() *Invert {
	return &Invert{}
}

func (i *Invert) Apply(input gocv.Mat) (gocv.Mat, error) {
	output := gocv.NewMat()
	if err := gocv.BitwiseNot(input, &output); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("bitwise not: %w", err)
	}
	return output, nil
}

func (i *Invert) GetName() string {
	return "Invert"
}

func (i *Invert) GetDescription() string {
	return "Bitwise complement of every channel; alpha becomes 0"
}

// GaussianKernelSize is the fixed blur kernel edge length.
const GaussianKernelSize = 15

// GaussianFilter implements the fixed 15x15 Gaussian blur
type GaussianFilter struct {
	kernelSize int
}

// NewGaussianFilter creates a new Gaussian filter
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{kernelSize: GaussianKernelSize}
}

func (g *GaussianFilter) Apply(input gocv.Mat) (gocv.Mat, error) {
	output := gocv.NewMat()
	// sigma 0 lets OpenCV derive sigma from the kernel size. BorderDefault
	// (reflect-101) is kept so output is bit-exact with OpenCV defaults.
	ksize := image.Pt(g.kernelSize, g.kernelSize)
	if err := gocv.GaussianBlur(input, &output, ksize, 0, 0, gocv.BorderDefault); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("gaussian blur: %w", err)
	}
	return output, nil
}

func (g *GaussianFilter) GetName() string {
	return "Gaussian Filter"
}

func (g *GaussianFilter) GetDescription() string {
	return fmt.Sprintf("Gaussian blur, %dx%d kernel, sigma derived from size", g.kernelSize, g.kernelSize)
}

// grayToRGBA broadcasts a single-channel Mat to four channels with alpha 255.
func grayToRGBA(gray gocv.Mat) (gocv.Mat, error) {
	output := gocv.NewMat()
	// gray->BGRA and gray->RGBA are the same broadcast
	if err := gocv.CvtColor(gray, &output, gocv.ColorGrayToBGRA); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("gray to rgba: %w", err)
	}
	return output, nil
}
