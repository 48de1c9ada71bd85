package frame

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Converter turns NV21 camera frames into RGBA.
type Converter struct{}

// NewConverter creates a converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert produces a width*height RGBA frame with opaque alpha. The raw
// buffer is read only for the duration of the call.
func (c *Converter) Convert(raw *RawFrame) (*RGBAFrame, error) {
	if raw == nil {
		return nil, &InvalidInputError{Reason: "nil frame"}
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	// NV21 is addressed by OpenCV as a single-channel Mat of height*3/2 rows.
	yuv, err := gocv.NewMatFromBytes(raw.Height+raw.Height/2, raw.Width, gocv.MatTypeCV8UC1, raw.Data)
	if err != nil {
		return nil, fmt.Errorf("wrap nv21 buffer: %w", err)
	}
	defer yuv.Close()

	rgba := gocv.NewMat()
	defer rgba.Close()

	if err := gocv.CvtColor(yuv, &rgba, gocv.ColorYUVToRGBANV21); err != nil {
		return nil, fmt.Errorf("convert nv21 to rgba: %w", err)
	}

	return FromMat(rgba)
}

// FromMat copies a 4-channel 8-bit Mat into an owned RGBAFrame.
func FromMat(mat gocv.Mat) (*RGBAFrame, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("mat is empty")
	}
	if mat.Channels() != Channels {
		return nil, fmt.Errorf("unsupported channel count: %d", mat.Channels())
	}
	return &RGBAFrame{
		Pix:    mat.ToBytes(),
		Width:  mat.Cols(),
		Height: mat.Rows(),
	}, nil
}

// ToMat copies the frame into a new CV_8UC4 Mat. The caller must Close it.
func (f *RGBAFrame) ToMat() (gocv.Mat, error) {
	if len(f.Pix) != f.Width*f.Height*Channels {
		return gocv.NewMat(), fmt.Errorf("rgba buffer is %d bytes, want %d", len(f.Pix), f.Width*f.Height*Channels)
	}
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC4, pix)
}
