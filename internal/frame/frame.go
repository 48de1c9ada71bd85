// Frame types shared by the conversion and transform stages
package frame

import (
	"fmt"
	"image"
)

// Channels is the number of interleaved bytes per RGBA pixel.
const Channels = 4

// maxDimension bounds width and height, matching the image size limit used
// when validating Mats.
const maxDimension = 16384

// RawFrame is a borrowed view over a caller-owned NV21 buffer: a full
// resolution Y plane followed by an interleaved V/U plane at half resolution.
// The view is valid for one call only and must not be retained.
type RawFrame struct {
	Data   []byte
	Width  int
	Height int
}

// NewRawFrame wraps data without copying and validates its layout.
func NewRawFrame(data []byte, width, height int) (*RawFrame, error) {
	raw := &RawFrame{Data: data, Width: width, Height: height}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}

// NV21Size returns the byte length of an NV21 frame of the given size.
func NV21Size(width, height int) int {
	return width*height + width*height/2
}

// Validate checks dimensions and buffer length.
func (r *RawFrame) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return &InvalidInputError{Width: r.Width, Height: r.Height, Got: len(r.Data), Reason: "dimensions must be positive"}
	}
	if r.Width%2 != 0 || r.Height%2 != 0 {
		return &InvalidInputError{Width: r.Width, Height: r.Height, Got: len(r.Data), Reason: "dimensions must be even"}
	}
	if r.Width > maxDimension || r.Height > maxDimension {
		return &InvalidInputError{Width: r.Width, Height: r.Height, Got: len(r.Data),
			Reason: fmt.Sprintf("dimensions exceed %d", maxDimension)}
	}
	want := NV21Size(r.Width, r.Height)
	if len(r.Data) != want {
		return &InvalidInputError{Width: r.Width, Height: r.Height, Got: len(r.Data), Want: want,
			Reason: "buffer length does not match NV21 layout"}
	}
	return nil
}

// Luma returns the Y plane.
func (r *RawFrame) Luma() []byte {
	return r.Data[:r.Width*r.Height]
}

// Chroma returns the interleaved V/U plane.
func (r *RawFrame) Chroma() []byte {
	return r.Data[r.Width*r.Height:]
}

// RGBAFrame is an owned, row-major RGBA buffer.
type RGBAFrame struct {
	Pix    []byte
	Width  int
	Height int
}

// NewRGBAFrame allocates a zeroed frame.
func NewRGBAFrame(width, height int) *RGBAFrame {
	return &RGBAFrame{
		Pix:    make([]byte, width*height*Channels),
		Width:  width,
		Height: height,
	}
}

// Stride is the byte length of one row.
func (f *RGBAFrame) Stride() int {
	return f.Width * Channels
}

// Clone returns a deep copy.
func (f *RGBAFrame) Clone() *RGBAFrame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return &RGBAFrame{Pix: pix, Width: f.Width, Height: f.Height}
}

// Image exposes the frame as an image.RGBA sharing the same pixels.
func (f *RGBAFrame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Stride(),
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// At returns the four channels of pixel (x, y).
func (f *RGBAFrame) At(x, y int) (r, g, b, a byte) {
	i := y*f.Stride() + x*Channels
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}
