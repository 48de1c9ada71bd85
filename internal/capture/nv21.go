package capture

import (
	"fmt"

	"gocv.io/x/gocv"

	"realtime-edge-detector/internal/frame"
)

// I420ToNV21 repacks a planar Y,U,V buffer into NV21 (Y followed by
// interleaved V,U).
func I420ToNV21(i420 []byte, width, height int) ([]byte, error) {
	size := frame.NV21Size(width, height)
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 || len(i420) != size {
		return nil, &frame.InvalidInputError{Width: width, Height: height, Got: len(i420), Want: size,
			Reason: "i420 buffer does not match dimensions"}
	}

	lumaSize := width * height
	planeSize := lumaSize / 4
	u := i420[lumaSize : lumaSize+planeSize]
	v := i420[lumaSize+planeSize:]

	out := make([]byte, size)
	copy(out, i420[:lumaSize])

	chroma := out[lumaSize:]
	for i := 0; i < planeSize; i++ {
		chroma[2*i] = v[i]
		chroma[2*i+1] = u[i]
	}
	return out, nil
}

// BGRToNV21 converts a 3-channel BGR Mat, cropping odd edges so both
// dimensions are even.
func BGRToNV21(bgr gocv.Mat) (*frame.RawFrame, error) {
	if bgr.Empty() {
		return nil, fmt.Errorf("bgr frame is empty")
	}
	if bgr.Channels() != 3 {
		return nil, fmt.Errorf("expected 3 channels, got %d", bgr.Channels())
	}

	width, height := bgr.Cols()&^1, bgr.Rows()&^1
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("frame too small: %dx%d", bgr.Cols(), bgr.Rows())
	}

	src := bgr
	if width != bgr.Cols() || height != bgr.Rows() {
		cropped := bgr.Region(imageRect(width, height))
		defer cropped.Close()
		src = cropped.Clone()
		defer src.Close()
	}

	i420 := gocv.NewMat()
	defer i420.Close()

	if err := gocv.CvtColor(src, &i420, gocv.ColorBGRToYUVI420); err != nil {
		return nil, fmt.Errorf("bgr to i420: %w", err)
	}

	data, err := I420ToNV21(i420.ToBytes(), width, height)
	if err != nil {
		return nil, err
	}
	return &frame.RawFrame{Data: data, Width: width, Height: height}, nil
}
