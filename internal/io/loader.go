// Raw frame loading and processed frame encoding
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"realtime-edge-detector/internal/frame"
)

// DefaultJPEGQuality is used for streamed and snapshot JPEGs.
const DefaultJPEGQuality = 80

// ImageLoader reads raw NV21 captures and writes processed frames.
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageLoader{
		logger: logger,
	}
}

// LoadNV21 reads a raw NV21 dump of the given size.
func (il *ImageLoader) LoadNV21(path string, width, height int) (*frame.RawFrame, error) {
	il.logger.WithField("filepath", path).Debug("Loading NV21 frame")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nv21 file: %w", err)
	}

	raw, err := frame.NewRawFrame(data, width, height)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    width,
		"height":   height,
		"bytes":    len(data),
	}).Info("NV21 frame loaded")

	return raw, nil
}

// SaveNV21 writes a raw NV21 buffer after validating its layout.
func (il *ImageLoader) SaveNV21(path string, raw *frame.RawFrame) error {
	if err := raw.Validate(); err != nil {
		return err
	}
	if err := os.WriteFile(path, raw.Data, 0o644); err != nil {
		return fmt.Errorf("write nv21 file: %w", err)
	}
	il.logger.WithField("filepath", path).Debug("NV21 frame saved")
	return nil
}

// SaveRGBA writes f in the format implied by the file extension.
func (il *ImageLoader) SaveRGBA(path string, f *frame.RGBAFrame) error {
	il.logger.WithField("filepath", path).Debug("Saving frame")

	if f == nil || len(f.Pix) == 0 {
		return fmt.Errorf("cannot save empty frame")
	}
	if !il.isSupportedImageFormat(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	bgra, err := toBGRA(f)
	if err != nil {
		return err
	}
	defer bgra.Close()

	if ok := gocv.IMWrite(path, bgra); !ok {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    f.Width,
		"height":   f.Height,
	}).Info("Frame saved")

	return nil
}

func (il *ImageLoader) isSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range il.GetSupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif"}
}

// EncodeJPEG compresses f. JPEG has no alpha channel, so it is dropped.
func EncodeJPEG(f *frame.RGBAFrame, quality int) ([]byte, error) {
	return encode(f, gocv.JPEGFileExt, []int{int(gocv.IMWriteJpegQuality), quality})
}

// EncodePNG compresses f losslessly, alpha included.
func EncodePNG(f *frame.RGBAFrame) ([]byte, error) {
	return encode(f, gocv.PNGFileExt, nil)
}

func encode(f *frame.RGBAFrame, ext gocv.FileExt, params []int) ([]byte, error) {
	if f == nil || len(f.Pix) == 0 {
		return nil, fmt.Errorf("cannot encode empty frame")
	}

	bgra, err := toBGRA(f)
	if err != nil {
		return nil, err
	}
	defer bgra.Close()

	var buf *gocv.NativeByteBuffer
	if params != nil {
		buf, err = gocv.IMEncodeWithParams(ext, bgra, params)
	} else {
		buf, err = gocv.IMEncode(ext, bgra)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ext, err)
	}
	defer buf.Close()

	// copy out of native memory before the buffer is released
	native := buf.GetBytes()
	out := make([]byte, len(native))
	copy(out, native)
	return out, nil
}

// toBGRA converts an RGBA frame into the channel order OpenCV writers expect.
func toBGRA(f *frame.RGBAFrame) (gocv.Mat, error) {
	rgba, err := f.ToMat()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap frame: %w", err)
	}
	defer rgba.Close()

	bgra := gocv.NewMat()
	// R/B swap is symmetric
	if err := gocv.CvtColor(rgba, &bgra, gocv.ColorBGRAToRGBA); err != nil {
		bgra.Close()
		return gocv.NewMat(), fmt.Errorf("rgba to bgra: %w", err)
	}
	return bgra, nil
}
