package io

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-detector/internal/frame"
)

func TestLoadNV21(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.nv21")
	data := make([]byte, frame.NV21Size(8, 4))
	require.NoError(t, os.WriteFile(path, data, 0o644))

	il := NewImageLoader(nil)
	raw, err := il.LoadNV21(path, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, 8, raw.Width)
	assert.Len(t, raw.Data, 48)

	_, err = il.LoadNV21(path, 16, 16)
	assert.True(t, errors.Is(err, frame.ErrInvalidInput))

	_, err = il.LoadNV21(filepath.Join(dir, "missing.nv21"), 8, 4)
	assert.Error(t, err)
}

func TestSaveNV21RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.nv21")
	data := make([]byte, frame.NV21Size(4, 4))
	data[3] = 9

	il := NewImageLoader(nil)
	require.NoError(t, il.SaveNV21(path, &frame.RawFrame{Data: data, Width: 4, Height: 4}))

	raw, err := il.LoadNV21(path, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, data, raw.Data)

	assert.Error(t, il.SaveNV21(path, &frame.RawFrame{Data: data[:5], Width: 4, Height: 4}))
}

func colorFrame() *frame.RGBAFrame {
	f := frame.NewRGBAFrame(4, 3)
	for i := 0; i < len(f.Pix); i += frame.Channels {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = 200, 10, 30, 255
	}
	return f
}

func TestEncodePNGKeepsChannelOrder(t *testing.T) {
	data, err := EncodePNG(colorFrame())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(200), r>>8)
	assert.Equal(t, uint32(10), g>>8)
	assert.Equal(t, uint32(30), b>>8)
	assert.Equal(t, uint32(255), a>>8)
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(colorFrame(), DefaultJPEGQuality)
	require.NoError(t, err)
	require.Greater(t, len(data), 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	_, err = EncodeJPEG(nil, DefaultJPEGQuality)
	assert.Error(t, err)
}

func TestSaveRGBA(t *testing.T) {
	dir := t.TempDir()
	il := NewImageLoader(nil)

	path := filepath.Join(dir, "snap.png")
	require.NoError(t, il.SaveRGBA(path, colorFrame()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, il.SaveRGBA(filepath.Join(dir, "snap.gif"), colorFrame()))
	assert.Error(t, il.SaveRGBA(path, nil))
}
