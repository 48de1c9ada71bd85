package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/frame"
)

func TestLatestFrame(t *testing.T) {
	lf := NewLatestFrame()
	assert.False(t, lf.HasFrame())

	_, _, ok := lf.Get()
	assert.False(t, ok)

	f := frame.NewRGBAFrame(4, 2)
	f.Pix[0] = 1
	lf.Set(f, algorithms.ModeInvert)
	f.Pix[0] = 2

	got, meta, ok := lf.Get()
	require.True(t, ok)
	assert.Equal(t, byte(1), got.Pix[0])
	assert.Equal(t, 4, meta.Width)
	assert.Equal(t, algorithms.ModeInvert, meta.Mode)
	assert.Equal(t, uint64(1), meta.Sequence)

	lf.Set(f, algorithms.ModeBlur)
	assert.Equal(t, uint64(2), lf.GetMetadata().Sequence)

	lf.Clear()
	assert.False(t, lf.HasFrame())
	assert.Equal(t, FrameMetadata{}, lf.GetMetadata())
}
