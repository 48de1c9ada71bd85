package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nv21(width, height int, luma, chroma byte) []byte {
	buf := make([]byte, NV21Size(width, height))
	for i := 0; i < width*height; i++ {
		buf[i] = luma
	}
	for i := width * height; i < len(buf); i++ {
		buf[i] = chroma
	}
	return buf
}

func TestConvertBlackFrame(t *testing.T) {
	raw, err := NewRawFrame(nv21(4, 4, 0, 128), 4, 4)
	require.NoError(t, err)

	out, err := NewConverter().Convert(raw)
	require.NoError(t, err)
	require.Len(t, out.Pix, 4*4*Channels)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			r, g, b, a := out.At(x, y)
			assert.Equal(t, [4]byte{0, 0, 0, 255}, [4]byte{r, g, b, a}, "pixel %d,%d", x, y)
		}
	}
}

func TestConvertAlphaIsOpaque(t *testing.T) {
	data := make([]byte, NV21Size(16, 8))
	for i := range data {
		data[i] = byte(i * 7)
	}
	out, err := NewConverter().Convert(&RawFrame{Data: data, Width: 16, Height: 8})
	require.NoError(t, err)

	for i := 3; i < len(out.Pix); i += Channels {
		require.Equal(t, byte(255), out.Pix[i])
	}
}

func TestConvertIsDeterministicAndDoesNotMutateInput(t *testing.T) {
	data := make([]byte, NV21Size(8, 6))
	for i := range data {
		data[i] = byte(i * 31)
	}
	orig := append([]byte(nil), data...)

	c := NewConverter()
	a, err := c.Convert(&RawFrame{Data: data, Width: 8, Height: 6})
	require.NoError(t, err)
	b, err := c.Convert(&RawFrame{Data: data, Width: 8, Height: 6})
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a.Pix, b.Pix))
	assert.Equal(t, orig, data)
}

func TestConvertRejectsMismatchedBuffer(t *testing.T) {
	_, err := NewConverter().Convert(&RawFrame{Data: make([]byte, 10), Width: 4, Height: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewConverter().Convert(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestMatRoundTrip(t *testing.T) {
	f := NewRGBAFrame(3, 2)
	for i := range f.Pix {
		f.Pix[i] = byte(i)
	}

	mat, err := f.ToMat()
	require.NoError(t, err)
	defer mat.Close()

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, f.Pix, back.Pix)
	assert.Equal(t, 3, back.Width)
	assert.Equal(t, 2, back.Height)
}
