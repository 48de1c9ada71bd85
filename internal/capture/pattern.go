package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	"realtime-edge-detector/internal/frame"
)

// TestPattern generates deterministic NV21 frames: a horizontal luma ramp
// with a bright box that moves one step per frame, on neutral chroma.
type TestPattern struct {
	mu     sync.Mutex
	width  int
	height int
	seq    int
	closed bool
}

// NewTestPattern creates a pattern source. Dimensions must be positive and even.
func NewTestPattern(width, height int) (*TestPattern, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("test pattern size must be positive and even, got %dx%d", width, height)
	}
	return &TestPattern{width: width, height: height}, nil
}

func (p *TestPattern) Read(ctx context.Context) (*frame.RawFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrSourceClosed
	}
	seq := p.seq
	p.seq++
	p.mu.Unlock()

	return &frame.RawFrame{
		Data:   PatternNV21(p.width, p.height, seq),
		Width:  p.width,
		Height: p.height,
	}, nil
}

func (p *TestPattern) Size() (int, int) {
	return p.width, p.height
}

func (p *TestPattern) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// PatternNV21 renders frame seq of the test pattern.
func PatternNV21(width, height, seq int) []byte {
	buf := make([]byte, frame.NV21Size(width, height))

	box := width / 4
	if box < 1 {
		box = 1
	}
	x0 := (seq * 2) % width
	y0 := (height - box) / 2

	for y := 0; y < height; y++ {
		row := buf[y*width : (y+1)*width]
		for x := range row {
			row[x] = byte(16 + x*128/width)
			if x >= x0 && x < x0+box && y >= y0 && y < y0+box {
				row[x] = 235
			}
		}
	}
	for i := width * height; i < len(buf); i++ {
		buf[i] = 128
	}
	return buf
}

func imageRect(width, height int) image.Rectangle {
	return image.Rect(0, 0, width, height)
}
