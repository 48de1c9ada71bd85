package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/core"
	"realtime-edge-detector/internal/frame"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestTestPattern(t *testing.T) {
	_, err := NewTestPattern(3, 4)
	assert.Error(t, err)

	p, err := NewTestPattern(16, 8)
	require.NoError(t, err)

	w, h := p.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)

	a, err := p.Read(context.Background())
	require.NoError(t, err)
	b, err := p.Read(context.Background())
	require.NoError(t, err)
	assert.NoError(t, a.Validate())
	assert.NotEqual(t, a.Data, b.Data, "box moves between frames")
	assert.Equal(t, PatternNV21(16, 8, 0), a.Data)

	require.NoError(t, p.Close())
	_, err = p.Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestLoopProcessesFrames(t *testing.T) {
	src, err := NewTestPattern(32, 16)
	require.NoError(t, err)

	state := core.NewState()
	state.SetMode(int32(algorithms.ModeGrayscale))
	loop := NewLoop(src, core.NewProcessor(state, nil), LoopConfig{FPS: 200}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var results []*Result
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(r *Result) {
			mu.Lock()
			results = append(results, r)
			n := len(results)
			mu.Unlock()
			if n == 5 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(results), 5)
	for i, r := range results[:5] {
		assert.Equal(t, uint64(i), r.Seq)
		assert.Equal(t, algorithms.ModeGrayscale, r.Mode)
		assert.Len(t, r.Frame.Pix, 32*16*frame.Channels)
		assert.GreaterOrEqual(t, r.DurationMs(), 0.0)
	}
	assert.NotEqual(t, results[0].ID, results[1].ID)
	assert.Greater(t, state.LastDurationMs(), -1.0)
}

type failingSource struct {
	calls int
}

func (f *failingSource) Read(ctx context.Context) (*frame.RawFrame, error) {
	f.calls++
	return &frame.RawFrame{Data: make([]byte, 3), Width: 4, Height: 4}, nil
}

func (f *failingSource) Size() (int, int) { return 4, 4 }
func (f *failingSource) Close() error     { return nil }

func TestLoopStopsAfterConsecutiveErrors(t *testing.T) {
	src := &failingSource{}
	loop := NewLoop(src, core.NewProcessor(core.NewState(), nil),
		LoopConfig{FPS: 500, MaxConsecutiveErrors: 3}, quietLogger())

	var reported []error
	loop.OnError(func(err error) { reported = append(reported, err) })

	err := loop.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, frame.ErrInvalidInput))
	assert.Len(t, reported, 3)
	assert.Equal(t, 3, src.calls)
}

func TestLoopReturnsOnClosedSource(t *testing.T) {
	src, err := NewTestPattern(4, 4)
	require.NoError(t, err)
	require.NoError(t, src.Close())

	loop := NewLoop(src, core.NewProcessor(core.NewState(), nil), LoopConfig{FPS: 500}, quietLogger())
	err = loop.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestTickInterval(t *testing.T) {
	assert.Equal(t, time.Second/30, tickInterval(30))
	assert.Equal(t, 5*time.Millisecond, tickInterval(200))
	assert.Equal(t, minTickInterval, tickInterval(1e10))
	assert.Equal(t, minTickInterval, tickInterval(1e300))
}

func TestLoopRunsWithHugeFPS(t *testing.T) {
	src := &failingSource{}
	loop := NewLoop(src, core.NewProcessor(core.NewState(), nil),
		LoopConfig{FPS: 1e12, MaxConsecutiveErrors: 2}, quietLogger())

	var err error
	require.NotPanics(t, func() {
		err = loop.Run(context.Background(), nil)
	})
	assert.ErrorIs(t, err, frame.ErrInvalidInput)
	assert.Equal(t, 2, src.calls)
}
