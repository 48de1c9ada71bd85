package gui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/capture"
	"realtime-edge-detector/internal/frame"
	"realtime-edge-detector/nativelib"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	session := nativelib.NewSession(nativelib.WithLogger(logger))
	src, err := capture.NewTestPattern(16, 8)
	require.NoError(t, err)
	loop := capture.NewLoop(src, session.Processor(), capture.LoopConfig{FPS: 30}, logger)

	return NewApplication(test.NewApp(), session, loop, t.TempDir(), logger)
}

func TestModeSelectUpdatesSession(t *testing.T) {
	a := newTestApplication(t)
	assert.Equal(t, "edges", a.modeSelect.Selected)

	a.modeSelect.SetSelected("blur")
	assert.Equal(t, algorithms.ModeBlur, a.session.State().Mode())

	a.modeSelect.SetSelected("grayscale")
	assert.Equal(t, int32(1), a.session.State().RawMode())
}

func TestApplyFrameUpdatesCanvasAndStatus(t *testing.T) {
	a := newTestApplication(t)

	f := frame.NewRGBAFrame(16, 8)
	a.session.State().RecordDuration(3.5)
	a.applyFrame(&capture.Result{Mode: algorithms.ModeInvert, Frame: f, Timestamp: time.Now()})

	assert.True(t, strings.Contains(a.statusBar.Text(), "invert"))
	assert.True(t, strings.Contains(a.statusBar.Text(), "3.50 ms"))
	assert.Equal(t, 16, a.canvas.Current().Bounds().Dx())

	// alpha 0 pixels are shown opaque
	_, _, _, alpha := a.canvas.Current().At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), alpha)
}

func TestSaveSnapshot(t *testing.T) {
	a := newTestApplication(t)

	_, err := a.SaveSnapshot()
	assert.Error(t, err)

	f := frame.NewRGBAFrame(16, 8)
	a.latest.Set(f, algorithms.ModeGrayscale)

	path, err := a.SaveSnapshot()
	require.NoError(t, err)
	assert.Equal(t, a.snapshotDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "snapshot-grayscale-"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestUnknownInitialModeIsPreserved(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	session := nativelib.NewSession(nativelib.WithInitialMode(99))
	src, err := capture.NewTestPattern(4, 4)
	require.NoError(t, err)
	loop := capture.NewLoop(src, session.Processor(), capture.LoopConfig{}, logger)

	a := NewApplication(test.NewApp(), session, loop, t.TempDir(), logger)
	assert.Equal(t, "edges", a.modeSelect.Selected)
	assert.Equal(t, int32(99), session.State().RawMode())
}
