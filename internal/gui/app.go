// Desktop viewer: live processed frames with mode selection
package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/capture"
	"realtime-edge-detector/internal/core"
	imgio "realtime-edge-detector/internal/io"
	"realtime-edge-detector/internal/metrics"
	"realtime-edge-detector/nativelib"
)

// Application is the viewer window bound to one processing session.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *logrus.Logger

	session  *nativelib.Session
	loop     *capture.Loop
	latest   *core.LatestFrame
	recorder *metrics.Recorder
	loader   *imgio.ImageLoader

	snapshotDir string

	canvas     *FrameCanvas
	modeSelect *widget.Select
	statusBar  *StatusBar
}

func NewApplication(app fyne.App, session *nativelib.Session, loop *capture.Loop, snapshotDir string, logger *logrus.Logger) *Application {
	window := app.NewWindow("rted - realtime frame transforms")
	window.Resize(fyne.NewSize(960, 720))
	window.CenterOnScreen()

	a := &Application{
		app:         app,
		window:      window,
		logger:      logger,
		session:     session,
		loop:        loop,
		latest:      core.NewLatestFrame(),
		recorder:    metrics.NewRecorder(),
		loader:      imgio.NewImageLoader(logger),
		snapshotDir: snapshotDir,
	}

	a.initializeGUI()
	a.setupLayout()
	return a
}

func (a *Application) initializeGUI() {
	a.canvas = NewFrameCanvas()
	a.statusBar = NewStatusBar()

	names := make([]string, 0, len(algorithms.Modes))
	for _, m := range algorithms.Modes {
		names = append(names, m.String())
	}
	// select the resolved mode before wiring the callback so an unknown raw
	// mode stored in the session is not overwritten at startup
	a.modeSelect = widget.NewSelect(names, nil)
	a.modeSelect.SetSelected(a.session.State().Mode().String())
	a.modeSelect.OnChanged = a.onModeSelected
}

func (a *Application) setupLayout() {
	snapshot := widget.NewButton("Snapshot", func() {
		path, err := a.SaveSnapshot()
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.statusBar.SetMessage(fmt.Sprintf("Saved %s", path))
	})

	toolbar := container.NewHBox(widget.NewLabel("Mode"), a.modeSelect, snapshot)
	content := container.NewBorder(toolbar, a.statusBar.GetContainer(), nil, nil, a.canvas.GetContainer())
	a.window.SetContent(content)
}

func (a *Application) onModeSelected(name string) {
	mode, err := algorithms.ParseModeName(name)
	if err != nil {
		a.logger.WithError(err).Warn("Unknown mode selected")
		return
	}
	a.session.SetMode(int32(mode))
	a.logger.WithField("mode", name).Info("Mode selected")
}

// ShowAndRun starts the capture loop and blocks until the window closes.
func (a *Application) ShowAndRun() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	a.loop.OnError(func(err error) {
		fyne.Do(func() {
			a.statusBar.SetMessage(fmt.Sprintf("Frame error: %v", err))
		})
	})

	go func() {
		defer close(done)
		if err := a.loop.Run(ctx, a.publish); err != nil {
			a.logger.WithError(err).Error("Capture loop failed")
			fyne.Do(func() {
				dialog.ShowError(err, a.window)
			})
		}
	}()

	a.window.SetOnClosed(func() {
		cancel()
		<-done
	})
	a.window.ShowAndRun()
	cancel()
}

// publish runs on the capture goroutine.
func (a *Application) publish(res *capture.Result) {
	a.latest.Set(res.Frame, res.Mode)
	a.recorder.Observe(res.Timestamp, res.DurationMs(), res.Frame.Width, res.Frame.Height)
	fyne.Do(func() {
		a.applyFrame(res)
	})
}

// applyFrame must run on the UI goroutine.
func (a *Application) applyFrame(res *capture.Result) {
	a.canvas.Update(res.Frame)
	a.statusBar.Update(a.session.GetLastProcessingMs(), a.recorder.Summary(), res.Mode)
}

// SaveSnapshot writes the latest processed frame as PNG.
func (a *Application) SaveSnapshot() (string, error) {
	f, meta, ok := a.latest.Get()
	if !ok {
		return "", fmt.Errorf("no frame to save yet")
	}
	name := fmt.Sprintf("snapshot-%s-%d.png", meta.Mode, time.Now().UnixMilli())
	path := filepath.Join(a.snapshotDir, name)
	if err := a.loader.SaveRGBA(path, f); err != nil {
		return "", err
	}
	return path, nil
}
