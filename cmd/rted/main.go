// rted runs the NV21 frame transform pipeline as a web service, a desktop
// viewer, or a one-shot file converter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"realtime-edge-detector/internal/capture"
	"realtime-edge-detector/internal/frame"
	"realtime-edge-detector/internal/gui"
	imgio "realtime-edge-detector/internal/io"
	"realtime-edge-detector/internal/metrics"
	"realtime-edge-detector/internal/web"
	"realtime-edge-detector/nativelib"
)

const (
	AppName    = "rted"
	AppID      = "com.example.rted"
	AppVersion = "1.0.0"
)

type config struct {
	debug       bool
	mode        int
	listen      string
	camera      int
	width       int
	height      int
	fps         float64
	in          string
	out         string
	viewer      bool
	snapshotDir string
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.BoolVar(&cfg.debug, "debug", false, "Enable debug mode with verbose logging")
	fs.IntVar(&cfg.mode, "mode", 0, "Initial mode: 0 edges, 1 grayscale, 2 invert, 3 blur")
	fs.StringVar(&cfg.listen, "listen", ":8090", "Web server listen address")
	fs.IntVar(&cfg.camera, "camera", -1, "Camera device id, -1 for the synthetic test pattern")
	fs.IntVar(&cfg.width, "width", 640, "Frame width (test pattern, camera request, or -in file)")
	fs.IntVar(&cfg.height, "height", 480, "Frame height (test pattern, camera request, or -in file)")
	fs.Float64Var(&cfg.fps, "fps", 30, "Capture rate in frames per second")
	fs.StringVar(&cfg.in, "in", "", "Raw NV21 file to convert once")
	fs.StringVar(&cfg.out, "out", "out.png", "Output image for -in")
	fs.BoolVar(&cfg.viewer, "viewer", false, "Open the desktop viewer instead of the web server")
	fs.StringVar(&cfg.snapshotDir, "snapshots", ".", "Directory for viewer snapshots")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.fps <= 0 {
		return cfg, fmt.Errorf("fps must be positive, got %v", cfg.fps)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := initLogger(cfg.debug)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.debug,
		"mode":       cfg.mode,
	}).Info("Starting rted")

	session := nativelib.NewSession(
		nativelib.WithLogger(logger),
		nativelib.WithInitialMode(int32(cfg.mode)),
	)

	switch {
	case cfg.in != "":
		err = runOnce(cfg, session, logger)
	case cfg.viewer:
		err = runViewer(cfg, session, logger)
	default:
		err = runServer(cfg, session, logger)
	}

	if err != nil {
		logger.WithError(err).Error("rted failed")
		os.Exit(1)
	}
	logger.Info("Shutting down gracefully")
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

func runOnce(cfg config, session *nativelib.Session, logger *logrus.Logger) error {
	loader := imgio.NewImageLoader(logger)

	raw, err := loader.LoadNV21(cfg.in, cfg.width, cfg.height)
	if err != nil {
		return err
	}

	pix, err := session.ProcessFrame(raw.Data, int32(raw.Width), int32(raw.Height))
	if err != nil {
		return err
	}

	out := &frame.RGBAFrame{Pix: pix, Width: raw.Width, Height: raw.Height}
	if err := loader.SaveRGBA(cfg.out, out); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"in":          cfg.in,
		"out":         cfg.out,
		"duration_ms": session.GetLastProcessingMs(),
	}).Info("Frame converted")
	return nil
}

func openSource(cfg config, logger *logrus.Logger) (capture.Source, error) {
	if cfg.camera >= 0 {
		return capture.OpenCamera(cfg.camera, cfg.width, cfg.height, logger)
	}
	return capture.NewTestPattern(cfg.width, cfg.height)
}

func runViewer(cfg config, session *nativelib.Session, logger *logrus.Logger) error {
	source, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	loop := capture.NewLoop(source, session.Processor(), capture.LoopConfig{FPS: cfg.fps}, logger)

	viewerApp := app.NewWithID(AppID)
	gui.NewApplication(viewerApp, session, loop, cfg.snapshotDir, logger).ShowAndRun()
	return nil
}

func runServer(cfg config, session *nativelib.Session, logger *logrus.Logger) error {
	source, err := openSource(cfg, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	webCfg := web.DefaultConfig()
	webCfg.Addr = cfg.listen
	server := web.NewServer(webCfg, session, metrics.NewRecorder(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := capture.NewLoop(source, session.Processor(), capture.LoopConfig{
		FPS:                  cfg.fps,
		MaxConsecutiveErrors: 30,
	}, logger)

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx, server.Publish)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err = <-loopErr:
		if err != nil {
			logger.WithError(err).Error("Capture loop stopped")
		}
	case err = <-serveErr:
	}

	stop()
	if shutdownErr := server.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}
