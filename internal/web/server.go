// Package web serves the frame processor over HTTP and streams processed
// frames to browser viewers over websocket.
package web

import (
	"embed"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/capture"
	"realtime-edge-detector/internal/core"
	"realtime-edge-detector/internal/frame"
	imgio "realtime-edge-detector/internal/io"
	"realtime-edge-detector/internal/metrics"
	"realtime-edge-detector/nativelib"
)

//go:embed static
var staticFiles embed.FS

// Config configures the server.
type Config struct {
	Addr        string
	JPEGQuality int
	// BodyLimit caps uploaded NV21 frames in bytes.
	BodyLimit int
}

// DefaultConfig listens on :8090 and accepts frames up to 4K.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8090",
		JPEGQuality: imgio.DefaultJPEGQuality,
		BodyLimit:   frame.NV21Size(3840, 2160),
	}
}

// Server is the HTTP host for one processing session.
type Server struct {
	app      *fiber.App
	config   Config
	session  *nativelib.Session
	latest   *core.LatestFrame
	recorder *metrics.Recorder
	frames   *Hub
	logger   *logrus.Logger
}

// NewServer wires routes for session. The hub is started by Start.
func NewServer(cfg Config, session *nativelib.Session, recorder *metrics.Recorder, logger *logrus.Logger) *Server {
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = imgio.DefaultJPEGQuality
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultConfig().BodyLimit
	}
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	s := &Server{
		config:   cfg,
		session:  session,
		latest:   core.NewLatestFrame(),
		recorder: recorder,
		frames:   NewHub("frames", logger),
		logger:   logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "rted",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/modes", s.handleModes)
	api.Put("/mode", s.handleSetMode)
	api.Post("/frame", s.handleProcessFrame)
	api.Get("/snapshot.jpg", s.handleSnapshot)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFiles),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Latest returns the holder of the most recently published frame.
func (s *Server) Latest() *core.LatestFrame {
	return s.latest
}

// Start runs the hub and blocks serving HTTP.
func (s *Server) Start() error {
	go s.frames.Run()
	s.logger.WithField("addr", s.config.Addr).Info("Web server listening")
	return s.app.Listen(s.config.Addr)
}

// Shutdown stops the HTTP server and disconnects viewers.
func (s *Server) Shutdown() error {
	s.frames.Close()
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

// Publish records a capture loop result and streams it to viewers.
func (s *Server) Publish(res *capture.Result) {
	s.latest.Set(res.Frame, res.Mode)
	s.recorder.Observe(res.Timestamp, res.DurationMs(), res.Frame.Width, res.Frame.Height)

	if s.frames.ClientCount() == 0 {
		return
	}
	data, err := imgio.EncodeJPEG(res.Frame, s.config.JPEGQuality)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode frame for viewers")
		return
	}
	s.frames.Broadcast(data)
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Mode     int32           `json:"mode"`
	ModeName string          `json:"mode_name"`
	LastMs   float64         `json:"last_ms"`
	Viewers  int             `json:"viewers"`
	Metrics  metrics.Summary `json:"metrics"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	snap := s.session.State().Snapshot()
	return c.JSON(StatusResponse{
		Mode:     snap.RawMode,
		ModeName: snap.Mode.String(),
		LastMs:   snap.LastDurationMs,
		Viewers:  s.frames.ClientCount(),
		Metrics:  s.recorder.Summary(),
	})
}

// ModeInfo describes one selectable mode.
type ModeInfo struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleModes(c *fiber.Ctx) error {
	modes := make([]ModeInfo, 0, len(algorithms.Modes))
	for _, m := range algorithms.Modes {
		modes = append(modes, ModeInfo{
			ID:          int32(m),
			Name:        m.String(),
			Description: algorithms.Get(m).GetDescription(),
		})
	}
	return c.JSON(modes)
}

// SetModeRequest is the body of PUT /api/mode.
type SetModeRequest struct {
	Mode *int32 `json:"mode"`
}

func (s *Server) handleSetMode(c *fiber.Ctx) error {
	var req SetModeRequest
	if err := c.BodyParser(&req); err != nil || req.Mode == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be {\"mode\": <int>}",
		})
	}

	s.session.SetMode(*req.Mode)
	return c.JSON(fiber.Map{
		"mode":      *req.Mode,
		"mode_name": algorithms.ResolveMode(*req.Mode).String(),
	})
}

func (s *Server) handleProcessFrame(c *fiber.Ctx) error {
	width := c.QueryInt("width", 0)
	height := c.QueryInt("height", 0)
	format := c.Query("format", "rgba")

	// the request body is only borrowed for this call
	raw := &frame.RawFrame{Data: c.Body(), Width: width, Height: height}
	res, err := s.session.Processor().ProcessFrame(raw)
	if err != nil {
		s.recorder.ObserveError()
		status := fiber.StatusInternalServerError
		if errors.Is(err, frame.ErrInvalidInput) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	s.recorder.Observe(time.Now(), res.DurationMs(), width, height)

	c.Set("X-Processing-Ms", strconv.FormatFloat(res.DurationMs(), 'f', 3, 64))
	c.Set("X-Mode", res.Mode.String())

	switch format {
	case "rgba":
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
		return c.Send(res.Frame.Pix)
	case "png":
		data, err := imgio.EncodePNG(res.Frame)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(data)
	case "jpeg", "jpg":
		data, err := imgio.EncodeJPEG(res.Frame, s.config.JPEGQuality)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, "image/jpeg")
		return c.Send(data)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "format must be one of rgba, png, jpeg",
		})
	}
}

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	f, _, ok := s.latest.Get()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no frame processed yet"})
	}
	data, err := imgio.EncodeJPEG(f, s.config.JPEGQuality)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}

func (s *Server) handleFramesWS(conn *websocket.Conn) {
	NewClient(s.frames, conn).Serve()
}
