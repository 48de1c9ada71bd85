// Package nativelib is the host-callable frame processing surface.
//
// A host creates one Session and calls ProcessFrame from any number of
// goroutines. SetMode and GetLastProcessingMs may be called concurrently
// with frame processing. The nv21 buffer passed to ProcessFrame is borrowed
// for the duration of the call; the host must not mutate it until the call
// returns. The returned slice is owned by the caller.
package nativelib

import (
	"io"

	"github.com/sirupsen/logrus"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/core"
	"realtime-edge-detector/internal/frame"
)

// Mode values accepted by SetMode.
const (
	ModeEdges     int32 = int32(algorithms.ModeEdges)
	ModeGrayscale int32 = int32(algorithms.ModeGrayscale)
	ModeInvert    int32 = int32(algorithms.ModeInvert)
	ModeBlur      int32 = int32(algorithms.ModeBlur)
)

// ErrInvalidInput is returned (wrapped) when the buffer size does not match
// width*height*3/2 or the dimensions are not positive and even.
var ErrInvalidInput = frame.ErrInvalidInput

// InvalidInputError carries the offending dimensions and sizes.
type InvalidInputError = frame.InvalidInputError

// Session owns the processing state for one host.
type Session struct {
	state     *core.State
	processor *core.Processor
	logger    *logrus.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithInitialMode sets the mode before the first frame.
func WithInitialMode(mode int32) Option {
	return func(s *Session) {
		s.state.SetMode(mode)
	}
}

// NewSession creates a session in edge mode with no recorded duration.
func NewSession(opts ...Option) *Session {
	s := &Session{state: core.NewState()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
		s.logger.SetOutput(io.Discard)
	}
	s.processor = core.NewProcessor(s.state, s.logger)
	return s
}

// ProcessFrame converts an NV21 frame, applies the active mode and returns
// width*height*4 RGBA bytes.
func (s *Session) ProcessFrame(nv21 []byte, width, height int32) ([]byte, error) {
	raw := &frame.RawFrame{Data: nv21, Width: int(width), Height: int(height)}
	return s.processor.Process(raw)
}

// SetMode stores mode verbatim; values other than 0..3 behave as edges.
func (s *Session) SetMode(mode int32) {
	s.state.SetMode(mode)
	s.logger.WithFields(logrus.Fields{
		"raw_mode": mode,
		"mode":     algorithms.ResolveMode(mode).String(),
	}).Debug("Mode changed")
}

// GetLastProcessingMs returns the duration of the most recent successful
// ProcessFrame call in milliseconds, or 0 if none has completed.
func (s *Session) GetLastProcessingMs() float64 {
	return s.state.LastDurationMs()
}

// State exposes the session state for host-side components.
func (s *Session) State() *core.State {
	return s.state
}

// Processor exposes the session processor for host-side components.
func (s *Session) Processor() *core.Processor {
	return s.processor
}
