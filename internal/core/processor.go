package core

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/frame"
)

// Tracker is the state capability the processor needs: read the mode once
// per frame and record the measured duration.
type Tracker interface {
	Mode() algorithms.Mode
	RecordDuration(ms float64)
}

// Result describes one processed frame.
type Result struct {
	Frame    *frame.RGBAFrame
	Mode     algorithms.Mode
	Duration time.Duration
}

// DurationMs returns the processing time in fractional milliseconds.
func (r *Result) DurationMs() float64 {
	return durationMs(r.Duration)
}

// Processor converts NV21 frames and applies the active mode. It holds no
// per-call state, so one Processor serves concurrent callers.
type Processor struct {
	tracker   Tracker
	converter *frame.Converter
	logger    *logrus.Logger
	now       func() time.Time
}

// NewProcessor creates a processor bound to tracker. A nil logger discards.
func NewProcessor(tracker Tracker, logger *logrus.Logger) *Processor {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Processor{
		tracker:   tracker,
		converter: frame.NewConverter(),
		logger:    logger,
		now:       time.Now,
	}
}

// Process runs conversion then transform and returns the RGBA bytes. The
// duration is recorded only when both stages succeed.
func (p *Processor) Process(raw *frame.RawFrame) ([]byte, error) {
	res, err := p.ProcessFrame(raw)
	if err != nil {
		return nil, err
	}
	return res.Frame.Pix, nil
}

// ProcessFrame is Process with the mode used and the measured duration.
func (p *Processor) ProcessFrame(raw *frame.RawFrame) (*Result, error) {
	start := p.now()

	rgba, err := p.converter.Convert(raw)
	if err != nil {
		return nil, fmt.Errorf("process frame: %w", err)
	}

	// mode is read once; a concurrent SetMode affects only later frames
	mode := p.tracker.Mode()

	out, err := algorithms.Transform(rgba, mode)
	if err != nil {
		return nil, fmt.Errorf("process frame: %w", err)
	}

	elapsed := p.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	p.tracker.RecordDuration(durationMs(elapsed))

	if p.logger.IsLevelEnabled(logrus.DebugLevel) {
		p.logger.WithFields(logrus.Fields{
			"width":       raw.Width,
			"height":      raw.Height,
			"mode":        mode.String(),
			"duration_ms": durationMs(elapsed),
		}).Debug("Frame processed")
	}

	return &Result{Frame: out, Mode: mode, Duration: elapsed}, nil
}

func durationMs(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}
