package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/core"
	"realtime-edge-detector/internal/frame"
)

// Result is one processed frame handed to the sink.
type Result struct {
	ID        uuid.UUID
	Seq       uint64
	Timestamp time.Time
	Mode      algorithms.Mode
	Frame     *frame.RGBAFrame
	Duration  time.Duration
}

// DurationMs returns the processing duration in milliseconds.
func (r *Result) DurationMs() float64 {
	return float64(r.Duration.Nanoseconds()) / float64(time.Millisecond)
}

// Sink receives results in capture order on the loop goroutine.
type Sink func(*Result)

// ErrorHandler receives per-frame failures. The loop keeps running.
type ErrorHandler func(error)

// LoopConfig configures Loop.
type LoopConfig struct {
	FPS float64
	// MaxConsecutiveErrors stops the loop after this many failed reads in a
	// row; 0 means never.
	MaxConsecutiveErrors int
}

// Loop pulls frames from a source at a fixed rate and processes them.
type Loop struct {
	source    Source
	processor *core.Processor
	config    LoopConfig
	logger    *logrus.Logger
	onError   ErrorHandler
}

// NewLoop creates a loop. FPS defaults to 30.
func NewLoop(source Source, processor *core.Processor, cfg LoopConfig, logger *logrus.Logger) *Loop {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loop{
		source:    source,
		processor: processor,
		config:    cfg,
		logger:    logger,
	}
}

// OnError installs a per-frame error callback.
func (l *Loop) OnError(fn ErrorHandler) {
	l.onError = fn
}

// Run blocks until ctx is cancelled, the source closes, or too many
// consecutive errors occur. Cancellation returns nil.
func (l *Loop) Run(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(tickInterval(l.config.FPS))
	defer ticker.Stop()

	width, height := l.source.Size()
	l.logger.WithFields(logrus.Fields{
		"fps":    l.config.FPS,
		"width":  width,
		"height": height,
	}).Info("Capture loop started")

	var seq uint64
	failures := 0

	for {
		select {
		case <-ctx.Done():
			l.logger.WithField("frames", seq).Info("Capture loop stopped")
			return nil
		case <-ticker.C:
		}

		err := l.step(ctx, seq, sink)
		switch {
		case err == nil:
			seq++
			failures = 0
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case errors.Is(err, ErrSourceClosed):
			return err
		default:
			failures++
			l.logger.WithError(err).Warn("Frame failed")
			if l.onError != nil {
				l.onError(err)
			}
			if l.config.MaxConsecutiveErrors > 0 && failures >= l.config.MaxConsecutiveErrors {
				return fmt.Errorf("capture loop: %d consecutive failures: %w", failures, err)
			}
		}
	}
}

func (l *Loop) step(ctx context.Context, seq uint64, sink Sink) error {
	raw, err := l.source.Read(ctx)
	if err != nil {
		return err
	}

	res, err := l.processor.ProcessFrame(raw)
	if err != nil {
		return err
	}

	if sink != nil {
		sink(&Result{
			ID:        uuid.New(),
			Seq:       seq,
			Timestamp: time.Now(),
			Mode:      res.Mode,
			Frame:     res.Frame,
			Duration:  res.Duration,
		})
	}
	return nil
}

// minTickInterval bounds the ticker period; time.NewTicker panics on a
// non-positive duration, which huge FPS values would otherwise produce.
const minTickInterval = time.Millisecond

func tickInterval(fps float64) time.Duration {
	interval := time.Duration(float64(time.Second) / fps)
	if interval < minTickInterval {
		return minTickInterval
	}
	return interval
}
