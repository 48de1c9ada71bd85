// Throughput metrics for the processing loop
package metrics

import (
	"sync"
	"time"
)

// FrameRate counts frames in one-second windows. Rate reports the count of
// the last completed window.
type FrameRate struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
	rate        int
}

// NewFrameRate creates an idle counter.
func NewFrameRate() *FrameRate {
	return &FrameRate{}
}

// Tick records one frame at now.
func (fr *FrameRate) Tick(now time.Time) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if fr.windowStart.IsZero() {
		fr.windowStart = now
	}
	fr.count++

	if elapsed := now.Sub(fr.windowStart); elapsed >= time.Second {
		fr.rate = fr.count
		fr.count = 0
		fr.windowStart = now
		// a gap of several seconds means no frames arrived in between
		if elapsed >= 2*time.Second {
			fr.rate = 0
		}
	}
}

// Rate returns frames counted in the last completed window.
func (fr *FrameRate) Rate() int {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return fr.rate
}

// Summary is a snapshot of Recorder values.
type Summary struct {
	Frames     uint64  `json:"frames"`
	Errors     uint64  `json:"errors"`
	LastMs     float64 `json:"last_ms"`
	MeanMs     float64 `json:"mean_ms"`
	MaxMs      float64 `json:"max_ms"`
	FPS        int     `json:"fps"`
	LastWidth  int     `json:"width"`
	LastHeight int     `json:"height"`
}

// Recorder aggregates per-frame durations across the process lifetime.
type Recorder struct {
	mu      sync.Mutex
	fps     *FrameRate
	frames  uint64
	errors  uint64
	totalMs float64
	lastMs  float64
	maxMs   float64
	width   int
	height  int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{fps: NewFrameRate()}
}

// Observe records a processed frame.
func (r *Recorder) Observe(now time.Time, durationMs float64, width, height int) {
	r.fps.Tick(now)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.totalMs += durationMs
	r.lastMs = durationMs
	if durationMs > r.maxMs {
		r.maxMs = durationMs
	}
	r.width = width
	r.height = height
}

// ObserveError counts a failed frame.
func (r *Recorder) ObserveError() {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()
}

// Summary returns a consistent snapshot.
func (r *Recorder) Summary() Summary {
	fps := r.fps.Rate()

	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Frames:     r.frames,
		Errors:     r.errors,
		LastMs:     r.lastMs,
		MaxMs:      r.maxMs,
		FPS:        fps,
		LastWidth:  r.width,
		LastHeight: r.height,
	}
	if r.frames > 0 {
		s.MeanMs = r.totalMs / float64(r.frames)
	}
	return s
}
