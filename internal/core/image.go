package core

import (
	"sync"
	"time"

	"realtime-edge-detector/internal/algorithms"
	"realtime-edge-detector/internal/frame"
)

// LatestFrame holds the most recently displayed processed frame for
// viewers and snapshot requests.
type LatestFrame struct {
	mu       sync.RWMutex
	frame    *frame.RGBAFrame
	mode     algorithms.Mode
	sequence uint64
	updated  time.Time
}

// FrameMetadata describes the stored frame.
type FrameMetadata struct {
	Width    int
	Height   int
	Mode     algorithms.Mode
	Sequence uint64
	Updated  time.Time
}

// NewLatestFrame creates an empty holder.
func NewLatestFrame() *LatestFrame {
	return &LatestFrame{}
}

// Set stores a copy of f.
func (lf *LatestFrame) Set(f *frame.RGBAFrame, mode algorithms.Mode) {
	if f == nil {
		return
	}
	clone := f.Clone()

	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.frame = clone
	lf.mode = mode
	lf.sequence++
	lf.updated = time.Now()
}

// Get returns a copy of the stored frame, or false if none was set.
func (lf *LatestFrame) Get() (*frame.RGBAFrame, FrameMetadata, bool) {
	lf.mu.RLock()
	defer lf.mu.RUnlock()

	if lf.frame == nil {
		return nil, FrameMetadata{}, false
	}
	return lf.frame.Clone(), lf.metadataLocked(), true
}

// HasFrame reports whether a frame was stored.
func (lf *LatestFrame) HasFrame() bool {
	lf.mu.RLock()
	defer lf.mu.RUnlock()
	return lf.frame != nil
}

// GetMetadata returns metadata without copying pixels.
func (lf *LatestFrame) GetMetadata() FrameMetadata {
	lf.mu.RLock()
	defer lf.mu.RUnlock()
	if lf.frame == nil {
		return FrameMetadata{}
	}
	return lf.metadataLocked()
}

// Clear drops the stored frame.
func (lf *LatestFrame) Clear() {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.frame = nil
	lf.mode = algorithms.ModeEdges
}

func (lf *LatestFrame) metadataLocked() FrameMetadata {
	return FrameMetadata{
		Width:    lf.frame.Width,
		Height:   lf.frame.Height,
		Mode:     lf.mode,
		Sequence: lf.sequence,
		Updated:  lf.updated,
	}
}
