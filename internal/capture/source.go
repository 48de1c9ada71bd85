// Package capture produces NV21 frames the way a host camera loop would and
// drives them through a frame processor.
package capture

import (
	"context"
	"errors"

	"realtime-edge-detector/internal/frame"
)

var (
	// ErrSourceClosed is returned by Read after Close.
	ErrSourceClosed = errors.New("capture: source closed")

	// ErrReadFailed is returned when the device yields no frame.
	ErrReadFailed = errors.New("capture: read failed")
)

// Source yields NV21 frames.
//
// Read blocks until a frame is available or ctx is done. Each returned
// RawFrame owns its buffer. Close is idempotent.
type Source interface {
	Read(ctx context.Context) (*frame.RawFrame, error)
	Size() (width, height int)
	Close() error
}
