package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"realtime-edge-detector/internal/frame"
)

// Camera reads BGR frames from a local video device and repacks them as NV21.
type Camera struct {
	mu     sync.Mutex
	device *gocv.VideoCapture
	buffer gocv.Mat
	id     int
	width  int
	height int
	closed bool
	logger *logrus.Logger
}

// OpenCamera opens device id. Width and height are requested from the
// driver; the actual size is reported by Size.
func OpenCamera(id, width, height int, logger *logrus.Logger) (*Camera, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	device, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("open camera %d: device not opened", id)
	}

	if width > 0 && height > 0 {
		device.Set(gocv.VideoCaptureFrameWidth, float64(width))
		device.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	actualW := int(device.Get(gocv.VideoCaptureFrameWidth)) &^ 1
	actualH := int(device.Get(gocv.VideoCaptureFrameHeight)) &^ 1

	logger.WithFields(logrus.Fields{
		"device": id,
		"width":  actualW,
		"height": actualH,
	}).Info("Camera opened")

	return &Camera{
		device: device,
		buffer: gocv.NewMat(),
		id:     id,
		width:  actualW,
		height: actualH,
		logger: logger,
	}, nil
}

func (c *Camera) Read(ctx context.Context) (*frame.RawFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrSourceClosed
	}
	if ok := c.device.Read(&c.buffer); !ok || c.buffer.Empty() {
		return nil, fmt.Errorf("camera %d: %w", c.id, ErrReadFailed)
	}

	raw, err := BGRToNV21(c.buffer)
	if err != nil {
		return nil, fmt.Errorf("camera %d: %w", c.id, err)
	}
	c.width, c.height = raw.Width, raw.Height
	return raw, nil
}

func (c *Camera) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.buffer.Close()
	if err := c.device.Close(); err != nil {
		return fmt.Errorf("close camera %d: %w", c.id, err)
	}
	c.logger.WithField("device", c.id).Info("Camera closed")
	return nil
}
