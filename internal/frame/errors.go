package frame

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("frame: invalid input")

// InvalidInputError reports a raw buffer that does not match its declared
// dimensions. The check runs before any pixel is read.
type InvalidInputError struct {
	Width  int
	Height int
	Got    int
	Want   int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("frame: invalid input %dx%d: %s (got %d bytes, want %d)",
			e.Width, e.Height, e.Reason, e.Got, e.Want)
	}
	return fmt.Sprintf("frame: invalid input %dx%d: %s", e.Width, e.Height, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}
