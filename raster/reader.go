package raster

import (
	"errors"
	"fmt"
)

// Reader copies render targets into FrameBuffers.
type Reader struct {
	width, height int
}

// NewReader returns a Reader for a w x h grid.
func NewReader(w, h int) *Reader {
	return &Reader{width: w, height: h}
}

// Read blocks until the whole target has been copied. The returned buffer is a
// snapshot of the last rendered frame and is owned by the caller.
func (r *Reader) Read(t Target) (*FrameBuffer, error) {
	w, h := t.Size()
	if w != r.width || h != r.height {
		return nil, fmt.Errorf("%w: target is %dx%d, grid is %dx%d", ErrReadback, w, h, r.width, r.height)
	}
	fb := NewFrameBuffer(w, h)
	if err := t.ReadPixels(fb.Pix); err != nil {
		if errors.Is(err, ErrReadback) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrReadback, err)
	}
	return fb, nil
}
