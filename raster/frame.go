package raster

import "fmt"

// FrameBuffer is one read back of the render target: Width*Height RGBA
// quadruples, row-major, row 0 being the top of the picture.
type FrameBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrameBuffer allocates a zeroed buffer for a w x h grid.
func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
	}
}

// Offset returns the index of the first byte of pixel (x, y).
func (fb *FrameBuffer) Offset(x, y int) int {
	return (y*fb.Width + x) * 4
}

// At returns the RGBA bytes of pixel (x, y).
func (fb *FrameBuffer) At(x, y int) (r, g, b, a uint8) {
	i := fb.Offset(x, y)
	return fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3]
}

// SameSize reports whether both buffers cover the same grid.
func (fb *FrameBuffer) SameSize(o *FrameBuffer) bool {
	return fb.Width == o.Width && fb.Height == o.Height
}

func (fb *FrameBuffer) String() string {
	return fmt.Sprintf("FrameBuffer(%dx%d)", fb.Width, fb.Height)
}
