// Package raster draws video frames onto the low resolution sampling grid and
// copies the result back into CPU memory.
//
// Render targets follow the GPU convention: storage row 0 is the bottom of the
// drawn quad. The fragment stage samples the texture at (u, 1-v) and the video
// texture is uploaded flipped, so after the bottom-up read back the first row
// of a FrameBuffer is the top row of the camera picture.
package raster

import (
	"errors"
	"image"
)

// Mode selects what the fragment stage writes.
type Mode int

const (
	// Grayscale writes the mean of R, G and B into all three channels.
	Grayscale Mode = iota
	// Color writes the sampled color unchanged.
	Color
)

func (m Mode) String() string {
	switch m {
	case Grayscale:
		return "grayscale"
	case Color:
		return "color"
	default:
		return "unknown"
	}
}

var (
	// ErrContextUnavailable is returned when no rendering context can be created.
	ErrContextUnavailable = errors.New("rendering context unavailable")
	// ErrShaderCompile is returned when the shader program fails to build.
	ErrShaderCompile = errors.New("shader compilation failed")
	// ErrReadback is returned when the render target cannot be copied.
	ErrReadback = errors.New("pixel readback failed")
	// ErrNoFrame is returned when the source has no frame to draw yet.
	ErrNoFrame = errors.New("no video frame available")
)

// Target is an off-screen render target sized to the sampling grid.
type Target interface {
	Size() (w, h int)
	// ReadPixels copies the target into dst, RGBA, in storage row order.
	ReadPixels(dst []byte) error
}

// Rasterizer draws video frames into its Target. Upload takes a snapshot of
// the current frame; every Render until the next Upload draws that snapshot,
// so the passes of one tick all see the same picture.
type Rasterizer interface {
	Upload() error
	Render(mode Mode) error
	Target() Target
	Close() error
}

// FrameSource hands out the current frame of a video source.
type FrameSource interface {
	Frame() (image.Image, error)
}
