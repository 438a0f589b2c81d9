package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// CPU is a software Rasterizer. It reproduces the GPU pass: the frame is
// scaled to the grid with a linear filter, uploaded as a Y-flipped texture and
// shaded into a bottom-up target.
type CPU struct {
	src    FrameSource
	tex    *image.NRGBA
	target *cpuTarget
}

// NewCPU returns a rasterizer drawing frames of src onto a w x h grid.
func NewCPU(src FrameSource, w, h int) (*CPU, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: invalid grid %dx%d", ErrContextUnavailable, w, h)
	}
	return &CPU{
		src: src,
		target: &cpuTarget{
			w:   w,
			h:   h,
			pix: make([]byte, w*h*4),
		},
	}, nil
}

// Upload pulls the current frame from the source and keeps it as the
// texture for the following passes.
func (c *CPU) Upload() error {
	frame, err := c.src.Frame()
	if err != nil {
		return err
	}
	if frame == nil || frame.Bounds().Empty() {
		return ErrNoFrame
	}
	c.tex = c.upload(frame)
	return nil
}

// Render draws the last uploaded frame into the target.
func (c *CPU) Render(mode Mode) error {
	tex := c.tex
	if tex == nil {
		return ErrNoFrame
	}

	w, h := c.target.w, c.target.h
	for j := 0; j < h; j++ {
		v := (float64(j) + 0.5) / float64(h)
		for i := 0; i < w; i++ {
			u := (float64(i) + 0.5) / float64(w)
			r, g, b := shade(tex, u, v, mode)
			o := (j*w + i) * 4
			c.target.pix[o+0] = r
			c.target.pix[o+1] = g
			c.target.pix[o+2] = b
			c.target.pix[o+3] = 0xff
		}
	}
	return nil
}

// Target returns the off-screen target.
func (c *CPU) Target() Target {
	return c.target
}

// Close releases nothing; it exists to satisfy Rasterizer.
func (c *CPU) Close() error {
	return nil
}

// upload scales the frame to the grid and flips it so that texture row 0 is
// the bottom of the picture.
func (c *CPU) upload(frame image.Image) *image.NRGBA {
	scaled := resize.Resize(uint(c.target.w), uint(c.target.h), frame, resize.Bilinear)
	return imaging.FlipV(scaled)
}

// shade is the fragment stage. It samples the texture at (u, 1-v).
func shade(tex *image.NRGBA, u, v float64, mode Mode) (r, g, b uint8) {
	r, g, b = sample(tex, u, 1-v)
	if mode == Color {
		return r, g, b
	}
	avg := uint8(math.Round(float64(int(r)+int(g)+int(b)) / 3))
	return avg, avg, avg
}

// sample fetches the nearest texel; the texture already has the grid size so
// every fragment hits a texel center.
func sample(tex *image.NRGBA, u, t float64) (r, g, b uint8) {
	bounds := tex.Bounds()
	x := clampInt(int(u*float64(bounds.Dx())), 0, bounds.Dx()-1)
	y := clampInt(int(t*float64(bounds.Dy())), 0, bounds.Dy()-1)
	i := tex.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
	return tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type cpuTarget struct {
	w, h int
	pix  []byte
}

func (t *cpuTarget) Size() (int, int) {
	return t.w, t.h
}

func (t *cpuTarget) ReadPixels(dst []byte) error {
	if len(dst) < len(t.pix) {
		return fmt.Errorf("%w: buffer holds %d bytes, target has %d", ErrReadback, len(dst), len(t.pix))
	}
	copy(dst, t.pix)
	return nil
}
