// Package compositor assembles mapped glyphs into a frame of tinted text and
// hands it to an output surface.
package compositor

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/esimov/ascii-cam/glyph"
	"github.com/esimov/ascii-cam/raster"
)

// TintSource picks the buffer the glyph colors are sampled from.
type TintSource int

const (
	// TintColor samples the tint from the undesaturated frame.
	TintColor TintSource = iota
	// TintGray samples the tint from the grayscale frame.
	TintGray
)

// ErrSizeMismatch is returned when the grayscale and color buffers differ.
var ErrSizeMismatch = errors.New("frame buffers differ in size")

// Cell is one rendered grid position.
type Cell struct {
	Glyph string
	Tint  glyph.Tint
}

// Row is a grid row, left to right.
type Row []Cell

// Frame is a complete rendered grid, top row first.
type Frame struct {
	Rows []Row
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	if len(f.Rows) == 0 {
		return 0
	}
	return len(f.Rows[0])
}

// Height returns the number of rows.
func (f *Frame) Height() int {
	return len(f.Rows)
}

// Markup renders the frame as one <div> per row holding one colored <span>
// per cell.
func (f *Frame) Markup() string {
	var sb strings.Builder
	sb.Grow(f.Height() * f.Width() * 48)
	for _, row := range f.Rows {
		sb.WriteString("<div>")
		for _, c := range row {
			fmt.Fprintf(&sb, `<span style="color: %s;">%s</span>`, c.Tint.CSS(), html.EscapeString(c.Glyph))
		}
		sb.WriteString("</div>")
	}
	return sb.String()
}

// Text returns the glyphs only, one line per row.
func (f *Frame) Text() string {
	var sb strings.Builder
	for _, row := range f.Rows {
		for _, c := range row {
			sb.WriteString(c.Glyph)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Surface is the visible output region. Present replaces its whole content.
type Surface interface {
	Present(f *Frame) error
}

// Compositor maps frame buffers into Frames.
type Compositor struct {
	mapper *glyph.Mapper
	tint   TintSource
}

// New returns a Compositor using m for glyph lookup.
func New(m *glyph.Mapper, tint TintSource) *Compositor {
	return &Compositor{mapper: m, tint: tint}
}

// TintSource reports where glyph colors come from.
func (c *Compositor) TintSource() TintSource {
	return c.tint
}

// Compose maps every cell of gray. Tints come from color when the compositor
// samples colors and color is not nil, from gray otherwise.
func (c *Compositor) Compose(gray, color *raster.FrameBuffer) (*Frame, error) {
	tintBuf := gray
	if c.tint == TintColor && color != nil {
		if !gray.SameSize(color) {
			return nil, fmt.Errorf("%w: %s vs %s", ErrSizeMismatch, gray, color)
		}
		tintBuf = color
	}

	frame := &Frame{Rows: make([]Row, gray.Height)}
	for y := 0; y < gray.Height; y++ {
		row := make(Row, gray.Width)
		for x := 0; x < gray.Width; x++ {
			r, g, b, _ := gray.At(x, y)
			tr, tg, tb, _ := tintBuf.At(x, y)
			row[x].Glyph, row[x].Tint = c.mapper.Pixel(r, g, b, tr, tg, tb)
		}
		frame.Rows[y] = row
	}
	return frame, nil
}

// MemorySurface keeps the markup of the last presented frame.
type MemorySurface struct {
	mu     sync.Mutex
	frame  *Frame
	markup string
	count  int
}

// Present replaces the stored content.
func (m *MemorySurface) Present(f *Frame) error {
	markup := f.Markup()
	m.mu.Lock()
	m.frame, m.markup = f, markup
	m.count++
	m.mu.Unlock()
	return nil
}

// Markup returns the current content.
func (m *MemorySurface) Markup() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markup
}

// Frame returns the last presented frame.
func (m *MemorySurface) Frame() *Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// Count returns how many frames were presented.
func (m *MemorySurface) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
