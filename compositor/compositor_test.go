package compositor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/ascii-cam/glyph"
	"github.com/esimov/ascii-cam/raster"
)

func fill(w, h int, r, g, b uint8) *raster.FrameBuffer {
	fb := raster.NewFrameBuffer(w, h)
	for i := 0; i < len(fb.Pix); i += 4 {
		fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3] = r, g, b, 0xff
	}
	return fb
}

func newCompositor(t *testing.T, tbl glyph.Table, tint TintSource) *Compositor {
	t.Helper()
	m, err := glyph.NewMapper(tbl)
	require.NoError(t, err)
	return New(m, tint)
}

func TestComposeDimensions(t *testing.T) {
	c := newCompositor(t, glyph.DefaultTable, TintGray)
	f, err := c.Compose(fill(192, 64, 10, 10, 10), nil)
	require.NoError(t, err)

	assert.Equal(t, 64, f.Height())
	assert.Equal(t, 192, f.Width())
	for _, row := range f.Rows {
		assert.Len(t, row, 192)
	}
	assert.Equal(t, 64, strings.Count(f.Markup(), "<div>"))
	assert.Equal(t, 192*64, strings.Count(f.Markup(), "<span "))
}

func TestMarkupFormat(t *testing.T) {
	c := newCompositor(t, glyph.Table{{"x"}}, TintGray)
	f, err := c.Compose(fill(2, 1, 0, 0, 0), nil)
	require.NoError(t, err)

	want := `<div><span style="color: rgb(30, -30, -30);">x</span>` +
		`<span style="color: rgb(30, -30, -30);">x</span></div>`
	assert.Equal(t, want, f.Markup())
}

func TestMarkupEscapesGlyphs(t *testing.T) {
	c := newCompositor(t, glyph.Table{{"&"}, {"<"}}, TintGray)
	f, err := c.Compose(fill(1, 1, 0, 0, 0), nil)
	require.NoError(t, err)
	assert.Contains(t, f.Markup(), ">&amp;</span>")

	f, err = c.Compose(fill(1, 1, 255, 255, 255), nil)
	require.NoError(t, err)
	assert.Contains(t, f.Markup(), ">&lt;</span>")
}

func TestComposeRowOrder(t *testing.T) {
	gray := fill(3, 2, 0, 0, 0)
	for x := 0; x < 3; x++ {
		o := gray.Offset(x, 1)
		gray.Pix[o], gray.Pix[o+1], gray.Pix[o+2] = 255, 255, 255
	}
	c := newCompositor(t, glyph.Table{{"."}, {"#"}}, TintGray)
	f, err := c.Compose(gray, nil)
	require.NoError(t, err)
	assert.Equal(t, "...\n###\n", f.Text())
}

func TestTintFromColorBuffer(t *testing.T) {
	c := newCompositor(t, glyph.DefaultTable, TintColor)
	f, err := c.Compose(fill(4, 4, 128, 128, 128), fill(4, 4, 200, 100, 50))
	require.NoError(t, err)

	for _, row := range f.Rows {
		for _, cell := range row {
			assert.Equal(t, "$", cell.Glyph)
			assert.Equal(t, glyph.Tint{R: 230, G: 70, B: 20}, cell.Tint)
		}
	}
}

func TestTintColorFallsBackToGray(t *testing.T) {
	c := newCompositor(t, glyph.DefaultTable, TintColor)
	f, err := c.Compose(fill(2, 2, 128, 128, 128), nil)
	require.NoError(t, err)
	assert.Equal(t, glyph.Tint{R: 158, G: 98, B: 98}, f.Rows[1][1].Tint)
}

func TestComposeSizeMismatch(t *testing.T) {
	c := newCompositor(t, glyph.DefaultTable, TintColor)
	_, err := c.Compose(fill(2, 2, 0, 0, 0), fill(3, 2, 0, 0, 0))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestMemorySurfaceReplaces(t *testing.T) {
	c := newCompositor(t, glyph.Table{{"a"}, {"b"}}, TintGray)
	var s MemorySurface

	f1, err := c.Compose(fill(2, 2, 0, 0, 0), nil)
	require.NoError(t, err)
	require.NoError(t, s.Present(f1))
	f2, err := c.Compose(fill(2, 2, 255, 255, 255), nil)
	require.NoError(t, err)
	require.NoError(t, s.Present(f2))

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, f2.Markup(), s.Markup())
	assert.NotContains(t, s.Markup(), ">a<")
	assert.Same(t, f2, s.Frame())
}
