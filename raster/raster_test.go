package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	img image.Image
	err error
}

func (s staticSource) Frame() (image.Image, error) {
	return s.img, s.err
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func render(t *testing.T, img image.Image, w, h int, mode Mode) *FrameBuffer {
	t.Helper()
	r, err := NewCPU(staticSource{img: img}, w, h)
	require.NoError(t, err)
	require.NoError(t, r.Upload())
	require.NoError(t, r.Render(mode))
	fb, err := NewReader(w, h).Read(r.Target())
	require.NoError(t, err)
	return fb
}

func TestGrayscaleChannelsEqual(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 8), B: uint8(x + y), A: 0xff})
		}
	}
	fb := render(t, img, 32, 16, Grayscale)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b, a := fb.At(x, y)
			require.Equal(t, r, g, "pixel %d,%d", x, y)
			require.Equal(t, g, b, "pixel %d,%d", x, y)
			require.Equal(t, uint8(0xff), a)
		}
	}
}

func TestGrayscaleIsChannelMean(t *testing.T) {
	fb := render(t, solid(8, 8, color.RGBA{R: 90, G: 30, B: 0, A: 0xff}), 4, 4, Grayscale)
	r, g, b, _ := fb.At(1, 1)
	assert.Equal(t, uint8(40), r)
	assert.Equal(t, uint8(40), g)
	assert.Equal(t, uint8(40), b)
}

func TestColorModePassesThrough(t *testing.T) {
	fb := render(t, solid(8, 8, color.RGBA{R: 200, G: 100, B: 50, A: 0xff}), 4, 4, Color)
	r, g, b, _ := fb.At(3, 3)
	assert.Equal(t, []uint8{200, 100, 50}, []uint8{r, g, b})
}

func TestGridSizeIndependentOfSource(t *testing.T) {
	for _, size := range []image.Point{{640, 480}, {1920, 1080}, {100, 400}, {3, 2}} {
		fb := render(t, solid(size.X, size.Y, color.White), 192, 64, Grayscale)
		assert.Equal(t, 192, fb.Width)
		assert.Equal(t, 64, fb.Height)
		assert.Len(t, fb.Pix, 192*64*4)
	}
}

func TestTopRowMarkerStaysOnTop(t *testing.T) {
	const w, h = 16, 8
	img := solid(w, h, color.Black)
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.White)
	}
	fb := render(t, img, w, h, Grayscale)

	top, _, _, _ := fb.At(w/2, 0)
	bottom, _, _, _ := fb.At(w/2, h-1)
	assert.Equal(t, uint8(0xff), top)
	assert.Equal(t, uint8(0), bottom)
}

func TestTopRowMarkerDownscaled(t *testing.T) {
	img := solid(192*4, 64*4, color.Black)
	draw.Draw(img, image.Rect(0, 0, 192*4, 4), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	fb := render(t, img, 192, 64, Grayscale)

	top, _, _, _ := fb.At(96, 0)
	bottom, _, _, _ := fb.At(96, 63)
	assert.Greater(t, top, uint8(100))
	assert.Equal(t, uint8(0), bottom)
}

func TestRenderSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	r, err := NewCPU(staticSource{err: boom}, 4, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Upload(), boom)

	r, err = NewCPU(staticSource{}, 4, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Upload(), ErrNoFrame)
	assert.ErrorIs(t, r.Render(Grayscale), ErrNoFrame, "nothing uploaded yet")

	_, err = NewCPU(staticSource{}, 0, 4)
	assert.ErrorIs(t, err, ErrContextUnavailable)
}

type shortTarget struct{}

func (shortTarget) Size() (int, int) { return 2, 2 }
func (shortTarget) ReadPixels([]byte) error { return errors.New("lost context") }

func TestReaderErrors(t *testing.T) {
	_, err := NewReader(4, 4).Read(shortTarget{})
	assert.ErrorIs(t, err, ErrReadback)

	_, err = NewReader(2, 2).Read(shortTarget{})
	assert.ErrorIs(t, err, ErrReadback)
	assert.Contains(t, err.Error(), "lost context")
}

func TestReaderSnapshot(t *testing.T) {
	r, err := NewCPU(staticSource{img: solid(4, 4, color.White)}, 4, 4)
	require.NoError(t, err)
	require.NoError(t, r.Upload())
	require.NoError(t, r.Render(Grayscale))
	fb, err := NewReader(4, 4).Read(r.Target())
	require.NoError(t, err)

	r.src = staticSource{img: solid(4, 4, color.Black)}
	require.NoError(t, r.Upload())
	require.NoError(t, r.Render(Grayscale))

	v, _, _, _ := fb.At(0, 0)
	assert.Equal(t, uint8(0xff), v, "earlier snapshot must not change")
}

// flipSource returns black and white frames in turn.
type flipSource struct{ calls int }

func (f *flipSource) Frame() (image.Image, error) {
	f.calls++
	if f.calls%2 == 1 {
		return solid(4, 4, color.Black), nil
	}
	return solid(4, 4, color.White), nil
}

func TestPassesShareUpload(t *testing.T) {
	src := &flipSource{}
	r, err := NewCPU(src, 4, 4)
	require.NoError(t, err)
	require.NoError(t, r.Upload())

	reader := NewReader(4, 4)
	require.NoError(t, r.Render(Grayscale))
	gray, err := reader.Read(r.Target())
	require.NoError(t, err)
	require.NoError(t, r.Render(Color))
	col, err := reader.Read(r.Target())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	g, _, _, _ := gray.At(0, 0)
	c, _, _, _ := col.At(0, 0)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), c)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "grayscale", Grayscale.String())
	assert.Equal(t, "color", Color.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
