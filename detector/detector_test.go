package detector

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	pigo "github.com/esimov/pigo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDetectorRejectsGarbage(t *testing.T) {
	_, err := NewDetector([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCascade)

	_, err = NewDetector(nil)
	assert.ErrorIs(t, err, ErrCascade)
}

func TestStrongestPicksBestAboveThreshold(t *testing.T) {
	dets := []pigo.Detection{
		{Row: 10, Col: 10, Scale: 20, Q: 3},
		{Row: 50, Col: 60, Scale: 40, Q: 9},
		{Row: 30, Col: 30, Scale: 30, Q: 7},
	}
	best, ok := strongest(dets, 5)
	require.True(t, ok)
	assert.Equal(t, float32(9), best.Q)

	_, ok = strongest(dets, 10)
	assert.False(t, ok)
	_, ok = strongest(nil, 0)
	assert.False(t, ok)
}

func TestFaceRect(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)
	r := faceRect(pigo.Detection{Row: 50, Col: 100, Scale: 40}, bounds)
	assert.Equal(t, image.Rect(80, 30, 120, 70), r)

	// clipped at the frame edge
	r = faceRect(pigo.Detection{Row: 10, Col: 10, Scale: 40}, bounds)
	assert.Equal(t, image.Rect(0, 0, 30, 30), r)
}

func TestGrayscaleLayout(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.White)
	gray := grayscale(img)
	require.Len(t, gray, 6)
	assert.Equal(t, uint8(0xff), gray[5])
	assert.Equal(t, uint8(0), gray[0])
}

type fixedLocator struct {
	r  image.Rectangle
	ok bool
}

func (f fixedLocator) Strongest(image.Image) (image.Rectangle, bool) { return f.r, f.ok }

type stillSource struct{ img image.Image }

func (s stillSource) Frame() (image.Image, error) { return s.img, nil }

func TestFaceCrop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	crop := NewFaceCrop(stillSource{img}, fixedLocator{r: image.Rect(100, 100, 200, 200), ok: true})
	out, err := crop.Frame()
	require.NoError(t, err)
	assert.Equal(t, 150, out.Bounds().Dx())
	assert.Equal(t, 150, out.Bounds().Dy())

	pass := NewFaceCrop(stillSource{img}, fixedLocator{})
	out, err = pass.Frame()
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())
}
