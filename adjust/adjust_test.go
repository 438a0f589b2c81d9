package adjust

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/ascii-cam/config"
)

type frameFunc func() (image.Image, error)

func (f frameFunc) Frame() (image.Image, error) { return f() }

func gray(v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: v, G: v, B: v, A: 0xff}}, image.Point{}, draw.Src)
	return img
}

func level(img image.Image) uint32 {
	r, _, _, _ := img.At(1, 1).RGBA()
	return r >> 8
}

func TestWrapIdentity(t *testing.T) {
	src := frameFunc(func() (image.Image, error) { return gray(100), nil })
	assert.True(t, IsIdentity(config.Default().Adjust))

	wrapped := Wrap(src, config.Default().Adjust)
	_, ok := wrapped.(*Source)
	assert.False(t, ok)
}

func TestBrightnessRaisesLevel(t *testing.T) {
	src := frameFunc(func() (image.Image, error) { return gray(100), nil })
	s := Wrap(src, config.Adjust{Gamma: 1, Brightness: 20})

	img, err := s.Frame()
	require.NoError(t, err)
	assert.Greater(t, level(img), uint32(100))
}

func TestContrastSpreadsLevels(t *testing.T) {
	dark := Apply(gray(60), config.Adjust{Contrast: 50})
	light := Apply(gray(200), config.Adjust{Contrast: 50})
	assert.Less(t, level(dark), uint32(60))
	assert.Greater(t, level(light), uint32(200))
}

func TestGammaDarkens(t *testing.T) {
	img := Apply(gray(128), config.Adjust{Gamma: 0.5})
	assert.Less(t, level(img), uint32(128))
}
