// Package adjust applies optional tone corrections to frames before they are
// rasterized.
package adjust

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/esimov/ascii-cam/config"
	"github.com/esimov/ascii-cam/raster"
)

// Source wraps a FrameSource and adjusts every frame it returns.
type Source struct {
	src raster.FrameSource
	cfg config.Adjust
}

// Wrap returns src unchanged when cfg is the identity adjustment.
func Wrap(src raster.FrameSource, cfg config.Adjust) raster.FrameSource {
	if IsIdentity(cfg) {
		return src
	}
	return &Source{src: src, cfg: cfg}
}

// IsIdentity reports whether cfg leaves frames untouched.
func IsIdentity(cfg config.Adjust) bool {
	return (cfg.Gamma == 0 || cfg.Gamma == 1) && cfg.Brightness == 0 && cfg.Contrast == 0
}

// Frame returns the adjusted current frame.
func (s *Source) Frame() (image.Image, error) {
	img, err := s.src.Frame()
	if err != nil || img == nil {
		return img, err
	}
	return Apply(img, s.cfg), nil
}

// Apply runs gamma, brightness and contrast corrections in that order.
func Apply(img image.Image, cfg config.Adjust) image.Image {
	if cfg.Gamma != 0 && cfg.Gamma != 1 {
		img = imaging.AdjustGamma(img, cfg.Gamma)
	}
	if cfg.Brightness != 0 {
		img = imaging.AdjustBrightness(img, cfg.Brightness)
	}
	if cfg.Contrast != 0 {
		img = imaging.AdjustContrast(img, cfg.Contrast)
	}
	return img
}
