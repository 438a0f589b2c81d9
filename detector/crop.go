package detector

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/esimov/ascii-cam/raster"
)

// facePad grows the detected box so hair and chin stay in the picture.
const facePad = 0.25

// Locator finds the region of interest in a frame.
type Locator interface {
	Strongest(img image.Image) (image.Rectangle, bool)
}

// FaceCrop wraps a FrameSource and crops each frame to the strongest face.
// Frames without a face pass through unchanged.
type FaceCrop struct {
	src raster.FrameSource
	loc Locator
	pad float64
}

// NewFaceCrop returns a cropping FrameSource.
func NewFaceCrop(src raster.FrameSource, loc Locator) *FaceCrop {
	return &FaceCrop{src: src, loc: loc, pad: facePad}
}

// Frame returns the cropped current frame.
func (f *FaceCrop) Frame() (image.Image, error) {
	img, err := f.src.Frame()
	if err != nil || img == nil {
		return img, err
	}
	face, ok := f.loc.Strongest(img)
	if !ok || face.Empty() {
		return img, nil
	}
	return imaging.Crop(img, grow(face, img.Bounds(), f.pad)), nil
}

func grow(r, bounds image.Rectangle, pad float64) image.Rectangle {
	dx := int(float64(r.Dx()) * pad)
	dy := int(float64(r.Dy()) * pad)
	return image.Rect(r.Min.X-dx, r.Min.Y-dy, r.Max.X+dx, r.Max.Y+dy).Intersect(bounds)
}
