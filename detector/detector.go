package detector

import (
	"errors"
	"fmt"
	"image"

	pigo "github.com/esimov/pigo/core"
)

// ErrCascade is returned when a cascade file cannot be unpacked.
var ErrCascade = errors.New("error unpacking the facefinder cascade file")

// Detector finds faces in video frames with a pigo cascade classifier.
type Detector struct {
	classifier *pigo.Pigo

	MinSize     int
	MaxSize     int
	ShiftFactor float64
	ScaleFactor float64
	IoU         float64
	Threshold   float32
}

// NewDetector unpacks the facefinder cascade.
func NewDetector(cascade []byte) (d *Detector, err error) {
	// pigo indexes into the packet without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("%w: %v", ErrCascade, r)
		}
	}()

	// Unpack the binary file. This will return the number of cascade trees,
	// the tree depth, the threshold and the prediction from tree's leaf nodes.
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCascade, err)
	}
	return &Detector{
		classifier:  classifier,
		MinSize:     100,
		MaxSize:     1200,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		IoU:         0.1,
		Threshold:   5,
	}, nil
}

// DetectFaces runs the cluster detection over a grayscale pixel array and
// returns the detected faces.
func (d *Detector) DetectFaces(pixels []uint8, width, height int) []pigo.Detection {
	cParams := pigo.CascadeParams{
		MinSize:     d.MinSize,
		MaxSize:     d.MaxSize,
		ShiftFactor: d.ShiftFactor,
		ScaleFactor: d.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}

	// Run the classifier over the obtained leaf nodes and return the detection results.
	// The result contains quadruplets representing the row, column, scale and detection score.
	dets := d.classifier.RunCascade(cParams, 0.0)

	// Calculate the intersection over union (IoU) of two clusters.
	return d.classifier.ClusterDetections(dets, d.IoU)
}

// Strongest returns the bounding box of the best scoring face above the
// threshold.
func (d *Detector) Strongest(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	dets := d.DetectFaces(grayscale(img), b.Dx(), b.Dy())
	best, ok := strongest(dets, d.Threshold)
	if !ok {
		return image.Rectangle{}, false
	}
	return faceRect(best, b), true
}

func strongest(dets []pigo.Detection, threshold float32) (pigo.Detection, bool) {
	var (
		best pigo.Detection
		ok   bool
	)
	for _, det := range dets {
		if det.Q < threshold {
			continue
		}
		if !ok || det.Q > best.Q {
			best, ok = det, true
		}
	}
	return best, ok
}

// faceRect converts a detection into its square box, clipped to bounds.
func faceRect(det pigo.Detection, bounds image.Rectangle) image.Rectangle {
	half := det.Scale / 2
	center := image.Pt(bounds.Min.X+det.Col, bounds.Min.Y+det.Row)
	r := image.Rect(center.X-half, center.Y-half, center.X+half, center.Y+half)
	return r.Intersect(bounds)
}

// grayscale converts img into the row-major luma plane pigo expects.
func grayscale(img image.Image) []uint8 {
	b := img.Bounds()
	gray := make([]uint8, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := (299*r + 587*g + 114*bl) / 1000
			gray[(y-b.Min.Y)*b.Dx()+(x-b.Min.X)] = uint8(lum >> 8)
		}
	}
	return gray
}
