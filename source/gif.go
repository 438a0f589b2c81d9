package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"sync"
	"time"
)

// minDelay replaces zero or near zero frame delays, as browsers do.
const minDelay = 100 * time.Millisecond

// GIF plays an animated GIF in a loop. The shown frame follows wall time
// scaled by the playback rate.
type GIF struct {
	frames []*image.RGBA
	ends   []time.Duration
	total  time.Duration
	now    func() time.Time

	mu      sync.Mutex
	playing bool
	rate    float64
	base    time.Duration
	since   time.Time
}

// DecodeGIF decodes every frame of r and composes them with their disposal
// methods applied.
func DecodeGIF(r io.Reader) (*GIF, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	return NewGIF(g)
}

// NewGIF prepares an already decoded GIF.
func NewGIF(g *gif.GIF) (*GIF, error) {
	if len(g.Image) == 0 {
		return nil, errors.New("gif has no frames")
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	p := &GIF{
		now:  time.Now,
		rate: 1,
	}
	screen := image.NewRGBA(bounds)
	for i, frame := range g.Image {
		var previous *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(screen)
		}
		draw.Draw(screen, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		p.frames = append(p.frames, cloneRGBA(screen))

		delay := minDelay
		if i < len(g.Delay) && g.Delay[i] > 1 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		p.total += delay
		p.ends = append(p.ends, p.total)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(screen, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			screen = previous
		}
	}
	return p, nil
}

// Len returns the number of frames.
func (p *GIF) Len() int {
	return len(p.frames)
}

// Ready returns immediately: all frames are decoded up front.
func (p *GIF) Ready(context.Context) error { return nil }

// Play starts the clock.
func (p *GIF) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		p.playing = true
		p.since = p.now()
	}
	return nil
}

// SetPlaybackRate changes the speed from now on; 1 is real time.
func (p *GIF) SetPlaybackRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("invalid playback rate %v", rate)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.position()
	p.since = p.now()
	p.rate = rate
	return nil
}

// Frame returns the frame shown at the current playback position.
func (p *GIF) Frame() (image.Image, error) {
	p.mu.Lock()
	pos := p.position()
	p.mu.Unlock()
	return p.frames[p.index(pos)], nil
}

func (p *GIF) position() time.Duration {
	if !p.playing {
		return p.base
	}
	return p.base + time.Duration(float64(p.now().Sub(p.since))*p.rate)
}

func (p *GIF) index(pos time.Duration) int {
	pos %= p.total
	for i, end := range p.ends {
		if pos < end {
			return i
		}
	}
	return len(p.ends) - 1
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
