// Package source provides the video sources the renderer samples from.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

var (
	ErrClosed   = errors.New("source closed")
	ErrNotReady = errors.New("source has no data yet")
)

// Video is a playable media source. Ready blocks until the first frame is
// available.
type Video interface {
	Ready(ctx context.Context) error
	Play() error
	SetPlaybackRate(rate float64) error
}

// Open returns a reader for location: "-" for stdin, an http(s) URL, or a
// file path.
func Open(location string) (io.ReadCloser, error) {
	switch {
	case location == "" || location == "-":
		return io.NopCloser(os.Stdin), nil
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		resp, err := http.Get(location)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: %s", location, resp.Status)
		}
		return resp.Body, nil
	default:
		return os.Open(location)
	}
}

// Still is a source showing a single image.
type Still struct {
	img image.Image
}

// NewStill wraps an already decoded image.
func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

// DecodeStill decodes a png, jpeg, gif or bmp image.
func DecodeStill(r io.Reader) (*Still, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return NewStill(img), nil
}

func (s *Still) Ready(context.Context) error { return nil }
func (s *Still) Play() error { return nil }
func (s *Still) SetPlaybackRate(float64) error { return nil }
func (s *Still) Frame() (image.Image, error) { return s.img, nil }

// ready is a one-shot readiness signal shared by the streaming sources.
type ready struct {
	once sync.Once
	ch   chan struct{}
}

func newReady() *ready {
	return &ready{ch: make(chan struct{})}
}

func (r *ready) signal() {
	r.once.Do(func() { close(r.ch) })
}

func (r *ready) wait(ctx context.Context) error {
	select {
	case <-r.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
