//go:build js && wasm
// +build js,wasm

package canvas

import (
	"context"
	"errors"
	"syscall/js"

	"github.com/esimov/ascii-cam/compositor"
)

// ErrNoWebcam is returned when the browser refuses or lacks camera access.
var ErrNoWebcam = errors.New("webcam not available")

// Canvas binds the page elements: the hidden video element fed by the
// webcam and the output block the markup is written into.
type Canvas struct {
	window js.Value
	doc    js.Value
	video  js.Value
	output js.Value
}

// NewCanvas looks up the page elements. The video element is created when
// the page does not carry one.
func NewCanvas() *Canvas {
	c := &Canvas{
		window: js.Global(),
		doc:    js.Global().Get("document"),
	}
	c.video = c.doc.Call("getElementById", "input")
	if !c.video.Truthy() {
		c.video = c.doc.Call("createElement", "video")
		c.video.Set("id", "input")
		c.video.Get("style").Set("display", "none")
		c.doc.Get("body").Call("appendChild", c.video)
	}
	c.video.Set("muted", true)
	c.video.Set("playsInline", true)

	c.output = c.doc.Call("getElementById", "output")
	if !c.output.Truthy() {
		c.output = c.doc.Call("createElement", "div")
		c.output.Set("id", "output")
		c.doc.Get("body").Call("appendChild", c.output)
	}
	return c
}

// StartWebcam asks for the camera and attaches the stream to the video element.
func (c *Canvas) StartWebcam() (*Canvas, error) {
	mediaDevices := c.window.Get("navigator").Get("mediaDevices")
	if !mediaDevices.Truthy() {
		return nil, ErrNoWebcam
	}

	succCh := make(chan js.Value, 1)
	errCh := make(chan error, 1)

	success := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		succCh <- args[0]
		return nil
	})
	failure := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		errCh <- ErrNoWebcam
		return nil
	})
	defer success.Release()
	defer failure.Release()

	constraints := map[string]interface{}{
		"video": map[string]interface{}{"facingMode": "user"},
		"audio": false,
	}
	mediaDevices.Call("getUserMedia", constraints).Call("then", success).Call("catch", failure)

	select {
	case stream := <-succCh:
		c.video.Set("srcObject", stream)
		return c, nil
	case err := <-errCh:
		return nil, err
	}
}

// Ready blocks until the video element has decoded its first frame.
func (c *Canvas) Ready(ctx context.Context) error {
	// HAVE_CURRENT_DATA
	if c.video.Get("readyState").Int() >= 2 {
		return nil
	}
	loaded := make(chan struct{}, 1)
	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		select {
		case loaded <- struct{}{}:
		default:
		}
		return nil
	})
	defer cb.Release()
	c.video.Call("addEventListener", "loadeddata", cb)
	defer c.video.Call("removeEventListener", "loadeddata", cb)

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play starts playback. The returned promise is not awaited; Ready already
// guaranteed a decodable frame.
func (c *Canvas) Play() error {
	c.video.Call("play")
	return nil
}

// SetPlaybackRate sets the video element rate.
func (c *Canvas) SetPlaybackRate(rate float64) error {
	c.video.Set("playbackRate", rate)
	return nil
}

// Video returns the element the rasterizer samples.
func (c *Canvas) Video() js.Value {
	return c.video
}

// RequestFrame runs fn on the next browser paint.
func (c *Canvas) RequestFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cb.Release()
		// js callbacks must not block the event loop
		go fn()
		return nil
	})
	c.window.Call("requestAnimationFrame", cb)
}

// Present replaces the output block contents with the frame markup.
func (c *Canvas) Present(f *compositor.Frame) error {
	if !c.output.Truthy() {
		return errors.New("output element missing")
	}
	c.output.Set("innerHTML", f.Markup())
	return nil
}

// Alert shows a browser alert box.
func (c *Canvas) Alert(message string) {
	c.window.Call("alert", message)
}

// Host returns the host the page was served from.
func (c *Canvas) Host() string {
	return c.window.Get("location").Get("host").String()
}
