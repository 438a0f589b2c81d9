//go:build js && wasm
// +build js,wasm

// Package webgl rasterizes the webcam video element on the GPU into an
// off-screen render target the size of the sampling grid.
package webgl

import (
	"fmt"
	"syscall/js"

	"github.com/esimov/ascii-cam/raster"
)

const vertexShader = `
attribute vec2 a_position;
varying vec2 v_uv;

void main() {
	v_uv = a_position * 0.5 + 0.5;
	gl_Position = vec4(a_position, 0.0, 1.0);
}
`

const fragmentShader = `
precision mediump float;

uniform sampler2D u_image;
uniform float u_desaturate;
varying vec2 v_uv;

void main() {
	vec4 c = texture2D(u_image, vec2(v_uv.x, 1.0 - v_uv.y));
	float m = (c.r + c.g + c.b) / 3.0;
	gl_FragColor = vec4(mix(c.rgb, vec3(m), u_desaturate), 1.0);
}
`

// GL draws a full screen quad textured with the video frame.
type GL struct {
	gl     js.Value
	video  js.Value
	canvas js.Value

	program    js.Value
	quad       js.Value
	videoTex   js.Value
	targetTex  js.Value
	fbo        js.Value
	desaturate js.Value

	target   *target
	uploaded bool
}

// New creates the context on a detached canvas and compiles the program.
func New(video js.Value, width, height int) (*GL, error) {
	doc := js.Global().Get("document")
	canvas := doc.Call("createElement", "canvas")
	canvas.Set("width", width)
	canvas.Set("height", height)

	gl := canvas.Call("getContext", "webgl", map[string]interface{}{"preserveDrawingBuffer": true})
	if !gl.Truthy() {
		gl = canvas.Call("getContext", "experimental-webgl")
	}
	if !gl.Truthy() {
		return nil, raster.ErrContextUnavailable
	}

	g := &GL{gl: gl, video: video, canvas: canvas}
	program, err := g.link(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}
	g.program = program
	gl.Call("useProgram", program)

	// two triangles covering clip space
	g.quad = gl.Call("createBuffer")
	gl.Call("bindBuffer", g.enum("ARRAY_BUFFER"), g.quad)
	vertices := js.Global().Get("Float32Array").New([]interface{}{
		-1, -1, 1, -1, -1, 1,
		-1, 1, 1, -1, 1, 1,
	})
	gl.Call("bufferData", g.enum("ARRAY_BUFFER"), vertices, g.enum("STATIC_DRAW"))
	pos := gl.Call("getAttribLocation", program, "a_position")
	gl.Call("enableVertexAttribArray", pos)
	gl.Call("vertexAttribPointer", pos, 2, g.enum("FLOAT"), false, 0, 0)

	g.desaturate = gl.Call("getUniformLocation", program, "u_desaturate")
	gl.Call("uniform1i", gl.Call("getUniformLocation", program, "u_image"), 0)

	g.videoTex = g.texture()
	gl.Call("pixelStorei", g.enum("UNPACK_FLIP_Y_WEBGL"), true)

	g.targetTex = g.texture()
	gl.Call("texImage2D", g.enum("TEXTURE_2D"), 0, g.enum("RGBA"), width, height, 0,
		g.enum("RGBA"), g.enum("UNSIGNED_BYTE"), js.Null())

	g.fbo = gl.Call("createFramebuffer")
	gl.Call("bindFramebuffer", g.enum("FRAMEBUFFER"), g.fbo)
	gl.Call("framebufferTexture2D", g.enum("FRAMEBUFFER"), g.enum("COLOR_ATTACHMENT0"),
		g.enum("TEXTURE_2D"), g.targetTex, 0)
	if status := gl.Call("checkFramebufferStatus", g.enum("FRAMEBUFFER")).Int(); status != g.enum("FRAMEBUFFER_COMPLETE").Int() {
		return nil, fmt.Errorf("%w: framebuffer status %#x", raster.ErrContextUnavailable, status)
	}
	gl.Call("viewport", 0, 0, width, height)

	g.target = &target{
		gl:    gl,
		w:     width,
		h:     height,
		buf:   js.Global().Get("Uint8Array").New(width * height * 4),
		rgba:  g.enum("RGBA"),
		ubyte: g.enum("UNSIGNED_BYTE"),
	}
	return g, nil
}

// Upload copies the current video frame into the video texture. The passes
// of a tick all draw this copy, even if the video advances meanwhile.
func (g *GL) Upload() error {
	if g.gl.Call("isContextLost").Bool() {
		return raster.ErrContextUnavailable
	}
	// HAVE_CURRENT_DATA
	if g.video.Get("readyState").Int() < 2 {
		return raster.ErrNoFrame
	}
	g.gl.Call("activeTexture", g.enum("TEXTURE0"))
	g.gl.Call("bindTexture", g.enum("TEXTURE_2D"), g.videoTex)
	g.gl.Call("texImage2D", g.enum("TEXTURE_2D"), 0, g.enum("RGBA"),
		g.enum("RGBA"), g.enum("UNSIGNED_BYTE"), g.video)
	g.uploaded = true
	return nil
}

// Render draws the last uploaded frame into the target.
func (g *GL) Render(mode raster.Mode) error {
	if g.gl.Call("isContextLost").Bool() {
		return raster.ErrContextUnavailable
	}
	if !g.uploaded {
		return raster.ErrNoFrame
	}

	var d float32
	if mode == raster.Grayscale {
		d = 1
	}
	g.gl.Call("uniform1f", g.desaturate, d)

	g.gl.Call("activeTexture", g.enum("TEXTURE0"))
	g.gl.Call("bindTexture", g.enum("TEXTURE_2D"), g.videoTex)
	g.gl.Call("bindFramebuffer", g.enum("FRAMEBUFFER"), g.fbo)
	g.gl.Call("drawArrays", g.enum("TRIANGLES"), 0, 6)
	return nil
}

// Target returns the off-screen render target.
func (g *GL) Target() raster.Target {
	return g.target
}

// Close deletes the GL objects.
func (g *GL) Close() error {
	g.gl.Call("deleteFramebuffer", g.fbo)
	g.gl.Call("deleteTexture", g.targetTex)
	g.gl.Call("deleteTexture", g.videoTex)
	g.gl.Call("deleteBuffer", g.quad)
	g.gl.Call("deleteProgram", g.program)
	return nil
}

func (g *GL) enum(name string) js.Value {
	return g.gl.Get(name)
}

func (g *GL) texture() js.Value {
	tex := g.gl.Call("createTexture")
	g.gl.Call("bindTexture", g.enum("TEXTURE_2D"), tex)
	// video frames are rarely power of two sized
	g.gl.Call("texParameteri", g.enum("TEXTURE_2D"), g.enum("TEXTURE_WRAP_S"), g.enum("CLAMP_TO_EDGE"))
	g.gl.Call("texParameteri", g.enum("TEXTURE_2D"), g.enum("TEXTURE_WRAP_T"), g.enum("CLAMP_TO_EDGE"))
	g.gl.Call("texParameteri", g.enum("TEXTURE_2D"), g.enum("TEXTURE_MIN_FILTER"), g.enum("LINEAR"))
	g.gl.Call("texParameteri", g.enum("TEXTURE_2D"), g.enum("TEXTURE_MAG_FILTER"), g.enum("LINEAR"))
	return tex
}

func (g *GL) compile(kind, source string) (js.Value, error) {
	shader := g.gl.Call("createShader", g.enum(kind))
	g.gl.Call("shaderSource", shader, source)
	g.gl.Call("compileShader", shader)
	if !g.gl.Call("getShaderParameter", shader, g.enum("COMPILE_STATUS")).Bool() {
		info := g.gl.Call("getShaderInfoLog", shader).String()
		g.gl.Call("deleteShader", shader)
		return js.Null(), fmt.Errorf("%w: %s: %s", raster.ErrShaderCompile, kind, info)
	}
	return shader, nil
}

func (g *GL) link(vs, fs string) (js.Value, error) {
	vert, err := g.compile("VERTEX_SHADER", vs)
	if err != nil {
		return js.Null(), err
	}
	frag, err := g.compile("FRAGMENT_SHADER", fs)
	if err != nil {
		return js.Null(), err
	}
	program := g.gl.Call("createProgram")
	g.gl.Call("attachShader", program, vert)
	g.gl.Call("attachShader", program, frag)
	g.gl.Call("linkProgram", program)
	if !g.gl.Call("getProgramParameter", program, g.enum("LINK_STATUS")).Bool() {
		info := g.gl.Call("getProgramInfoLog", program).String()
		return js.Null(), fmt.Errorf("%w: link: %s", raster.ErrShaderCompile, info)
	}
	return program, nil
}

type target struct {
	gl    js.Value
	w, h  int
	buf   js.Value
	rgba  js.Value
	ubyte js.Value
}

func (t *target) Size() (int, int) {
	return t.w, t.h
}

// ReadPixels copies the bound framebuffer, bottom row first.
func (t *target) ReadPixels(dst []byte) error {
	if len(dst) < t.w*t.h*4 {
		return fmt.Errorf("%w: buffer holds %d bytes, need %d", raster.ErrReadback, len(dst), t.w*t.h*4)
	}
	if t.gl.Call("isContextLost").Bool() {
		return fmt.Errorf("%w: context lost", raster.ErrReadback)
	}
	t.gl.Call("readPixels", 0, 0, t.w, t.h, t.rgba, t.ubyte, t.buf)
	if n := js.CopyBytesToGo(dst, t.buf); n != t.w*t.h*4 {
		return fmt.Errorf("%w: copied %d bytes", raster.ErrReadback, n)
	}
	return nil
}
