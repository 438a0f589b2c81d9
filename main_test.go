//go:build !js
// +build !js

package main

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/ascii-cam/source"
)

func TestLogDrops(t *testing.T) {
	var out bytes.Buffer
	log.SetOutput(&out)
	defer log.SetOutput(os.Stderr)

	var frame bytes.Buffer
	require.NoError(t, jpeg.Encode(&frame, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	m := source.NewMJPEG(io.NopCloser(bytes.NewReader(bytes.Repeat(frame.Bytes(), 3))))
	require.Eventually(t, func() bool {
		decoded, _ := m.Counts()
		return decoded == 3
	}, 2*time.Second, 5*time.Millisecond)

	logDrops(m)
	assert.Contains(t, out.String(), "mjpeg: 3 frames decoded, 2 dropped")

	out.Reset()
	logDrops(source.NewStill(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	assert.Empty(t, out.String())
}
