package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"sync"
)

// MJPEG is a live motion-JPEG stream, either concatenated JPEG images or a
// multipart HTTP body. Only the most recent frame is kept: a frame that was
// not sampled before the next one arrives is dropped.
type MJPEG struct {
	rc    io.ReadCloser
	ready *ready

	mu      sync.Mutex
	latest  image.Image
	err     error
	decoded uint64
	dropped uint64
	sampled bool
}

// NewMJPEG starts reading frames from rc in the background.
func NewMJPEG(rc io.ReadCloser) *MJPEG {
	m := &MJPEG{
		rc:    rc,
		ready: newReady(),
	}
	go m.read()
	return m
}

// Ready blocks until the first frame has been decoded or the stream failed.
func (m *MJPEG) Ready(ctx context.Context) error {
	if err := m.ready.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return fmt.Errorf("%w: %v", ErrNotReady, m.err)
	}
	return nil
}

// Play is a no-op: a live stream is always playing.
func (m *MJPEG) Play() error { return nil }

// SetPlaybackRate is accepted and ignored for live streams.
func (m *MJPEG) SetPlaybackRate(float64) error { return nil }

// Frame returns the latest decoded frame. Once the stream has ended it
// returns the terminating error.
func (m *MJPEG) Frame() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.latest == nil {
		return nil, ErrNotReady
	}
	m.sampled = true
	return m.latest, nil
}

// Counts returns the number of decoded and dropped frames.
func (m *MJPEG) Counts() (decoded, dropped uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decoded, m.dropped
}

// Close stops the stream.
func (m *MJPEG) Close() error {
	return m.rc.Close()
}

func (m *MJPEG) read() {
	defer m.ready.signal()

	err := scanJPEG(bufio.NewReader(m.rc), func(data []byte) error {
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return err
		}
		m.publish(img)
		return nil
	})
	if err == nil || errors.Is(err, io.EOF) {
		err = ErrClosed
	}
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *MJPEG) publish(img image.Image) {
	m.mu.Lock()
	if m.latest != nil && !m.sampled {
		m.dropped++
	}
	m.latest = img
	m.sampled = false
	m.decoded++
	m.mu.Unlock()
	m.ready.signal()
}

// scanJPEG calls fn with every complete JPEG image (SOI to EOI) found in r.
// Bytes between images, such as multipart headers, are skipped. APPn and COM
// segments are copied by their length, so an EXIF thumbnail with its own EOI
// does not end the frame.
func scanJPEG(r io.ByteReader, fn func([]byte) error) error {
	var (
		buf    bytes.Buffer
		inside bool
		prev   byte
	)
	for {
		c, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case !inside:
			if prev == 0xff && c == 0xd8 {
				inside = true
				buf.Reset()
				buf.Write([]byte{0xff, 0xd8})
			}
		default:
			buf.WriteByte(c)
			switch {
			case prev == 0xff && c == 0xd9:
				inside = false
				if err := fn(buf.Bytes()); err != nil {
					return err
				}
				c = 0
			case prev == 0xff && (c >= 0xe0 && c <= 0xef || c == 0xfe):
				if err := copySegment(r, &buf); err != nil {
					return err
				}
				c = 0
			}
		}
		prev = c
	}
}

// copySegment copies a length prefixed marker segment into buf.
func copySegment(r io.ByteReader, buf *bytes.Buffer) error {
	var size [2]byte
	for i := range size {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		size[i] = b
	}
	buf.Write(size[:])
	n := int(binary.BigEndian.Uint16(size[:])) - 2
	for ; n > 0; n-- {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		buf.WriteByte(b)
	}
	return nil
}
