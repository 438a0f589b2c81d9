// Package terminal presents composed frames in a 256 color terminal.
package terminal

import (
	"context"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"github.com/esimov/ascii-cam/compositor"
)

// Surface draws frames with termbox. It implements compositor.Surface.
type Surface struct {
	mu     sync.Mutex
	closed bool
	done   chan struct{}

	pollEvent func() termbox.Event
	interrupt func()
	shutdown  func()
}

// New initializes the terminal and starts listening for the quit keys.
// Esc or Ctrl-C calls cancel.
func New(cancel context.CancelFunc) (*Surface, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.SetOutputMode(termbox.Output256)
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	return newSurface(cancel, termbox.PollEvent, termbox.Interrupt, termbox.Close), nil
}

func newSurface(cancel context.CancelFunc, pollEvent func() termbox.Event, interrupt, shutdown func()) *Surface {
	s := &Surface{
		done:      make(chan struct{}),
		pollEvent: pollEvent,
		interrupt: interrupt,
		shutdown:  shutdown,
	}
	go s.poll(cancel)
	return s
}

func (s *Surface) poll(cancel context.CancelFunc) {
	defer close(s.done)
	for {
		switch ev := s.pollEvent(); ev.Type {
		case termbox.EventKey:
			if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
				cancel()
				return
			}
		case termbox.EventResize:
			s.mu.Lock()
			if !s.closed {
				termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
			}
			s.mu.Unlock()
		case termbox.EventInterrupt, termbox.EventError:
			return
		}
	}
}

// Present replaces the terminal contents with f. Cells past the terminal
// edge are cut off.
func (s *Surface) Present(f *compositor.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	w, h := termbox.Size()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	for y, row := range f.Rows {
		if y >= h {
			break
		}
		x := 0
		for _, c := range row {
			for _, r := range c.Glyph {
				if x >= w {
					break
				}
				termbox.SetCell(x, y, r, Attribute(c.Tint.Clamped()), termbox.ColorDefault)
				x += runewidth.RuneWidth(r)
			}
		}
	}
	return termbox.Flush()
}

// Close restores the terminal. It returns once the event loop has stopped,
// whether a quit key ended it or Close itself.
func (s *Surface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	// Interrupt blocks until PollEvent receives it. A quit key may end the
	// loop first, so never wait on the send itself.
	select {
	case <-s.done:
	default:
		go s.interrupt()
		<-s.done
	}
	s.shutdown()
	return nil
}

// Attribute maps a color onto the 6x6x6 cube of the 256 color palette.
func Attribute(c colorful.Color) termbox.Attribute {
	c = c.Clamped()
	level := func(v float64) int {
		return int(math.Round(v * 5))
	}
	idx := 16 + 36*level(c.R) + 6*level(c.G) + level(c.B)
	// termbox reserves 0 for the default color in Output256 mode.
	return termbox.Attribute(idx + 1)
}
