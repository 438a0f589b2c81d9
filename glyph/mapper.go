package glyph

import (
	"fmt"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Tint offsets applied to the sampled color.
const (
	RedOffset   = 30
	GreenOffset = -30
	BlueOffset  = -30
)

// Tint is the text color of a glyph. Channels are not clamped and may fall
// outside [0, 255]; the renderer decides how to interpret them.
type Tint struct {
	R, G, B int
}

// TintOf derives the glyph color from a sampled pixel.
func TintOf(r, g, b uint8) Tint {
	return Tint{
		R: int(r) + RedOffset,
		G: int(g) + GreenOffset,
		B: int(b) + BlueOffset,
	}
}

// CSS returns the tint as a CSS rgb() value, out of range channels included.
func (t Tint) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", t.R, t.G, t.B)
}

// Clamped converts the tint into a displayable color.
func (t Tint) Clamped() colorful.Color {
	c := colorful.Color{
		R: float64(t.R) / 255,
		G: float64(t.G) / 255,
		B: float64(t.B) / 255,
	}
	return c.Clamped()
}

// MapperOpt configures a Mapper.
type MapperOpt func(m *Mapper)

// WithRand makes glyph picks come from r instead of the shared source.
func WithRand(r *rand.Rand) MapperOpt {
	return func(m *Mapper) {
		m.intn = r.Intn
	}
}

// Mapper turns brightness values into glyphs.
type Mapper struct {
	table Table
	intn  func(n int) int
}

// NewMapper returns a Mapper over t. The table is not copied and must not be
// modified afterwards.
func NewMapper(t Table, opts ...MapperOpt) (*Mapper, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	m := &Mapper{
		table: t,
		intn:  rand.Intn,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Glyph returns the glyph for brightness b. Slots with alternatives yield a
// uniformly random member on every call.
func (m *Mapper) Glyph(b float64) string {
	slot := m.table[m.table.Index(b)]
	if len(slot) == 1 {
		return slot[0]
	}
	return slot[m.intn(len(slot))]
}

// Pixel maps one RGBA pixel: the glyph comes from the brightness of
// (r, g, b) and the tint from the given color pixel.
func (m *Mapper) Pixel(r, g, b uint8, tr, tg, tb uint8) (string, Tint) {
	return m.Glyph(Brightness(r, g, b)), TintOf(tr, tg, tb)
}
