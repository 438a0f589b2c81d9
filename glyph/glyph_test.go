package glyph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexEndpoints(t *testing.T) {
	n := len(DefaultTable)
	assert.Equal(t, 0, DefaultTable.Index(0))
	assert.Equal(t, n-1, DefaultTable.Index(1))
	assert.Equal(t, 0, DefaultTable.Index(-0.2))
	assert.Equal(t, n-1, DefaultTable.Index(1.5))
}

func TestIndexFloor(t *testing.T) {
	tbl := Table{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}
	cases := []struct {
		b    float64
		want int
	}{
		{0, 0},
		{0.24, 0},
		{0.25, 1},
		{0.49, 1},
		{0.5, 2},
		{0.99, 3},
		{1, 4},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tbl.Index(c.b), "brightness %v", c.b)
	}
}

func TestIndexSingleSlot(t *testing.T) {
	tbl := Table{{"x"}}
	assert.Equal(t, 0, tbl.Index(0))
	assert.Equal(t, 0, tbl.Index(1))
}

func TestBrightness(t *testing.T) {
	assert.Equal(t, 0.0, Brightness(0, 0, 0))
	assert.Equal(t, 1.0, Brightness(255, 255, 255))
	assert.InDelta(t, 0.502, Brightness(128, 128, 128), 0.001)
	// unweighted: channel order does not matter
	assert.Equal(t, Brightness(255, 0, 0), Brightness(0, 0, 255))
	assert.Equal(t, Brightness(10, 20, 30), Brightness(30, 10, 20))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultTable.Validate())
	assert.ErrorIs(t, Table{}.Validate(), ErrEmptyTable)
	assert.ErrorIs(t, Table{{"a"}, {}}.Validate(), ErrEmptySlot)

	_, err := NewMapper(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestGlyphFixedSlots(t *testing.T) {
	m, err := NewMapper(DefaultTable)
	require.NoError(t, err)

	assert.Equal(t, "_", m.Glyph(0))
	assert.Equal(t, "'", m.Glyph(1))
	assert.Equal(t, "$", m.Glyph(Brightness(128, 128, 128)))
}

func TestGlyphAlternativesAllSampled(t *testing.T) {
	m, err := NewMapper(DefaultTable, WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	// slot 22 is {"o", "o", "*", "+", "+", "="}
	b := 22.5 / float64(len(DefaultTable)-1)
	require.Equal(t, 22, DefaultTable.Index(b))

	seen := map[string]int{}
	for i := 0; i < 2000; i++ {
		seen[m.Glyph(b)]++
	}
	for _, alt := range DefaultTable[22] {
		assert.NotZero(t, seen[alt], "alternative %q never picked", alt)
	}
	assert.Len(t, seen, 4)
}

func TestGlyphUnseededVaries(t *testing.T) {
	m, err := NewMapper(Table{{"a", "b"}})
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		seen[m.Glyph(0.5)] = true
	}
	assert.Len(t, seen, 2)
}

func TestTint(t *testing.T) {
	assert.Equal(t, Tint{158, 98, 98}, TintOf(128, 128, 128))
	assert.Equal(t, Tint{30, -30, -30}, TintOf(0, 0, 0))
	assert.Equal(t, Tint{285, 225, 225}, TintOf(255, 255, 255))

	assert.Equal(t, "rgb(30, -30, -30)", TintOf(0, 0, 0).CSS())
	assert.Equal(t, "rgb(285, 225, 225)", TintOf(255, 255, 255).CSS())
}

func TestTintClamped(t *testing.T) {
	c := TintOf(0, 0, 0).Clamped()
	assert.InDelta(t, 30.0/255, c.R, 1e-9)
	assert.Equal(t, 0.0, c.G)
	assert.Equal(t, 0.0, c.B)

	c = TintOf(255, 255, 255).Clamped()
	assert.Equal(t, 1.0, c.R)
	assert.InDelta(t, 225.0/255, c.G, 1e-9)
}

func TestPixel(t *testing.T) {
	m, err := NewMapper(DefaultTable)
	require.NoError(t, err)

	g, tint := m.Pixel(0, 0, 0, 200, 100, 50)
	assert.Equal(t, "_", g)
	assert.Equal(t, Tint{230, 70, 20}, tint)
}
