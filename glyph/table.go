package glyph

import (
	"errors"
	"math"
)

// Slot holds one or more interchangeable glyphs for a brightness bucket.
// Repeated entries weight the random pick.
type Slot []string

// Table is the ordered brightness to glyph lookup, darkest slot first.
type Table []Slot

var (
	ErrEmptyTable = errors.New("glyph table is empty")
	ErrEmptySlot  = errors.New("glyph table contains an empty slot")
)

// DefaultTable is the glyph ramp used by the webcam renderer.
var DefaultTable = Table{
	{"_"}, {"@"}, {"@"}, {"@"}, {"@"},
	{"#"}, {"#"}, {"#"}, {"#"}, {"#"},
	{"$"}, {"$"}, {"$"}, {"$"},
	{"%"}, {"%"}, {"&"}, {"&"}, {"8"}, {"8"}, {"B"},
	{"0", "0"},
	{"o", "o", "*", "+", "+", "="},
	{"i", "☹︎"},
	{":"},
	{":", "-"},
	{"d", "e", "a"},
	{"'"},
}

// Validate checks the table can serve every brightness value.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for _, s := range t {
		if len(s) == 0 {
			return ErrEmptySlot
		}
	}
	return nil
}

// Index returns the slot index for a brightness in [0, 1]:
// floor(b * (len-1)). Out of range values are pinned to the end slots.
func (t Table) Index(b float64) int {
	last := len(t) - 1
	idx := int(math.Floor(b * float64(last)))
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}

// Brightness is the unweighted mean of the three channels scaled to [0, 1].
func Brightness(r, g, b uint8) float64 {
	return float64(int(r)+int(g)+int(b)) / (3 * 255)
}
