// @lixen: #focus{render[surface]}
// Package surface is the backend-neutral drawing target handed to application code.
package surface

// Attr is a set of text attributes
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrBlink     Attr = 1 << 4
	AttrReverse   Attr = 1 << 5
)

// Color is a 24-bit color, the zero value is the terminal default
type Color struct {
	R, G, B uint8
	Valid   bool
}

// RGB returns a concrete color
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Valid: true}
}

// Hex returns a concrete color from 0xRRGGBB
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// Style is foreground, background and attributes of a cell
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// StyleDefault uses terminal default colors and no attributes
var StyleDefault = Style{}

// Foreground returns a copy with fg set
func (s Style) Foreground(c Color) Style {
	s.Fg = c
	return s
}

// Background returns a copy with bg set
func (s Style) Background(c Color) Style {
	s.Bg = c
	return s
}

// With returns a copy with attributes added
func (s Style) With(a Attr) Style {
	s.Attrs |= a
	return s
}

// Surface is a cell grid bound to a backend writer
// Cells are staged with SetCell and become visible on Show
type Surface interface {
	// Size returns the current grid dimensions
	Size() (width, height int)
	// SetCell stages one cell, out of range coordinates are ignored
	SetCell(x, y int, r rune, style Style)
	// Clear stages an empty grid
	Clear()
	// Show presents staged cells
	Show() error
	// Close releases the writer for another surface
	Close() error
}
