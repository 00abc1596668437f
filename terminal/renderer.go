// @lixen: #focus{sys[term,io,output]}
// @lixen: #interact{trigger[output,ansi]}
package terminal

import (
	"bufio"
	"io"

	"github.com/mattn/go-runewidth"
)

// Attr represents text attributes and color flags (bitmask)
type Attr uint16

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrBlink     Attr = 1 << 4
	AttrReverse   Attr = 1 << 5
	AttrFg256     Attr = 1 << 6 // Fg.R is a 256-color palette index
	AttrBg256     Attr = 1 << 7 // Bg.R is a 256-color palette index
	AttrFgDefault Attr = 1 << 8 // Terminal default foreground, Fg ignored
	AttrBgDefault Attr = 1 << 9 // Terminal default background, Bg ignored
)

// AttrStyle masks only the style bits
const AttrStyle Attr = AttrBold | AttrDim | AttrItalic | AttrUnderline | AttrBlink | AttrReverse

const (
	attrFgMask = AttrFg256 | AttrFgDefault
	attrBgMask = AttrBg256 | AttrBgDefault
)

// Cell represents a single terminal cell
// A zero Rune renders as a space; the cell right of a wide rune is not drawn
type Cell struct {
	Rune  rune
	Fg    RGB
	Bg    RGB
	Attrs Attr
}

// Renderer writes cell grids to a terminal, diffing against the last frame
type Renderer struct {
	front     []Cell
	width     int
	height    int
	colorMode ColorMode
	w         *bufio.Writer

	cursorX     int
	cursorY     int
	cursorValid bool

	lastFg    RGB
	lastBg    RGB
	lastAttr  Attr
	lastValid bool
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer, mode ColorMode) *Renderer {
	return &Renderer{
		w:         bufio.NewWriterSize(w, 64*1024),
		colorMode: mode,
	}
}

func (o *Renderer) resize(width, height int) {
	size := width * height
	if cap(o.front) < size {
		o.front = make([]Cell, size)
	} else {
		o.front = o.front[:size]
	}
	o.width = width
	o.height = height
	o.Invalidate()
}

// Invalidate forgets the previous frame so the next Flush redraws everything
func (o *Renderer) Invalidate() {
	for i := range o.front {
		o.front[i] = Cell{Rune: -1}
	}
	o.lastValid = false
	o.cursorValid = false
}

func cellEqual(a, b Cell) bool {
	if a.Rune != b.Rune || a.Attrs != b.Attrs {
		return false
	}
	if a.Attrs&AttrBgDefault == 0 && a.Bg != b.Bg {
		return false
	}
	if a.Rune == 0 || a.Rune == ' ' || a.Attrs&AttrFgDefault != 0 {
		return true
	}
	return a.Fg == b.Fg
}

// Flush writes cells (row-major, cells[y*width+x]) emitting only changed cells
func (o *Renderer) Flush(cells []Cell, width, height int) error {
	if width != o.width || height != o.height {
		o.resize(width, height)
	}
	if len(cells) < width*height {
		return nil
	}

	w := o.w
	for y := 0; y < height; y++ {
		rowStart := y * width
		x := 0

		for x < width {
			idx := rowStart + x
			if cellEqual(cells[idx], o.front[idx]) {
				x++
				continue
			}

			if !o.cursorValid || x != o.cursorX || y != o.cursorY {
				if o.cursorValid && y == o.cursorY && x > o.cursorX {
					writeCursorForward(w, x-o.cursorX)
				} else {
					writeCursorPos(w, x, y)
				}
				o.cursorX = x
				o.cursorY = y
				o.cursorValid = true
			}

			// Contiguous dirty run
			for x < width {
				cidx := rowStart + x
				c := cells[cidx]
				if cellEqual(c, o.front[cidx]) {
					break
				}

				o.writeStyle(w, c.Fg, c.Bg, c.Attrs)

				r := c.Rune
				if r == 0 {
					r = ' '
				}
				cw := runewidth.RuneWidth(r)
				if cw == 2 && x+1 >= width {
					// No room for the second column
					r, cw = ' ', 1
				}
				if cw < 1 {
					r, cw = ' ', 1
				}
				if r < 0x80 {
					w.WriteByte(byte(r))
				} else {
					w.WriteRune(r)
				}

				o.front[cidx] = c
				if cw == 2 {
					o.front[cidx+1] = cells[cidx+1]
				}
				o.cursorX += cw
				x += cw
			}
		}
	}

	w.Write(csiSGR0)
	o.lastValid = false
	return w.Flush()
}

// writeStyle emits a single combined SGR sequence when style changes
func (o *Renderer) writeStyle(w *bufio.Writer, fg, bg RGB, attr Attr) {
	fgChanged := !o.lastValid || fg != o.lastFg || attr&attrFgMask != o.lastAttr&attrFgMask
	bgChanged := !o.lastValid || bg != o.lastBg || attr&attrBgMask != o.lastAttr&attrBgMask
	attrChanged := !o.lastValid || attr&AttrStyle != o.lastAttr&AttrStyle

	switch {
	case attrChanged:
		// Style bits can only be cleared by a reset
		w.Write(csi)
		w.WriteByte('0')
		for _, sa := range styleCodes {
			if attr&sa.attr != 0 {
				w.WriteByte(';')
				w.WriteByte(sa.code)
			}
		}
		o.writeFgParams(w, fg, attr)
		o.writeBgParams(w, bg, attr)
		w.WriteByte('m')
	case fgChanged || bgChanged:
		if fgChanged {
			o.writeFgFull(w, fg, attr)
		}
		if bgChanged {
			o.writeBgFull(w, bg, attr)
		}
	default:
		return
	}

	o.lastFg = fg
	o.lastBg = bg
	o.lastAttr = attr
	o.lastValid = true
}

var styleCodes = []struct {
	attr Attr
	code byte
}{
	{AttrBold, '1'},
	{AttrDim, '2'},
	{AttrItalic, '3'},
	{AttrUnderline, '4'},
	{AttrBlink, '5'},
	{AttrReverse, '7'},
}

// writeFgParams writes ";<fg color>" without CSI prefix or 'm' suffix
func (o *Renderer) writeFgParams(w *bufio.Writer, fg RGB, attr Attr) {
	switch {
	case attr&AttrFgDefault != 0:
		w.WriteString(";39")
	case attr&AttrFg256 != 0:
		w.WriteString(";38;5;")
		writeInt(w, int(fg.R))
	case o.colorMode == ColorModeTrueColor:
		w.WriteString(";38;2;")
		writeRGB(w, fg)
	default:
		w.WriteString(";38;5;")
		writeInt(w, int(RGBTo256(fg)))
	}
}

// writeBgParams writes ";<bg color>" without CSI prefix or 'm' suffix
func (o *Renderer) writeBgParams(w *bufio.Writer, bg RGB, attr Attr) {
	switch {
	case attr&AttrBgDefault != 0:
		w.WriteString(";49")
	case attr&AttrBg256 != 0:
		w.WriteString(";48;5;")
		writeInt(w, int(bg.R))
	case o.colorMode == ColorModeTrueColor:
		w.WriteString(";48;2;")
		writeRGB(w, bg)
	default:
		w.WriteString(";48;5;")
		writeInt(w, int(RGBTo256(bg)))
	}
}

// writeFgFull writes a standalone foreground sequence
func (o *Renderer) writeFgFull(w *bufio.Writer, fg RGB, attr Attr) {
	switch {
	case attr&AttrFgDefault != 0:
		w.Write(csiDefaultFg)
		return
	case attr&AttrFg256 != 0:
		w.Write(csiFg256)
		writeInt(w, int(fg.R))
	case o.colorMode == ColorModeTrueColor:
		w.Write(csiFgRGB)
		writeRGB(w, fg)
	default:
		w.Write(csiFg256)
		writeInt(w, int(RGBTo256(fg)))
	}
	w.WriteByte('m')
}

// writeBgFull writes a standalone background sequence
func (o *Renderer) writeBgFull(w *bufio.Writer, bg RGB, attr Attr) {
	switch {
	case attr&AttrBgDefault != 0:
		w.Write(csiDefaultBg)
		return
	case attr&AttrBg256 != 0:
		w.Write(csiBg256)
		writeInt(w, int(bg.R))
	case o.colorMode == ColorModeTrueColor:
		w.Write(csiBgRGB)
		writeRGB(w, bg)
	default:
		w.Write(csiBg256)
		writeInt(w, int(RGBTo256(bg)))
	}
	w.WriteByte('m')
}

func writeRGB(w *bufio.Writer, c RGB) {
	writeInt(w, int(c.R))
	w.WriteByte(';')
	writeInt(w, int(c.G))
	w.WriteByte(';')
	writeInt(w, int(c.B))
}

// Clear erases the screen to the terminal default background and forgets the frame
func (o *Renderer) Clear() error {
	w := o.w
	w.Write(csiSGR0)
	w.Write(csiClear)
	o.Invalidate()
	return w.Flush()
}
