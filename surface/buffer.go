package surface

import "strings"

// Cell is one staged grid cell
type Cell struct {
	Rune  rune
	Style Style
}

// Buffer is an in-memory Surface for headless rendering and tests
type Buffer struct {
	width, height int
	cells         []Cell
	shown         []Cell
	closed        bool
}

// NewBuffer returns an empty width x height buffer
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

func (b *Buffer) Size() (int, int) { return b.width, b.height }

func (b *Buffer) SetCell(x, y int, r rune, style Style) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Style: style}
}

func (b *Buffer) Clear() {
	clear(b.cells)
}

// Show snapshots the staged cells
func (b *Buffer) Show() error {
	if b.closed {
		return ErrClosed
	}
	b.shown = append(b.shown[:0], b.cells...)
	return nil
}

func (b *Buffer) Close() error {
	b.closed = true
	return nil
}

// Cell returns the staged cell at (x, y)
func (b *Buffer) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// Row returns the shown text of row y, empty cells as spaces, trailing spaces trimmed
func (b *Buffer) Row(y int) string {
	if y < 0 || y >= b.height || len(b.shown) == 0 {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < b.width; x++ {
		r := b.shown[y*b.width+x].Rune
		if r == 0 {
			if x > 0 && isWide(b.shown[y*b.width+x-1].Rune) {
				continue
			}
			r = ' '
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}
