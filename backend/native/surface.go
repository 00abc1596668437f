//go:build unix

package native

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/surface"
	"github.com/lixenwraith/keyflow/terminal"
)

// Surface draws through the double-buffered ANSI renderer
type Surface struct {
	b        *Backend
	renderer *terminal.Renderer

	mu     sync.Mutex
	cells  []terminal.Cell
	width  int
	height int
	closed bool
}

// NewSurface binds the backend writer; one surface at a time
func NewSurface(b *Backend) (*Surface, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil backend", backend.ErrSurfaceInitFailed)
	}
	if !b.writerHeld.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: native writer already bound", backend.ErrSurfaceInitFailed)
	}
	s := &Surface{
		b:        b,
		renderer: terminal.NewRenderer(b.tty.Output(), terminal.DetectColorMode()),
	}
	s.resize(b.Size())
	return s, nil
}

func (s *Surface) resize(width, height int) {
	s.width, s.height = width, height
	s.cells = make([]terminal.Cell, width*height)
	s.clearLocked()
}

func (s *Surface) clearLocked() {
	for i := range s.cells {
		s.cells[i] = terminal.Cell{Attrs: terminal.AttrFgDefault | terminal.AttrBgDefault}
	}
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) SetCell(x, y int, r rune, style surface.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	s.cells[y*s.width+x] = convertCell(r, style)
}

func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Show flushes staged cells; a terminal resize discards them and redraws blank
func (s *Surface) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return surface.ErrClosed
	}
	if w, h := s.b.Size(); w != s.width || h != s.height {
		s.resize(w, h)
		if err := s.renderer.Clear(); err != nil {
			return err
		}
	}
	return s.renderer.Flush(s.cells, s.width, s.height)
}

// Close releases the writer
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.b.writerHeld.Store(false)
	return nil
}

func convertCell(r rune, st surface.Style) terminal.Cell {
	c := terminal.Cell{Rune: r, Attrs: convertAttr(st.Attrs)}
	if st.Fg.Valid {
		c.Fg = terminal.RGB{R: st.Fg.R, G: st.Fg.G, B: st.Fg.B}
	} else {
		c.Attrs |= terminal.AttrFgDefault
	}
	if st.Bg.Valid {
		c.Bg = terminal.RGB{R: st.Bg.R, G: st.Bg.G, B: st.Bg.B}
	} else {
		c.Attrs |= terminal.AttrBgDefault
	}
	return c
}

func convertAttr(a surface.Attr) terminal.Attr {
	var out terminal.Attr
	if a&surface.AttrBold != 0 {
		out |= terminal.AttrBold
	}
	if a&surface.AttrDim != 0 {
		out |= terminal.AttrDim
	}
	if a&surface.AttrItalic != 0 {
		out |= terminal.AttrItalic
	}
	if a&surface.AttrUnderline != 0 {
		out |= terminal.AttrUnderline
	}
	if a&surface.AttrBlink != 0 {
		out |= terminal.AttrBlink
	}
	if a&surface.AttrReverse != 0 {
		out |= terminal.AttrReverse
	}
	return out
}
