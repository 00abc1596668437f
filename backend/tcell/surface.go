package tcellbackend

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/surface"
)

// Surface draws through the tcell screen
// tcell places wide runes itself, zero runes are skipped
type Surface struct {
	b      *Backend
	closed atomic.Bool
}

// NewSurface binds the screen; it must already be entered and only one surface may hold it
func NewSurface(b *Backend) (*Surface, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil backend", backend.ErrSurfaceInitFailed)
	}
	b.mu.Lock()
	active := b.active
	b.mu.Unlock()
	if !active {
		return nil, fmt.Errorf("%w: tcell screen not active", backend.ErrSurfaceInitFailed)
	}
	if !b.writerHeld.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: tcell screen already bound", backend.ErrSurfaceInitFailed)
	}
	return &Surface{b: b}, nil
}

func (s *Surface) Size() (int, int) { return s.b.screen.Size() }

func (s *Surface) SetCell(x, y int, r rune, style surface.Style) {
	if r == 0 {
		return
	}
	s.b.screen.SetContent(x, y, r, nil, convertStyle(style))
}

func (s *Surface) Clear() { s.b.screen.Clear() }

func (s *Surface) Show() error {
	if s.closed.Load() {
		return surface.ErrClosed
	}
	s.b.screen.Show()
	return nil
}

func (s *Surface) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.b.writerHeld.Store(false)
	}
	return nil
}

func convertStyle(st surface.Style) tcell.Style {
	out := tcell.StyleDefault
	if st.Fg.Valid {
		out = out.Foreground(tcell.NewRGBColor(int32(st.Fg.R), int32(st.Fg.G), int32(st.Fg.B)))
	}
	if st.Bg.Valid {
		out = out.Background(tcell.NewRGBColor(int32(st.Bg.R), int32(st.Bg.G), int32(st.Bg.B)))
	}

	var attrs tcell.AttrMask
	if st.Attrs&surface.AttrBold != 0 {
		attrs |= tcell.AttrBold
	}
	if st.Attrs&surface.AttrDim != 0 {
		attrs |= tcell.AttrDim
	}
	if st.Attrs&surface.AttrItalic != 0 {
		attrs |= tcell.AttrItalic
	}
	if st.Attrs&surface.AttrUnderline != 0 {
		attrs |= tcell.AttrUnderline
	}
	if st.Attrs&surface.AttrBlink != 0 {
		attrs |= tcell.AttrBlink
	}
	if st.Attrs&surface.AttrReverse != 0 {
		attrs |= tcell.AttrReverse
	}
	return out.Attributes(attrs)
}
