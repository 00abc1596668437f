//go:build tcell || !unix

package termio

import (
	"context"

	"github.com/gdamore/tcell/v2"

	tcellbackend "github.com/lixenwraith/keyflow/backend/tcell"
	"github.com/lixenwraith/keyflow/input"
	"github.com/lixenwraith/keyflow/keys"
	"github.com/lixenwraith/keyflow/surface"
)

// BackendName identifies the compiled backend
const BackendName = "tcell"

// Terminal is the compiled backend
type Terminal = tcellbackend.Backend

// RawEvent is the compiled backend's event type
type RawEvent = *tcell.EventKey

// Open creates the tcell screen; it is initialized when the guard is entered
func Open(Options) (*Terminal, error) {
	return tcellbackend.Open()
}

// ToCanonical converts a backend event
func ToCanonical(ev RawEvent) keys.Event {
	return tcellbackend.ToCanonical(ev)
}

// NewStream bridges a worker goroutine, tcell only offers a blocking read
func NewStream(ctx context.Context, t *Terminal, opts ...input.Option) (*input.Stream, error) {
	return input.NewBridgedStream[RawEvent](ctx, t, ToCanonical, opts...), nil
}

// MakeSurface binds the screen
func MakeSurface(t *Terminal) (surface.Surface, error) {
	s, err := tcellbackend.NewSurface(t)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close finalizes the tcell screen
func Close(t *Terminal) error { return t.Close() }

// EmergencyReset restores the terminal from a crash path
func EmergencyReset(t *Terminal) {
	_ = t.Close()
}
