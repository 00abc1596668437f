//go:build unix && !tcell

package termio

import (
	"context"

	"github.com/lixenwraith/keyflow/backend/native"
	"github.com/lixenwraith/keyflow/input"
	"github.com/lixenwraith/keyflow/keys"
	"github.com/lixenwraith/keyflow/surface"
	"github.com/lixenwraith/keyflow/terminal"
)

// BackendName identifies the compiled backend
const BackendName = "native"

// Terminal is the compiled backend
type Terminal = native.Backend

// RawEvent is the compiled backend's event type
type RawEvent = terminal.Event

// Open binds the process terminal
func Open(opts Options) (*Terminal, error) {
	return native.Open(native.Options{
		EscapeTimeout: opts.EscapeTimeout,
		PollInterval:  opts.PollInterval,
	})
}

// ToCanonical converts a backend event
func ToCanonical(ev RawEvent) keys.Event {
	return native.ToCanonical(ev)
}

// NewStream reads with readiness polling on the goroutine calling Next
func NewStream(_ context.Context, t *Terminal, opts ...input.Option) (*input.Stream, error) {
	p, err := t.Poller()
	if err != nil {
		return nil, err
	}
	return input.NewPollStream[RawEvent](p, ToCanonical, opts...), nil
}

// MakeSurface binds the terminal writer
func MakeSurface(t *Terminal) (surface.Surface, error) {
	s, err := native.NewSurface(t)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases backend resources; the native driver holds none beyond the guard
func Close(*Terminal) error { return nil }

// EmergencyReset restores the terminal from a crash path
func EmergencyReset(t *Terminal) {
	t.EmergencyReset()
}
