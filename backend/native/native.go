//go:build unix

// Package native adapts the Unix terminal driver to the shared key model.
package native

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/terminal"
)

// Options configures the native backend, zero values select stdin/stdout and driver defaults
type Options struct {
	In            *os.File
	Out           *os.File
	EscapeTimeout time.Duration
	PollInterval  time.Duration
}

// Backend is the native terminal bound to one input and one output
type Backend struct {
	tty        *terminal.TTY
	writerHeld atomic.Bool
}

// Open binds the backend without changing terminal modes
func Open(opts Options) (*Backend, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	tty, err := terminal.Open(opts.In, opts.Out, terminal.Options{
		EscapeTimeout: opts.EscapeTimeout,
		PollInterval:  opts.PollInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrTerminalUnavailable, err)
	}
	return &Backend{tty: tty}, nil
}

// IsTerminal reports whether input is a TTY
func (b *Backend) IsTerminal() bool { return b.tty.IsTerminal() }

// State returns the current raw and alternate-screen modes
func (b *Backend) State() backend.State {
	s := b.tty.State()
	return backend.State{Raw: s.Raw, AltScreen: s.AltScreen}
}

// EnterAltScreen switches output to the alternate screen
func (b *Backend) EnterAltScreen() error { return b.tty.EnterAltScreen() }

// ExitAltScreen returns output to the main screen
func (b *Backend) ExitAltScreen() error { return b.tty.ExitAltScreen() }

// EnterRaw puts the TTY in raw mode
func (b *Backend) EnterRaw() error { return b.tty.EnterRaw() }

// ExitRaw restores the saved TTY mode
func (b *Backend) ExitRaw() error { return b.tty.ExitRaw() }

// ReadKey blocks for the next decoded event
func (b *Backend) ReadKey(ctx context.Context) (terminal.Event, error) {
	return b.tty.ReadEvent(ctx)
}

// Poller claims the input for readiness-based reads on the caller's goroutine
func (b *Backend) Poller() (*terminal.EventPoller, error) {
	return b.tty.NewPoller()
}

// Size returns the output dimensions
func (b *Backend) Size() (int, int) { return b.tty.Size() }

// EmergencyReset restores the terminal from a crash path
func (b *Backend) EmergencyReset() {
	terminal.EmergencyReset(b.tty.Output())
}
