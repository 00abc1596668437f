// Package tcellbackend adapts github.com/gdamore/tcell/v2 to the shared key model.
//
// tcell couples raw mode and the alternate screen: Init (or Resume) enters both,
// Suspend leaves both. The backend tracks raw and alternate screen requests
// separately and keeps the screen active while either is requested.
package tcellbackend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/lixenwraith/keyflow/backend"
)

// ErrReaderBusy is returned when another goroutine is already reading
var ErrReaderBusy = errors.New("tcell input already claimed")

// ErrNotActive is returned by reads before the screen was entered
var ErrNotActive = errors.New("tcell screen not active")

// Backend wraps one tcell screen
type Backend struct {
	screen     tcell.Screen
	isTerminal func() bool

	mu          sync.Mutex
	initialized bool // Init succeeded, Fini pending
	active      bool // Terminal currently in raw + alternate screen
	raw         bool
	alt         bool

	readMu     sync.Mutex
	writerHeld atomic.Bool
}

// Open creates a backend on the process terminal without initializing it
func Open() (*Backend, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrTerminalUnavailable, err)
	}
	return &Backend{
		screen: s,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}, nil
}

// OpenScreen wraps an existing screen, typically a simulation screen
func OpenScreen(s tcell.Screen) *Backend {
	return &Backend{screen: s, isTerminal: func() bool { return true }}
}

// Screen exposes the wrapped screen
func (b *Backend) Screen() tcell.Screen { return b.screen }

// IsTerminal reports whether the screen is backed by a terminal
func (b *Backend) IsTerminal() bool { return b.isTerminal() }

// State returns the modes requested so far
func (b *Backend) State() backend.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return backend.State{Raw: b.raw, AltScreen: b.alt}
}

// EnterAltScreen initializes or resumes the screen, tcell always draws on the alternate screen
func (b *Backend) EnterAltScreen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.activateLocked(); err != nil {
		return err
	}
	b.alt = true
	return nil
}

// EnterRaw initializes or resumes the screen, which also puts the terminal in raw mode
func (b *Backend) EnterRaw() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.activateLocked(); err != nil {
		return err
	}
	b.raw = true
	return nil
}

// ExitRaw suspends the screen once neither mode is held
func (b *Backend) ExitRaw() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw = false
	if b.alt {
		return nil
	}
	return b.deactivateLocked()
}

// ExitAltScreen suspends the screen once neither mode is held
func (b *Backend) ExitAltScreen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alt = false
	if b.raw {
		return nil
	}
	return b.deactivateLocked()
}

func (b *Backend) activateLocked() error {
	if b.active {
		return nil
	}
	if !b.initialized {
		if err := b.screen.Init(); err != nil {
			return err
		}
		b.initialized = true
	} else if err := b.screen.Resume(); err != nil {
		return err
	}
	b.active = true
	return nil
}

func (b *Backend) deactivateLocked() error {
	if !b.active {
		return nil
	}
	if err := b.screen.Suspend(); err != nil {
		return err
	}
	b.active = false
	return nil
}

// Close finalizes the screen, any blocked ReadKey returns io.EOF
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil
	}
	b.screen.Fini()
	b.initialized = false
	b.active = false
	b.raw = false
	b.alt = false
	return nil
}

// ReadKey blocks until the next key event
// Non-key events (resize, mouse, paste, focus) are consumed and skipped
func (b *Backend) ReadKey(ctx context.Context) (*tcell.EventKey, error) {
	if !b.readMu.TryLock() {
		return nil, ErrReaderBusy
	}
	defer b.readMu.Unlock()

	b.mu.Lock()
	initialized := b.initialized
	b.mu.Unlock()
	if !initialized {
		return nil, ErrNotActive
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wake := new(struct{ _ byte })
	stop := context.AfterFunc(ctx, func() {
		_ = b.screen.PostEvent(tcell.NewEventInterrupt(wake))
	})
	defer stop()

	for {
		switch ev := b.screen.PollEvent().(type) {
		case nil:
			return nil, io.EOF
		case *tcell.EventKey:
			return ev, nil
		case *tcell.EventInterrupt:
			if ev.Data() == any(wake) {
				return nil, ctx.Err()
			}
		case *tcell.EventError:
			return nil, ev
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}
