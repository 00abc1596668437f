// @lixen: #focus{sys[term,session]}
// Package session scopes terminal modes: Enter switches to the alternate screen
// and raw mode, Release puts back exactly what Enter changed.
package session

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/keyflow/backend"
)

// held marks the single process-wide guard slot
var held atomic.Bool

// ErrGuardBusy is returned by Enter while another guard is live
var ErrGuardBusy = fmt.Errorf("%w: terminal guard already held", backend.ErrTerminalUnavailable)

// Logger receives restore failures
type Logger interface {
	Printf(format string, v ...any)
}

type options struct {
	logger Logger
}

// Option configures Enter
type Option func(*options)

// WithLogger sets the logger for restore failures
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Guard owns the terminal modes between Enter and Release
type Guard struct {
	t      backend.Modes
	prior  backend.State
	logger Logger

	enteredAlt bool
	enteredRaw bool

	once     sync.Once
	released atomic.Bool
}

// Enter records the current modes and switches to alternate screen then raw mode
// A failed switch rolls back what was applied and returns an error wrapping ErrModeSwitchFailed
func Enter(t backend.Modes, opts ...Option) (*Guard, error) {
	o := options{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}

	if t == nil {
		return nil, fmt.Errorf("%w: no backend", backend.ErrTerminalUnavailable)
	}
	if !held.CompareAndSwap(false, true) {
		return nil, ErrGuardBusy
	}
	ok := false
	defer func() {
		if !ok {
			held.Store(false)
		}
	}()

	if !t.IsTerminal() {
		return nil, fmt.Errorf("%w: not a terminal", backend.ErrTerminalUnavailable)
	}

	g := &Guard{t: t, prior: t.State(), logger: o.logger}

	if !g.prior.AltScreen {
		if err := t.EnterAltScreen(); err != nil {
			return nil, fmt.Errorf("%w: alternate screen: %w", backend.ErrModeSwitchFailed, err)
		}
		g.enteredAlt = true
	}
	if !g.prior.Raw {
		if err := t.EnterRaw(); err != nil {
			g.restore()
			return nil, fmt.Errorf("%w: raw mode: %w", backend.ErrModeSwitchFailed, err)
		}
		g.enteredRaw = true
	}

	ok = true
	return g, nil
}

// Release restores the recorded modes, raw first then alternate screen
// Safe to call more than once; restore errors are logged, not returned
func (g *Guard) Release() {
	g.once.Do(func() {
		g.restore()
		g.released.Store(true)
		held.Store(false)
	})
}

func (g *Guard) restore() {
	if g.enteredRaw {
		if err := g.t.ExitRaw(); err != nil {
			g.logger.Printf("session: restore raw mode: %v", err)
		}
		g.enteredRaw = false
	}
	if g.enteredAlt {
		if err := g.t.ExitAltScreen(); err != nil {
			g.logger.Printf("session: leave alternate screen: %v", err)
		}
		g.enteredAlt = false
	}
}

// Prior returns the modes in effect before Enter
func (g *Guard) Prior() backend.State { return g.prior }

// Released reports whether Release ran
func (g *Guard) Released() bool { return g.released.Load() }

// Run holds a guard for the duration of fn
// The terminal is restored on return, on error and before a panic continues unwinding
func Run(t backend.Modes, fn func(*Guard) error, opts ...Option) error {
	g, err := Enter(t, opts...)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g)
}
