// Package backend holds the contracts shared by the terminal backends and the
// error taxonomy reported across the input layer.
package backend

import "errors"

var (
	// ErrTerminalUnavailable indicates stdin/stdout is not a terminal, or the terminal is already claimed
	ErrTerminalUnavailable = errors.New("terminal unavailable")
	// ErrModeSwitchFailed indicates the backend refused a raw or alternate screen switch
	ErrModeSwitchFailed = errors.New("terminal mode switch failed")
	// ErrSurfaceInitFailed indicates the backend writer could not be bound to a surface
	ErrSurfaceInitFailed = errors.New("surface initialization failed")
	// ErrReadFailed indicates the backend read primitive returned an error
	ErrReadFailed = errors.New("input read failed")
)

// State is the terminal mode snapshot a guard restores
type State struct {
	Raw       bool
	AltScreen bool
}

// Modes is the mode-switching surface each backend exposes
type Modes interface {
	// IsTerminal reports whether the backend is attached to a terminal
	IsTerminal() bool
	// State returns the modes currently in effect
	State() State
	EnterAltScreen() error
	ExitAltScreen() error
	EnterRaw() error
	ExitRaw() error
}
