//go:build unix

// @lixen: #focus{sys[term,io]}
package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	// DefaultEscapeTimeout separates a lone ESC from the start of a sequence
	DefaultEscapeTimeout = 50 * time.Millisecond
	// DefaultPollInterval bounds how long a blocking read waits before rechecking cancellation
	DefaultPollInterval = 100 * time.Millisecond
)

// Options tunes input timing, zero values select the defaults
type Options struct {
	EscapeTimeout time.Duration
	PollInterval  time.Duration
}

// State reports the modes the TTY has applied
type State struct {
	Raw       bool
	AltScreen bool
}

// TTY is a terminal bound to an input and an output file
type TTY struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int

	escapeTimeout time.Duration
	pollInterval  time.Duration

	mu        sync.Mutex
	saved     *term.State // Non-nil while raw mode is applied
	altScreen bool

	// readMu is held for the whole duration of a read, or for the lifetime of a poller
	readMu sync.Mutex
	dec    *Decoder
	buf    []byte
}

// Open binds a TTY to in/out, typically os.Stdin and os.Stdout
// No mode is changed until EnterRaw/EnterAltScreen
func Open(in, out *os.File, opts Options) (*TTY, error) {
	if in == nil || out == nil {
		return nil, errors.New("terminal: nil input or output file")
	}
	if opts.EscapeTimeout <= 0 {
		opts.EscapeTimeout = DefaultEscapeTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &TTY{
		in:            in,
		out:           out,
		inFd:          int(in.Fd()),
		outFd:         int(out.Fd()),
		escapeTimeout: opts.EscapeTimeout,
		pollInterval:  opts.PollInterval,
		dec:           NewDecoder(),
		buf:           make([]byte, 256),
	}, nil
}

// IsTerminal reports whether both ends are attached to a terminal
func (t *TTY) IsTerminal() bool {
	return term.IsTerminal(t.inFd) && term.IsTerminal(t.outFd)
}

// State returns the modes currently applied by this TTY
func (t *TTY) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Raw: t.saved != nil, AltScreen: t.altScreen}
}

// EnterRaw switches input to raw mode, saving the previous termios
func (t *TTY) EnterRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved != nil {
		return nil
	}
	old, err := term.MakeRaw(t.inFd)
	if err != nil {
		return err
	}
	t.saved = old
	return nil
}

// ExitRaw restores the termios saved by EnterRaw
func (t *TTY) ExitRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved == nil {
		return nil
	}
	if err := term.Restore(t.inFd, t.saved); err != nil {
		return err
	}
	t.saved = nil
	return nil
}

// EnterAltScreen switches to the alternate buffer with the cursor hidden
func (t *TTY) EnterAltScreen() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.altScreen {
		return nil
	}
	seq := make([]byte, 0, 32)
	seq = append(seq, csiAltScreenEnter...)
	seq = append(seq, csiCursorHide...)
	seq = append(seq, csiAutoWrapOff...)
	seq = append(seq, csiClear...)
	if _, err := t.out.Write(seq); err != nil {
		return err
	}
	t.altScreen = true
	return nil
}

// ExitAltScreen returns to the main buffer and restores cursor and wrapping
func (t *TTY) ExitAltScreen() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.altScreen {
		return nil
	}
	seq := make([]byte, 0, 32)
	seq = append(seq, csiSGR0...)
	seq = append(seq, csiCursorShow...)
	seq = append(seq, csiAutoWrapOn...)
	seq = append(seq, csiAltScreenExit...)
	if _, err := t.out.Write(seq); err != nil {
		return err
	}
	t.altScreen = false
	return nil
}

// Size returns the output dimensions, 80x24 when unknown
func (t *TTY) Size() (width, height int) {
	w, h, err := term.GetSize(t.outFd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// Output returns the writer for rendered frames
func (t *TTY) Output() io.Writer {
	return t.out
}

// ReadEvent blocks until one event is decoded, ctx is done, or input ends
// Returns io.EOF at end of input and ErrReaderBusy if a poller or other reader holds the input
func (t *TTY) ReadEvent(ctx context.Context) (Event, error) {
	if !t.readMu.TryLock() {
		return Event{}, ErrReaderBusy
	}
	defer t.readMu.Unlock()

	for {
		if ev, ok := t.dec.Next(); ok {
			return ev, nil
		}
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		pending := t.dec.Pending()
		timeout := t.pollInterval
		if pending {
			timeout = t.escapeTimeout
		}

		ready, err := waitReadable(t.inFd, timeout)
		if err != nil {
			return Event{}, err
		}
		if !ready {
			if pending {
				t.dec.Flush()
			}
			continue
		}

		n, err := unix.Read(t.inFd, t.buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return Event{}, err
		}
		if n == 0 {
			if t.dec.Pending() {
				t.dec.Flush()
				continue
			}
			return Event{}, io.EOF
		}
		t.dec.Feed(t.buf[:n])
	}
}

// waitReadable polls fd for input, false on timeout or signal interruption
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	// POLLHUP/POLLERR surface through the following read
	return true, nil
}
