//go:build unix

package terminal

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muesli/cancelreader"
)

// EventPoller reads events on the caller's goroutine using readiness notification
// It owns the TTY input from NewPoller until Close
type EventPoller struct {
	t  *TTY
	cr cancelreader.CancelReader

	mu     sync.Mutex // Held by Poll, Close waits on it after canceling
	buf    []byte
	once    sync.Once
	closed  bool
	closing atomic.Bool
}

// NewPoller claims the TTY input for readiness-based polling
func (t *TTY) NewPoller() (*EventPoller, error) {
	if !t.readMu.TryLock() {
		return nil, ErrReaderBusy
	}
	cr, err := cancelreader.NewReader(t.in)
	if err != nil {
		t.readMu.Unlock()
		return nil, err
	}
	return &EventPoller{t: t, cr: cr, buf: make([]byte, 256)}, nil
}

// Poll waits for the next event
// Returns ctx.Err() when ctx ends the wait, io.EOF at end of input, ErrClosed after Close
// A canceled wait leaves the poller unusable, it must be closed
func (p *EventPoller) Poll(ctx context.Context) (Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dec := p.t.dec
	for {
		if p.closed {
			return Event{}, ErrClosed
		}
		if ev, ok := dec.Next(); ok {
			return ev, nil
		}
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		if dec.Pending() {
			ready, err := p.awaitPrefix(ctx)
			if err != nil {
				return Event{}, err
			}
			if !ready {
				dec.Flush()
				continue
			}
		}

		stop := context.AfterFunc(ctx, func() { p.cr.Cancel() })
		n, err := p.cr.Read(p.buf)
		stop()

		if n > 0 {
			dec.Feed(p.buf[:n])
		}
		if err != nil {
			switch {
			case errors.Is(err, cancelreader.ErrCanceled):
				if ctxErr := ctx.Err(); ctxErr != nil {
					return Event{}, ctxErr
				}
				return Event{}, ErrClosed
			case errors.Is(err, io.EOF):
				if dec.Pending() {
					dec.Flush()
				}
				if ev, ok := dec.Next(); ok {
					return ev, nil
				}
				return Event{}, io.EOF
			default:
				return Event{}, err
			}
		}
	}
}

// awaitPrefix waits up to the escape timeout for the rest of a pending sequence
// The wait is sliced by the poll interval so ctx and Close are seen promptly
func (p *EventPoller) awaitPrefix(ctx context.Context) (bool, error) {
	deadline := time.Now().Add(p.t.escapeTimeout)
	for {
		if p.closing.Load() {
			return false, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}
		left := time.Until(deadline)
		if left <= 0 {
			return false, nil
		}
		ready, err := waitReadable(p.t.inFd, min(left, p.t.pollInterval))
		if err != nil || ready {
			return ready, err
		}
	}
}

// Close cancels a pending Poll and releases the TTY input
func (p *EventPoller) Close() error {
	var err error
	p.once.Do(func() {
		p.closing.Store(true)
		p.cr.Cancel()
		p.mu.Lock()
		p.closed = true
		err = p.cr.Close()
		p.mu.Unlock()
		p.t.readMu.Unlock()
	})
	return err
}
