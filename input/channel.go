// @lixen: #focus{input[channel,worker]}
package input

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/keys"
)

// Channel is a running input producer
// Events arrive in read order; the channel closes when input ends, reading fails, or Close is called
type Channel struct {
	out    chan keys.Event
	cancel context.CancelFunc
	done   chan struct{}
	grace  time.Duration
	logger Logger

	mu  sync.Mutex
	err error

	closeOnce sync.Once
	closeErr  error
}

// Spawn starts a worker reading src until EOF, a read error, ctx cancellation or Close
// Read errors are reported through Err, never as events
// A nil ctx is treated as context.Background()
func Spawn[K any](ctx context.Context, src Source[K], convert func(K) keys.Event, opts ...Option) *Channel {
	if ctx == nil {
		ctx = context.Background()
	}
	o := applyOptions(opts)
	ctx, cancel := context.WithCancel(ctx)

	capacity := o.capacity
	if o.unbounded {
		capacity = 0
	}
	c := &Channel{
		out:    make(chan keys.Event, capacity),
		cancel: cancel,
		done:   make(chan struct{}),
		grace:  o.grace,
		logger: o.logger,
	}

	if o.unbounded {
		q := newQueue()
		workerDone := make(chan struct{})
		go func() {
			defer close(workerDone)
			defer q.close()
			readLoop(ctx, c, src, convert, func(ev keys.Event) bool {
				q.push(ev)
				return true
			})
		}()
		go func() {
			defer close(c.done)
			defer close(c.out)
			q.drainTo(ctx, c.out)
			<-workerDone
		}()
		return c
	}

	go func() {
		defer close(c.done)
		defer close(c.out)
		readLoop(ctx, c, src, convert, func(ev keys.Event) bool {
			if ctx.Err() != nil {
				return false
			}
			select {
			case c.out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return c
}

// readLoop reads, converts and hands events to send until the source ends or send refuses
func readLoop[K any](ctx context.Context, c *Channel, src Source[K], convert func(K) keys.Event, send func(keys.Event) bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("input: worker panic: %v\n%s", r, debug.Stack())
			c.setErr(fmt.Errorf("%w: worker panic: %v", backend.ErrReadFailed, r))
		}
	}()

	for {
		k, err := src.ReadKey(ctx)
		if err != nil {
			if cause := classify(ctx, err); cause != nil {
				c.logger.Printf("input: %v", cause)
				c.setErr(cause)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !send(convert(k)) {
			return
		}
	}
}

func (c *Channel) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

// Events returns the receive side, closed when the producer stops
func (c *Channel) Events() <-chan keys.Event {
	return c.out
}

// Err returns why the producer stopped: nil for end of input or Close, otherwise an error wrapping backend.ErrReadFailed
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed once the producer goroutines have exited
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close stops the producer and discards undelivered events
// Returns ErrShutdownTimeout if the worker is still blocked in the backend read after the grace period;
// it exits on its own once the read returns
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		timer := time.NewTimer(c.grace)
		defer timer.Stop()
		select {
		case <-c.done:
			c.drain()
		case <-timer.C:
			c.logger.Printf("input: worker still blocked after %v", c.grace)
			c.closeErr = ErrShutdownTimeout
			go func() {
				<-c.done
				c.drain()
			}()
		}
	})
	return c.closeErr
}

// drain empties the closed channel so a late receive sees closure
func (c *Channel) drain() {
	for range c.out {
	}
}
