// @lixen: #focus{input[stream,async]}
package input

import (
	"context"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/keyflow/keys"
)

// Stream is a single-consumer, pull-based event source
// Once it ends (end of input, read failure, canceled Next, or Close) every Next returns io.EOF
type Stream struct {
	next    func(ctx context.Context) (keys.Event, error)
	release func() error
	logger  Logger

	busy atomic.Bool

	mu     sync.Mutex
	ended  bool
	closed bool
	err    error

	closeOnce sync.Once
	closeErr  error
}

// NewPollStream reads src on the goroutine calling Next, no background goroutine is started
// The stream owns src and closes it when the stream ends
func NewPollStream[K any](src PollSource[K], convert func(K) keys.Event, opts ...Option) *Stream {
	o := applyOptions(opts)
	return &Stream{
		next: func(ctx context.Context) (keys.Event, error) {
			k, err := src.Poll(ctx)
			if err != nil {
				return keys.Event{}, err
			}
			return convert(k), nil
		},
		release: src.Close,
		logger:  o.logger,
	}
}

// NewBridgedStream runs a Spawn worker over src and bridges its channel
// For backends whose read primitive can only block, a nil ctx behaves as in Spawn
func NewBridgedStream[K any](ctx context.Context, src Source[K], convert func(K) keys.Event, opts ...Option) *Stream {
	o := applyOptions(opts)
	ch := Spawn(ctx, src, convert, opts...)
	return &Stream{
		next: func(ctx context.Context) (keys.Event, error) {
			select {
			case ev, ok := <-ch.Events():
				if !ok {
					if err := ch.Err(); err != nil {
						return keys.Event{}, err
					}
					return keys.Event{}, io.EOF
				}
				return ev, nil
			case <-ctx.Done():
				return keys.Event{}, ctx.Err()
			}
		},
		release: ch.Close,
		logger:  o.logger,
	}
}

// Next waits for the next event
// Returns io.EOF once the stream is over and ErrStreamBusy if another Next is pending
func (s *Stream) Next(ctx context.Context) (keys.Event, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return keys.Event{}, ErrStreamBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	ended := s.ended
	s.mu.Unlock()
	if ended {
		return keys.Event{}, io.EOF
	}

	ev, err := s.next(ctx)
	if err == nil {
		return ev, nil
	}

	s.mu.Lock()
	if !s.ended {
		s.ended = true
		if !s.closed {
			s.err = classify(ctx, err)
		}
	}
	cause := s.err
	s.mu.Unlock()

	if cause != nil {
		s.logger.Printf("input: stream ended: %v", cause)
	}
	_ = s.Close()
	return keys.Event{}, io.EOF
}

// All returns the remaining events as a sequence
// The stream is closed when the loop ends, including on break
func (s *Stream) All(ctx context.Context) iter.Seq[keys.Event] {
	return func(yield func(keys.Event) bool) {
		defer s.Close()
		for {
			ev, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// Close ends the stream and releases the source; idempotent
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.ended = true
		s.mu.Unlock()
		s.closeErr = s.release()
	})
	return s.closeErr
}

// Err returns why the stream ended: nil for end of input, cancellation or Close,
// otherwise an error wrapping backend.ErrReadFailed
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
