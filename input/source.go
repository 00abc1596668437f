package input

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/keys"
)

var (
	// ErrShutdownTimeout is returned by Close when the worker is still blocked after the grace period
	ErrShutdownTimeout = errors.New("input worker did not stop within grace period")
	// ErrStreamBusy is returned by Next while another Next is pending
	ErrStreamBusy = errors.New("stream already has a pending Next")
)

// Source is a blocking backend read primitive
// ReadKey returns io.EOF at end of input and ctx.Err() when canceled
type Source[K any] interface {
	ReadKey(ctx context.Context) (K, error)
}

// PollSource reads on the caller's goroutine using readiness notification
type PollSource[K any] interface {
	Poll(ctx context.Context) (K, error)
	Close() error
}

// SourceFunc adapts a function to Source
type SourceFunc[K any] func(ctx context.Context) (K, error)

func (f SourceFunc[K]) ReadKey(ctx context.Context) (K, error) { return f(ctx) }

// ReadOne performs a single blocking read and conversion without a producer
// Clean ends (EOF, cancellation) are returned as io.EOF, other failures wrap backend.ErrReadFailed
func ReadOne[K any](ctx context.Context, src Source[K], convert func(K) keys.Event) (keys.Event, error) {
	k, err := src.ReadKey(ctx)
	if err != nil {
		if cause := classify(ctx, err); cause != nil {
			return keys.Event{}, cause
		}
		return keys.Event{}, io.EOF
	}
	return convert(k), nil
}

// classify returns nil for clean termination, otherwise an error wrapping backend.ErrReadFailed
func classify(ctx context.Context, err error) error {
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	case ctx != nil && ctx.Err() != nil:
		return nil
	case errors.Is(err, backend.ErrReadFailed):
		return err
	}
	return fmt.Errorf("%w: %w", backend.ErrReadFailed, err)
}
