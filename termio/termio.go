// Package termio binds the compiled-in backend to the input, session and surface layers.
//
// The backend is chosen at build time:
//
//	go build ./...              native driver on Unix, tcell elsewhere
//	go build -tags tcell ./...  tcell everywhere (wins if both are requested)
//
// Delivery modes are separate entry points (ReadKey, Spawn, NewStream); a binary
// links only the ones it calls.
package termio

import (
	"context"
	"time"

	"github.com/lixenwraith/keyflow/input"
	"github.com/lixenwraith/keyflow/keys"
	"github.com/lixenwraith/keyflow/session"
)

// Options configures Open; fields a backend cannot honor are ignored
type Options struct {
	EscapeTimeout time.Duration
	PollInterval  time.Duration
}

// Run holds the terminal guard while fn runs
func Run(t *Terminal, fn func(*session.Guard) error, opts ...session.Option) error {
	return session.Run(t, fn, opts...)
}

// Enter claims the terminal guard
func Enter(t *Terminal, opts ...session.Option) (*session.Guard, error) {
	return session.Enter(t, opts...)
}

// ReadKey performs one blocking read without a producer goroutine
func ReadKey(ctx context.Context, t *Terminal) (keys.Event, error) {
	return input.ReadOne[RawEvent](ctx, t, ToCanonical)
}

// Spawn starts a channel producer over the terminal
func Spawn(ctx context.Context, t *Terminal, opts ...input.Option) *input.Channel {
	return input.Spawn[RawEvent](ctx, t, ToCanonical, opts...)
}
