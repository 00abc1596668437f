package input

import (
	"io"
	"log"
	"time"
)

const (
	// DefaultCapacity is the bounded channel size
	DefaultCapacity = 256
	// DefaultShutdownGrace bounds how long Close waits for the worker
	DefaultShutdownGrace = 100 * time.Millisecond
)

// Logger receives worker diagnostics
type Logger interface {
	Printf(format string, v ...any)
}

type options struct {
	capacity  int
	unbounded bool
	grace     time.Duration
	logger    Logger
}

func defaultOptions() options {
	return options{
		capacity: DefaultCapacity,
		grace:    DefaultShutdownGrace,
		logger:   log.New(io.Discard, "", 0),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures Spawn and the streams
type Option func(*options)

// WithCapacity sets the bounded channel size, values below 1 select 1
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = max(n, 1)
	}
}

// WithUnbounded selects the never-blocking producer backed by an ordered queue
func WithUnbounded() Option {
	return func(o *options) {
		o.unbounded = true
	}
}

// WithShutdownGrace sets how long Close waits for the worker
func WithShutdownGrace(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.grace = d
		}
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
