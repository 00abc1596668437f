package bell

import (
	"io"
	"log"
	"sync/atomic"
)

// Logger receives degradation notices
type Logger interface {
	Printf(format string, v ...any)
}

// Option configures a Player
type Option func(*Player)

// WithLogger routes degradation notices to l
func WithLogger(l Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSink replaces subprocess detection with a custom PCM writer factory
func WithSink(open func() (io.WriteCloser, error)) Option {
	return func(p *Player) {
		if open != nil {
			p.open = open
		}
	}
}

// Player rings the bell through a PCM sink
// Missing audio support degrades to silence, never to an error
type Player struct {
	logger Logger
	open   func() (io.WriteCloser, error)

	volume float64
	muted  bool
	pcm    []byte

	out   io.WriteCloser
	queue chan struct{}
	stop  chan struct{}
	done  chan struct{}

	running atomic.Bool
	silent  atomic.Bool
	played  atomic.Uint64
	dropped atomic.Uint64
}

// New creates a muted player; Init configures it
func New(opts ...Option) *Player {
	p := &Player{
		logger: log.New(io.Discard, "", 0),
		open:   OpenDetected,
		volume: DefaultVolume,
		muted:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements service.Service
func (p *Player) Name() string { return "bell" }

// Dependencies implements service.Service
func (p *Player) Dependencies() []string { return nil }

// Init implements service.Service
// args[0]: bool - enabled (default false)
// args[1]: float64 - linear volume 0..1 (default DefaultVolume)
func (p *Player) Init(args ...any) error {
	if len(args) > 0 {
		if enabled, ok := args[0].(bool); ok {
			p.muted = !enabled
		}
	}
	if len(args) > 1 {
		if vol, ok := args[1].(float64); ok {
			p.volume = min(max(vol, 0), 1)
		}
	}
	if !p.muted {
		p.pcm = Render(Tone(p.volume))
	}
	return nil
}

// Start implements service.Service
// A sink that cannot be opened switches the player to silent mode
func (p *Player) Start() error {
	if p.muted || p.running.Load() {
		return nil
	}

	out, err := p.open()
	if err != nil {
		p.logger.Printf("bell: audio disabled: %v", err)
		p.silent.Store(true)
		p.running.Store(true)
		return nil
	}

	p.out = out
	p.queue = make(chan struct{}, 4)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop()
	p.running.Store(true)
	return nil
}

// Stop implements service.Service
func (p *Player) Stop() error {
	if !p.running.CompareAndSwap(true, false) || p.out == nil {
		return nil
	}
	close(p.stop)
	// Closing the sink unblocks a write stuck on a full pipe
	if err := p.out.Close(); err != nil {
		p.logger.Printf("bell: close sink: %v", err)
	}
	<-p.done
	return nil
}

// Ring queues one bell, reports false when muted, silent or saturated
func (p *Player) Ring() bool {
	if !p.running.Load() || p.silent.Load() || p.out == nil {
		return false
	}
	select {
	case p.queue <- struct{}{}:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Stats returns rung and dropped counts
func (p *Player) Stats() (played, dropped uint64) {
	return p.played.Load(), p.dropped.Load()
}

func (p *Player) loop() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case <-p.queue:
			if _, err := p.out.Write(p.pcm); err != nil {
				p.logger.Printf("bell: sink write: %v", err)
				p.silent.Store(true)
				return
			}
			p.played.Add(1)
		}
	}
}
