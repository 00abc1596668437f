package input

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/keyflow/keys"
)

// scriptSource replays items, then returns end (io.EOF when nil) or blocks until canceled
type scriptSource[K any] struct {
	mu    sync.Mutex
	items []K
	pos   int
	end   error
	block bool // Block on ctx after the script instead of returning end
	reads atomic.Int64

	closed atomic.Bool
}

func (s *scriptSource[K]) ReadKey(ctx context.Context) (K, error) {
	s.reads.Add(1)
	s.mu.Lock()
	if s.pos < len(s.items) {
		k := s.items[s.pos]
		s.pos++
		s.mu.Unlock()
		return k, nil
	}
	s.mu.Unlock()

	var zero K
	if s.block {
		<-ctx.Done()
		return zero, ctx.Err()
	}
	if s.end != nil {
		return zero, s.end
	}
	return zero, io.EOF
}

func (s *scriptSource[K]) Poll(ctx context.Context) (K, error) {
	var zero K
	if s.closed.Load() {
		return zero, errSourceClosed
	}
	return s.ReadKey(ctx)
}

func (s *scriptSource[K]) Close() error {
	s.closed.Store(true)
	return nil
}

var errSourceClosed = fmt.Errorf("source closed")

// counterSource yields 0, 1, 2, ... forever
type counterSource struct {
	reads atomic.Int64
}

func (s *counterSource) ReadKey(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int(s.reads.Add(1) - 1), nil
}

// stuckSource ignores cancellation until released
type stuckSource struct {
	release chan struct{}
}

func (s *stuckSource) ReadKey(ctx context.Context) (int, error) {
	<-s.release
	return 0, io.EOF
}

func runeOf(i int) keys.Event {
	return keys.Char(rune('a'+i%26), keys.ModNone)
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) Printf(format string, v ...any) {
	c.mu.Lock()
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
	c.mu.Unlock()
}

func (c *captureLogger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
