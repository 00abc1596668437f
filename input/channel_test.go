package input

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/keys"
)

func collect(t *testing.T, c *Channel, timeout time.Duration) []keys.Event {
	t.Helper()
	var out []keys.Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("channel not closed after %v, got %d events", timeout, len(out))
		}
	}
}

func TestSpawnDeliversInOrder(t *testing.T) {
	variants := []struct {
		name string
		opts []Option
	}{
		{"Bounded", nil},
		{"Bounded capacity 1", []Option{WithCapacity(1)}},
		{"Unbounded", []Option{WithUnbounded()}},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			const n = 1000
			src := &scriptSource[int]{items: ints(n)}
			c := Spawn(context.Background(), src, runeOf, v.opts...)

			got := collect(t, c, 5*time.Second)
			if len(got) != n {
				t.Fatalf("Expected %d events, got %d", n, len(got))
			}
			for i, ev := range got {
				if ev != runeOf(i) {
					t.Fatalf("event %d: expected %v, got %v", i, runeOf(i), ev)
				}
			}
			if err := c.Err(); err != nil {
				t.Errorf("clean end of input should leave Err nil, got %v", err)
			}
			<-c.Done()
		})
	}
}

func TestSpawnBackpressure(t *testing.T) {
	src := &counterSource{}
	c := Spawn(context.Background(), src, runeOf, WithCapacity(2))
	defer c.Close()

	time.Sleep(50 * time.Millisecond)
	// Capacity 2 buffered, one converted event held by the blocked send, one read in flight at most
	if reads := src.reads.Load(); reads > 4 {
		t.Errorf("producer should block on a full channel, made %d reads", reads)
	}

	// Nothing was dropped
	for i := 0; i < 10; i++ {
		ev := <-c.Events()
		if ev != runeOf(i) {
			t.Fatalf("event %d: expected %v, got %v", i, runeOf(i), ev)
		}
	}
}

func TestSpawnUnboundedNeverBlocks(t *testing.T) {
	const n = 500
	src := &scriptSource[int]{items: ints(n)}
	c := Spawn(context.Background(), src, runeOf, WithUnbounded())

	// Producer finishes the whole script without a consumer
	deadline := time.Now().Add(2 * time.Second)
	for src.reads.Load() < n+1 {
		if time.Now().After(deadline) {
			t.Fatalf("unbounded producer blocked after %d reads", src.reads.Load())
		}
		time.Sleep(time.Millisecond)
	}

	got := collect(t, c, 2*time.Second)
	if len(got) != n {
		t.Fatalf("Expected %d events, got %d", n, len(got))
	}
	for i, ev := range got {
		if ev != runeOf(i) {
			t.Fatalf("event %d out of order", i)
		}
	}
}

func TestSpawnReadErrorClosesChannel(t *testing.T) {
	cause := errors.New("read /dev/tty: input/output error")
	src := &scriptSource[int]{items: ints(2), end: cause}
	logger := &captureLogger{}
	c := Spawn(context.Background(), src, runeOf, WithLogger(logger))

	got := collect(t, c, time.Second)
	if len(got) != 2 {
		t.Errorf("events before the failure should be delivered, got %d", len(got))
	}
	err := c.Err()
	if !errors.Is(err, backend.ErrReadFailed) {
		t.Errorf("Expected ErrReadFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause should be wrapped, got %v", err)
	}
	if logger.count() == 0 {
		t.Error("read failure should be logged")
	}
}

func TestSpawnCloseStopsWorker(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithUnbounded()}} {
		src := &scriptSource[int]{block: true}
		c := Spawn(context.Background(), src, runeOf, opts...)

		start := time.Now()
		if err := c.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if d := time.Since(start); d > 500*time.Millisecond {
			t.Errorf("Close took %v", d)
		}

		select {
		case <-c.Done():
		default:
			t.Error("worker should have exited")
		}
		if _, ok := <-c.Events(); ok {
			t.Error("no events expected after Close")
		}
		if err := c.Err(); err != nil {
			t.Errorf("Close is a clean stop, got %v", err)
		}
	}
}

func TestSpawnCloseDiscardsBuffered(t *testing.T) {
	src := &scriptSource[int]{items: ints(5), block: true}
	c := Spawn(context.Background(), src, runeOf, WithCapacity(16))

	// Let the producer fill the buffer
	deadline := time.Now().Add(time.Second)
	for src.reads.Load() < 6 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	c.Close()
	if _, ok := <-c.Events(); ok {
		t.Error("buffered events must not be delivered after Close")
	}
}

func TestSpawnCloseTimeout(t *testing.T) {
	src := &stuckSource{release: make(chan struct{})}
	c := Spawn(context.Background(), src, runeOf, WithShutdownGrace(20*time.Millisecond))

	if err := c.Close(); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Expected ErrShutdownTimeout, got %v", err)
	}
	if err := c.Close(); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Close should be idempotent, got %v", err)
	}

	close(src.release)
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("worker should exit once the read returns")
	}
}

func TestSpawnParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptSource[int]{block: true}
	c := Spawn(ctx, src, runeOf)

	cancel()
	collect(t, c, time.Second)
	if err := c.Err(); err != nil {
		t.Errorf("cancellation is a clean stop, got %v", err)
	}
}

func TestSpawnNilContext(t *testing.T) {
	c := Spawn(nil, &scriptSource[int]{items: ints(3)}, runeOf)
	if got := collect(t, c, time.Second); len(got) != 3 {
		t.Errorf("Expected 3 events, got %d", len(got))
	}

	blocked := Spawn(nil, &scriptSource[int]{block: true}, runeOf)
	if err := blocked.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	s := NewBridgedStream(nil, &scriptSource[int]{items: ints(1)}, runeOf)
	defer s.Close()
	ev, err := s.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev != runeOf(0) {
		t.Errorf("Expected %v, got %v", runeOf(0), ev)
	}
}

func TestSpawnRecoversPanic(t *testing.T) {
	src := &scriptSource[int]{items: ints(3)}
	logger := &captureLogger{}
	convert := func(i int) keys.Event {
		if i == 1 {
			panic("bad key")
		}
		return runeOf(i)
	}
	c := Spawn(context.Background(), src, convert, WithLogger(logger))

	got := collect(t, c, time.Second)
	if len(got) != 1 {
		t.Errorf("Expected 1 event before the panic, got %d", len(got))
	}
	if !errors.Is(c.Err(), backend.ErrReadFailed) {
		t.Errorf("Expected ErrReadFailed after panic, got %v", c.Err())
	}
	if logger.count() == 0 {
		t.Error("panic should be logged")
	}
}

func TestReadOne(t *testing.T) {
	src := &scriptSource[int]{items: []int{2}}
	ev, err := ReadOne(context.Background(), src, runeOf)
	if err != nil || ev != runeOf(2) {
		t.Errorf("Expected %v, got %v (%v)", runeOf(2), ev, err)
	}

	if _, err := ReadOne(context.Background(), src, runeOf); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got %v", err)
	}

	failing := SourceFunc[int](func(context.Context) (int, error) { return 0, errors.New("EIO") })
	if _, err := ReadOne(context.Background(), failing, runeOf); !errors.Is(err, backend.ErrReadFailed) {
		t.Errorf("Expected ErrReadFailed, got %v", err)
	}
}

func TestQueueOrder(t *testing.T) {
	q := newQueue()
	for i := 0; i < 100; i++ {
		q.push(runeOf(i))
	}
	if q.len() != 100 {
		t.Errorf("Expected 100 queued, got %d", q.len())
	}
	q.close()

	out := make(chan keys.Event, 100)
	q.drainTo(context.Background(), out)
	close(out)

	i := 0
	for ev := range out {
		if ev != runeOf(i) {
			t.Fatalf("item %d out of order", i)
		}
		i++
	}
	if i != 100 {
		t.Errorf("Expected 100 items, got %d", i)
	}
}
