package input

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keyflow/backend"
	"github.com/lixenwraith/keyflow/backend/native"
	tcellbackend "github.com/lixenwraith/keyflow/backend/tcell"
	"github.com/lixenwraith/keyflow/keys"
	"github.com/lixenwraith/keyflow/terminal"
)

func drainStream(t *testing.T, s *Stream) []keys.Event {
	t.Helper()
	var out []keys.Event
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for ev := range s.All(ctx) {
		out = append(out, ev)
	}
	if ctx.Err() != nil {
		t.Fatal("stream did not end in time")
	}
	return out
}

func TestStreamsMatchChannel(t *testing.T) {
	const n = 300

	viaChannel := collect(t, Spawn(context.Background(), &scriptSource[int]{items: ints(n)}, runeOf), 5*time.Second)
	viaPoll := drainStream(t, NewPollStream[int](&scriptSource[int]{items: ints(n)}, runeOf))
	viaBridge := drainStream(t, NewBridgedStream(context.Background(), &scriptSource[int]{items: ints(n)}, runeOf))

	if len(viaChannel) != n || len(viaPoll) != n || len(viaBridge) != n {
		t.Fatalf("Expected %d events each, got channel=%d poll=%d bridge=%d", n, len(viaChannel), len(viaPoll), len(viaBridge))
	}
	for i := range viaChannel {
		if viaPoll[i] != viaChannel[i] || viaBridge[i] != viaChannel[i] {
			t.Fatalf("event %d differs: channel=%v poll=%v bridge=%v", i, viaChannel[i], viaPoll[i], viaBridge[i])
		}
	}
}

func TestStreamEOFIsSticky(t *testing.T) {
	src := &scriptSource[int]{items: ints(1)}
	s := NewPollStream[int](src, runeOf)
	ctx := context.Background()

	if _, err := s.Next(ctx); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Next(ctx); !errors.Is(err, io.EOF) {
			t.Errorf("Expected io.EOF, got %v", err)
		}
	}
	if s.Err() != nil {
		t.Errorf("clean end should leave Err nil, got %v", s.Err())
	}
	if !src.closed.Load() {
		t.Error("source should be closed when the stream ends")
	}
}

func TestStreamReadFailure(t *testing.T) {
	cause := errors.New("EIO")
	for name, s := range map[string]*Stream{
		"Poll":    NewPollStream[int](&scriptSource[int]{end: cause}, runeOf),
		"Bridged": NewBridgedStream(context.Background(), &scriptSource[int]{end: cause}, runeOf),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
				t.Errorf("failure should end the stream with io.EOF, got %v", err)
			}
			if !errors.Is(s.Err(), backend.ErrReadFailed) {
				t.Errorf("Expected ErrReadFailed from Err, got %v", s.Err())
			}
		})
	}
}

func TestStreamSingleConsumer(t *testing.T) {
	src := &scriptSource[int]{block: true}
	s := NewPollStream[int](src, runeOf)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Next(ctx)

	deadline := time.Now().Add(time.Second)
	for src.reads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Next(context.Background()); !errors.Is(err, ErrStreamBusy) {
		t.Errorf("Expected ErrStreamBusy for concurrent Next, got %v", err)
	}
}

func TestStreamCancelEnds(t *testing.T) {
	for name, mk := range map[string]func() *Stream{
		"Poll": func() *Stream { return NewPollStream[int](&scriptSource[int]{block: true}, runeOf) },
		"Bridged": func() *Stream {
			return NewBridgedStream(context.Background(), &scriptSource[int]{block: true}, runeOf)
		},
	} {
		t.Run(name, func(t *testing.T) {
			s := mk()
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			if _, err := s.Next(ctx); !errors.Is(err, io.EOF) {
				t.Errorf("Expected io.EOF on cancellation, got %v", err)
			}
			if s.Err() != nil {
				t.Errorf("cancellation is clean, got %v", s.Err())
			}
			if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
				t.Errorf("stream must not restart, got %v", err)
			}
		})
	}
}

func TestStreamCloseWakesNext(t *testing.T) {
	s := NewBridgedStream(context.Background(), &scriptSource[int]{block: true}, runeOf)

	done := make(chan error, 1)
	go func() {
		_, err := s.Next(context.Background())
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, io.EOF) {
			t.Errorf("Expected io.EOF after Close, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("pending Next not woken by Close")
	}
	if s.Err() != nil {
		t.Errorf("Close is clean, got %v", s.Err())
	}
}

func TestStreamBreakClosesSource(t *testing.T) {
	src := &scriptSource[int]{items: ints(10)}
	s := NewPollStream[int](src, runeOf)

	n := 0
	for range s.All(context.Background()) {
		n++
		if n == 3 {
			break
		}
	}
	if !src.closed.Load() {
		t.Error("breaking out of All should close the source")
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF after break, got %v", err)
	}
}

func TestScenarioAcrossBackends(t *testing.T) {
	want := []keys.Event{
		keys.Char('a', keys.ModNone),
		keys.Char('c', keys.ModCtrl),
		keys.Navigation(keys.NavUp),
	}

	nativeSrc := &scriptSource[terminal.Event]{items: []terminal.Event{
		{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'a'},
		{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'c', Modifiers: terminal.ModCtrl},
		{Type: terminal.EventKey, Key: terminal.KeyUp},
	}}
	tcellSrc := &scriptSource[*tcell.EventKey]{items: []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
		tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone),
	}}

	results := map[string][]keys.Event{
		"native channel": collect(t, Spawn(context.Background(), nativeSrc, native.ToCanonical), time.Second),
		"tcell channel":  collect(t, Spawn(context.Background(), tcellSrc, tcellbackend.ToCanonical), time.Second),
	}

	nativeSrc.pos, tcellSrc.pos = 0, 0
	results["native poll"] = drainStream(t, NewPollStream[terminal.Event](nativeSrc, native.ToCanonical))
	results["tcell bridged"] = drainStream(t, NewBridgedStream(context.Background(), tcellSrc, tcellbackend.ToCanonical))

	for name, got := range results {
		if len(got) != len(want) {
			t.Errorf("%s: expected %d events, got %d", name, len(want), len(got))
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s event %d: expected %v, got %v", name, i, want[i], got[i])
			}
		}
	}
}
