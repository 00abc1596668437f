package bell

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
)

func TestToneLength(t *testing.T) {
	pcm := Render(Tone(1))
	want := SampleRate.N(toneDuration) * bytesPerFrame
	if len(pcm) != want {
		t.Errorf("Expected %d bytes, got %d", want, len(pcm))
	}
}

func TestToneEnvelope(t *testing.T) {
	pcm := Render(Tone(1))

	first := int16(binary.LittleEndian.Uint16(pcm[0:]))
	if first != 0 {
		t.Errorf("Expected silent first frame, got %d", first)
	}

	var peak int16
	for i := 0; i+1 < len(pcm); i += 2 {
		v := int16(binary.LittleEndian.Uint16(pcm[i:]))
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	if peak < 1000 {
		t.Errorf("Expected audible peak, got %d", peak)
	}
}

func TestToneMutedVolume(t *testing.T) {
	for i, b := range Render(Tone(0)) {
		if b != 0 {
			t.Fatalf("Expected silence at volume 0, byte %d = %d", i, b)
		}
	}
}

func TestToInt16Clipping(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{0.5, 16383},
		{-0.5, -16383},
	}
	for _, tt := range tests {
		if got := toInt16(tt.in); got != tt.want {
			t.Errorf("toInt16(%v): Expected %d, got %d", tt.in, tt.want, got)
		}
	}
	// Soft limiting compresses above 0.8 and never reaches full scale
	soft := toInt16(0.9)
	if soft <= 26213 { // 0.8 of full scale
		t.Errorf("Expected 0.9 above the knee, got %d", soft)
	}
	loud := toInt16(5)
	if loud <= soft || loud == 32767 {
		t.Errorf("Expected limited value between %d and 32767, got %d", soft, loud)
	}
	if toInt16(-5) != -loud {
		t.Errorf("Expected symmetric limiting, got %d", toInt16(-5))
	}
}

// fakeSink records writes; block stalls Write until Close
type fakeSink struct {
	mu       sync.Mutex
	writes   int
	closed   bool
	block    chan struct{}
	writeErr error
	wrote    chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{wrote: make(chan struct{}, 16)}
}

func (f *fakeSink) Write(p []byte) (int, error) {
	if f.block != nil {
		<-f.block
		return 0, io.ErrClosedPipe
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	f.wrote <- struct{}{}
	return len(p), nil
}

func (f *fakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed && f.block != nil {
		close(f.block)
	}
	f.closed = true
	return nil
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

func startPlayer(t *testing.T, sink *fakeSink, args ...any) *Player {
	t.Helper()
	p := New(WithSink(func() (io.WriteCloser, error) { return sink, nil }))
	if err := p.Init(args...); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return p
}

func TestPlayerRing(t *testing.T) {
	sink := newFakeSink()
	p := startPlayer(t, sink, true, 0.5)

	if !p.Ring() {
		t.Fatal("Expected Ring to queue")
	}
	select {
	case <-sink.wrote:
	case <-time.After(time.Second):
		t.Fatal("Expected a sink write")
	}

	if err := p.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if !sink.closed {
		t.Error("Expected sink closed on Stop")
	}
	if played, _ := p.Stats(); played != 1 {
		t.Errorf("Expected 1 played, got %d", played)
	}
	if p.Ring() {
		t.Error("Expected Ring to fail after Stop")
	}
	if err := p.Stop(); err != nil {
		t.Errorf("Expected idempotent Stop, got %v", err)
	}
}

func TestPlayerMutedByDefault(t *testing.T) {
	opened := false
	p := New(WithSink(func() (io.WriteCloser, error) {
		opened = true
		return newFakeSink(), nil
	}))
	_ = p.Init()
	_ = p.Start()

	if opened {
		t.Error("Expected muted player not to open a sink")
	}
	if p.Ring() {
		t.Error("Expected Ring to report false when muted")
	}
	if err := p.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestPlayerDegradesToSilent(t *testing.T) {
	logger := &captureLogger{}
	p := New(
		WithLogger(logger),
		WithSink(func() (io.WriteCloser, error) { return nil, ErrNoBackend }),
	)
	_ = p.Init(true)

	if err := p.Start(); err != nil {
		t.Fatalf("Expected silent degradation, got %v", err)
	}
	if p.Ring() {
		t.Error("Expected Ring to report false in silent mode")
	}
	if len(logger.lines) != 1 {
		t.Errorf("Expected 1 log line, got %v", logger.lines)
	}
	_ = p.Stop()
}

func TestPlayerWriteErrorSilences(t *testing.T) {
	sink := newFakeSink()
	sink.writeErr = errors.New("broken pipe")
	p := startPlayer(t, sink, true)

	p.Ring()
	deadline := time.Now().Add(time.Second)
	for !p.silent.Load() {
		if time.Now().After(deadline) {
			t.Fatal("Expected player to go silent after write error")
		}
		time.Sleep(time.Millisecond)
	}
	if p.Ring() {
		t.Error("Expected Ring to report false after write error")
	}
	_ = p.Stop()
}

func TestPlayerDropsWhenSaturated(t *testing.T) {
	sink := newFakeSink()
	sink.block = make(chan struct{})
	p := startPlayer(t, sink, true)

	accepted := 0
	for range 16 {
		if p.Ring() {
			accepted++
		}
	}
	// One in flight plus the queue capacity at most
	if accepted > 5 {
		t.Errorf("Expected at most 5 accepted, got %d", accepted)
	}
	if _, dropped := p.Stats(); dropped == 0 {
		t.Error("Expected dropped rings")
	}

	done := make(chan struct{})
	go func() {
		_ = p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Stop to unblock a stalled write")
	}
}

func TestPlayerService(t *testing.T) {
	p := New()
	if p.Name() != "bell" {
		t.Errorf("Expected name bell, got %q", p.Name())
	}
	if len(p.Dependencies()) != 0 {
		t.Errorf("Expected no dependencies, got %v", p.Dependencies())
	}
}
