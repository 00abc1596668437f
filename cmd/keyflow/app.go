package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/keyflow/config"
	"github.com/lixenwraith/keyflow/input"
	"github.com/lixenwraith/keyflow/keys"
	"github.com/lixenwraith/keyflow/session"
	"github.com/lixenwraith/keyflow/surface"
	"github.com/lixenwraith/keyflow/termio"
)

const maxLogLines = 256

var errQuit = errors.New("quit requested")

var (
	styleTitle  = surface.StyleDefault.Foreground(surface.RGB(200, 200, 200)).Background(surface.RGB(40, 40, 60)).With(surface.AttrBold)
	styleRule   = surface.StyleDefault.Foreground(surface.RGB(60, 60, 80))
	styleEntry  = surface.StyleDefault.Foreground(surface.RGB(180, 180, 180))
	styleStatus = surface.StyleDefault.Foreground(surface.RGB(140, 140, 160))
	styleAlert  = surface.StyleDefault.Foreground(surface.RGB(255, 120, 80))
)

// app echoes key events until a quit key arrives
type app struct {
	term   *termio.Terminal
	input  config.InputConfig
	quit   []keys.Event
	ring   func() bool
	keyLog *keyLog

	count   int
	unknown int
}

// next yields one canonical event; io.EOF ends input cleanly
type nextFunc func(ctx context.Context) (keys.Event, error)

// run executes while the terminal guard is held
func (a *app) run(g *session.Guard) error {
	log.Printf("session: %s backend, delivery %s, prior modes %+v", termio.BackendName, a.input.Delivery, g.Prior())

	surf, err := termio.MakeSurface(a.term)
	if err != nil {
		return err
	}
	defer surf.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	next, closeInput, err := a.openInput(ctx)
	if err != nil {
		return err
	}
	defer closeInput()

	return a.loop(ctx, surf, next)
}

// loop pumps events from next to the renderer until a quit key, end of input or a failure
func (a *app) loop(ctx context.Context, surf surface.Surface, next nextFunc) error {
	eg, ctx := errgroup.WithContext(ctx)
	events := make(chan keys.Event)

	eg.Go(crashSafe(func() error {
		defer close(events)
		for {
			ev, err := next(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}))

	eg.Go(crashSafe(func() error {
		a.render(surf)
		if err := surf.Show(); err != nil {
			return err
		}
		for ev := range events {
			if a.handle(ev) {
				return errQuit
			}
			a.render(surf)
			if err := surf.Show(); err != nil {
				return err
			}
		}
		return nil
	}))

	return eg.Wait()
}

// openInput builds the reader for the configured delivery mode
func (a *app) openInput(ctx context.Context) (nextFunc, func(), error) {
	opts := []input.Option{
		input.WithCapacity(a.input.Capacity),
		input.WithShutdownGrace(a.input.ShutdownGrace.Duration),
		input.WithLogger(log.Default()),
	}

	switch a.input.Delivery {
	case config.DeliveryNone:
		return func(ctx context.Context) (keys.Event, error) {
			return termio.ReadKey(ctx, a.term)
		}, func() {}, nil

	case config.DeliveryChannel, config.DeliveryUnbounded:
		if a.input.Delivery == config.DeliveryUnbounded {
			opts = append(opts, input.WithUnbounded())
		}
		ch := termio.Spawn(ctx, a.term, opts...)
		next := func(ctx context.Context) (keys.Event, error) {
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
				return keys.Event{}, io.EOF
			}
		}
		return next, func() { logClose("input channel", ch.Close()) }, nil

	case config.DeliveryStream:
		s, err := termio.NewStream(ctx, a.term, opts...)
		if err != nil {
			return nil, nil, err
		}
		next := func(ctx context.Context) (keys.Event, error) {
			ev, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				if cause := s.Err(); cause != nil {
					return keys.Event{}, cause
				}
			}
			return ev, err
		}
		return next, func() { logClose("input stream", s.Close()) }, nil
	}
	return nil, nil, fmt.Errorf("%w: delivery %q", config.ErrInvalid, a.input.Delivery)
}

func logClose(what string, err error) {
	if err != nil {
		log.Printf("%s close: %v", what, err)
	}
}

// handle records ev and reports whether it is a quit key
func (a *app) handle(ev keys.Event) bool {
	if slices.Contains(a.quit, ev) {
		log.Printf("quit on %s", ev)
		return true
	}
	a.count++
	if ev.IsUnknown() {
		a.unknown++
		if a.ring != nil {
			a.ring()
		}
	}
	a.keyLog.add(describe(ev))
	return false
}

// describe renders a log entry: canonical name plus the variant
func describe(ev keys.Event) string {
	switch ev.Kind {
	case keys.KindChar:
		return fmt.Sprintf("KEY  %-16s char %q", ev, ev.Rune)
	case keys.KindFunction:
		return fmt.Sprintf("KEY  %-16s function %d", ev, ev.Fn)
	case keys.KindNav:
		return fmt.Sprintf("KEY  %-16s navigation", ev)
	case keys.KindControl:
		return fmt.Sprintf("KEY  %-16s control", ev)
	default:
		return fmt.Sprintf("???  %s", ev.Raw)
	}
}

func (a *app) render(s surface.Surface) {
	w, h := s.Size()
	s.Clear()
	if w <= 0 || h <= 0 {
		return
	}

	names := make([]string, len(a.quit))
	for i, q := range a.quit {
		names[i] = q.String()
	}
	title := fmt.Sprintf(" keyflow - press keys - quit: %v ", names)
	surface.Fill(s, 0, 0, w, ' ', styleTitle)
	surface.DrawText(s, max((w-surface.TextWidth(title))/2, 0), 0, title, styleTitle)
	if h < 4 {
		return
	}
	surface.Fill(s, 0, 1, w, '─', styleRule)

	rows := h - 4
	for i, entry := range a.keyLog.tail(rows) {
		style := styleEntry
		if entry[0] == '?' {
			style = styleAlert
		}
		surface.DrawText(s, 1, 2+i, surface.Truncate(entry, w-2, "…"), style)
	}

	surface.Fill(s, 0, h-2, w, '─', styleRule)
	status := fmt.Sprintf("backend: %s | delivery: %s | size: %dx%d | keys: %d | unknown: %d",
		termio.BackendName, a.input.Delivery, w, h, a.count, a.unknown)
	surface.DrawText(s, 1, h-1, surface.Truncate(status, w-2, "…"), styleStatus)
}

// keyLog keeps the most recent entries
type keyLog struct {
	entries []string
	limit   int
}

func newKeyLog(limit int) *keyLog {
	return &keyLog{entries: make([]string, 0, limit), limit: limit}
}

func (l *keyLog) add(s string) {
	if len(l.entries) >= l.limit {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.limit-1]
	}
	l.entries = append(l.entries, s)
}

// tail returns up to n newest entries, oldest first
func (l *keyLog) tail(n int) []string {
	if n <= 0 {
		return nil
	}
	if n >= len(l.entries) {
		return l.entries
	}
	return l.entries[len(l.entries)-n:]
}
