package main

import (
	"fmt"

	"github.com/lixenwraith/keyflow/termio"
)

// terminalService owns the backend for the lifetime of the process
type terminalService struct {
	opts termio.Options
	term *termio.Terminal
}

func newTerminalService(opts termio.Options) *terminalService {
	return &terminalService{opts: opts}
}

func (s *terminalService) Name() string           { return "terminal" }
func (s *terminalService) Dependencies() []string { return nil }

func (s *terminalService) Init(...any) error {
	t, err := termio.Open(s.opts)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", termio.BackendName, err)
	}
	s.term = t
	return nil
}

func (s *terminalService) Start() error { return nil }

func (s *terminalService) Stop() error {
	if s.term == nil {
		return nil
	}
	t := s.term
	s.term = nil
	return termio.Close(t)
}

// Terminal returns the opened backend, nil before Init or after Stop
func (s *terminalService) Terminal() *termio.Terminal { return s.term }
