// Command keyflow echoes canonical key events through the compiled-in terminal backend
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/lixenwraith/keyflow/bell"
	"github.com/lixenwraith/keyflow/config"
	"github.com/lixenwraith/keyflow/service"
	"github.com/lixenwraith/keyflow/session"
	"github.com/lixenwraith/keyflow/termio"
)

type flags struct {
	config   string
	delivery config.Delivery
	capacity int
	logFile  string
	bell     bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{}
	fs.StringVar(&f.config, "config", config.Path(), "config file path")
	fs.Var(&f.delivery, "delivery", "input delivery: none, channel, unbounded, stream")
	fs.IntVar(&f.capacity, "capacity", 0, "bounded channel capacity")
	fs.StringVar(&f.logFile, "log", "", "debug log file")
	fs.BoolVar(&f.bell, "bell", false, "ring on unmapped keys")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// apply overrides config values with the flags set on the command line
func (f *flags) apply(fs *flag.FlagSet, cfg *config.Config) error {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "delivery":
			cfg.Input.Delivery = f.delivery
		case "capacity":
			cfg.Input.Capacity = f.capacity
		case "log":
			cfg.Log.File = f.logFile
		case "bell":
			cfg.App.Bell = f.bell
		}
	})
	return cfg.Validate()
}

// setupLogging routes the standard logger to path, or discards it when path is empty
// The terminal is owned by the app, so logs never go to stdout or stderr
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil, err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetPrefix("[keyflow] ")
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("keyflow", flag.ContinueOnError)
	f, err := parseFlags(fs, args)
	if err != nil {
		return 2
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
		return 1
	}
	if err := f.apply(fs, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
		return 1
	}

	logFile, err := setupLogging(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyflow: log file: %v (continuing without log)\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	quit, err := cfg.QuitEvents()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
		return 1
	}

	term := newTerminalService(termio.Options{
		EscapeTimeout: cfg.Input.EscapeTimeout.Duration,
		PollInterval:  cfg.Input.PollInterval.Duration,
	})
	player := bell.New(bell.WithLogger(log.Default()))

	hub := service.NewHub(log.Default())
	for _, svc := range []service.Service{term, player} {
		if err := hub.Register(svc); err != nil {
			fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
			return 1
		}
	}
	if err := hub.InitAll(map[string][]any{
		player.Name(): {cfg.App.Bell, cfg.App.BellVolume},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
		return 1
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
		return 1
	}
	defer hub.StopAll()

	crashTerminal.Store(term.Terminal())
	defer func() {
		if r := recover(); r != nil {
			handleCrash(r)
		}
	}()

	a := &app{
		term:   term.Terminal(),
		input:  cfg.Input,
		quit:   quit,
		ring:   player.Ring,
		keyLog: newKeyLog(maxLogLines),
	}
	err = termio.Run(a.term, a.run, session.WithLogger(log.Default()))
	if err != nil && !errors.Is(err, errQuit) {
		log.Printf("exit: %v", err)
		fmt.Fprintf(os.Stderr, "keyflow: %v\n", err)
		return 1
	}
	return 0
}
