// Package config loads the keyflow TOML configuration.
//
// A missing file yields defaults; unknown keys are rejected so typos surface early.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/keyflow/input"
	"github.com/lixenwraith/keyflow/keys"
)

const fileName = "keyflow.toml"

var (
	ErrInvalid    = errors.New("invalid config")
	ErrUnknownKey = errors.New("unknown config key")
)

// Delivery selects how key events reach the application
type Delivery string

const (
	DeliveryNone      Delivery = "none"      // synchronous ReadKey on the caller
	DeliveryChannel   Delivery = "channel"   // bounded worker channel
	DeliveryUnbounded Delivery = "unbounded" // worker channel with unbounded queue
	DeliveryStream    Delivery = "stream"    // pull-based async stream
)

// Deliveries lists the accepted delivery modes
var Deliveries = []Delivery{DeliveryNone, DeliveryChannel, DeliveryUnbounded, DeliveryStream}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Delivery) UnmarshalText(text []byte) error {
	v := Delivery(strings.ToLower(strings.TrimSpace(string(text))))
	for _, known := range Deliveries {
		if v == known {
			*d = v
			return nil
		}
	}
	return fmt.Errorf("%w: delivery %q", ErrInvalid, text)
}

// Set implements flag.Value
func (d *Delivery) Set(s string) error { return d.UnmarshalText([]byte(s)) }

func (d Delivery) String() string { return string(d) }

// Duration is a time.Duration written as a string, e.g. "50ms"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %w", ErrInvalid, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the decoded keyflow.toml
type Config struct {
	Input InputConfig `toml:"input"`
	App   AppConfig   `toml:"app"`
	Log   LogConfig   `toml:"log"`
}

type InputConfig struct {
	Delivery      Delivery `toml:"delivery"`
	Capacity      int      `toml:"capacity"`
	EscapeTimeout Duration `toml:"escape_timeout"`
	PollInterval  Duration `toml:"poll_interval"`
	ShutdownGrace Duration `toml:"shutdown_grace"`
}

type AppConfig struct {
	QuitKeys   []string `toml:"quit_keys"`
	Bell       bool     `toml:"bell"`
	BellVolume float64  `toml:"bell_volume"`
}

type LogConfig struct {
	File string `toml:"file"` // empty discards logs
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Input: InputConfig{
			Delivery:      DeliveryChannel,
			Capacity:      input.DefaultCapacity,
			EscapeTimeout: Duration{50 * time.Millisecond},
			PollInterval:  Duration{100 * time.Millisecond},
			ShutdownGrace: Duration{input.DefaultShutdownGrace},
		},
		App: AppConfig{
			QuitKeys:   []string{"escape", "q", "ctrl+c"},
			BellVolume: 0.5,
		},
	}
}

// Path returns $XDG_CONFIG_HOME/keyflow.toml, falling back to ~/.config/keyflow.toml
// Empty when no home directory can be resolved
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, fileName)
}

// Load reads path over the defaults; a missing file or empty path returns defaults
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg, err := Decode(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML over the defaults and validates the result
func Decode(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		names := make([]string, len(undecoded))
		for i, k := range undecoded {
			names[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(names, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and key names
func (c Config) Validate() error {
	var d Delivery
	if err := d.UnmarshalText([]byte(c.Input.Delivery)); err != nil {
		return err
	}
	if c.Input.Capacity < 1 {
		return fmt.Errorf("%w: input.capacity must be at least 1, got %d", ErrInvalid, c.Input.Capacity)
	}
	for name, v := range map[string]time.Duration{
		"input.escape_timeout": c.Input.EscapeTimeout.Duration,
		"input.poll_interval":  c.Input.PollInterval.Duration,
		"input.shutdown_grace": c.Input.ShutdownGrace.Duration,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, v)
		}
	}
	if c.App.BellVolume < 0 || c.App.BellVolume > 1 {
		return fmt.Errorf("%w: app.bell_volume must be within 0..1, got %v", ErrInvalid, c.App.BellVolume)
	}
	if _, err := c.QuitEvents(); err != nil {
		return err
	}
	return nil
}

// QuitEvents resolves app.quit_keys to canonical events
func (c Config) QuitEvents() ([]keys.Event, error) {
	events := make([]keys.Event, 0, len(c.App.QuitKeys))
	for _, name := range c.App.QuitKeys {
		ev, err := keys.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: app.quit_keys: %w", ErrInvalid, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
