package keys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnknownName is returned by Parse for names that do not resolve to a key
var ErrUnknownName = errors.New("unknown key name")

// navToName maps navigation keys to canonical config names
var navToName = map[NavKey]string{
	NavUp:       "up",
	NavDown:     "down",
	NavLeft:     "left",
	NavRight:    "right",
	NavHome:     "home",
	NavEnd:      "end",
	NavPageUp:   "page_up",
	NavPageDown: "page_down",
	NavInsert:   "insert",
	NavDelete:   "delete",
}

var controlToName = map[ControlKey]string{
	ControlBackspace: "backspace",
	ControlEnter:     "enter",
	ControlEscape:    "escape",
	ControlTab:       "tab",
	ControlBackTab:   "backtab",
}

// Characters that collide with the name syntax
var runeToName = map[rune]string{
	' ': "space",
	'+': "plus",
}

var modOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
	{ModMeta, "meta"},
}

// nameToEvent is the reverse lookup for named (non-character) keys
var nameToEvent map[string]Event

// modNames resolves modifier tokens, including aliases
var modNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"opt":     ModAlt,
	"a":       ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"meta":    ModMeta,
	"super":   ModMeta,
	"m":       ModMeta,
}

func init() {
	nameToEvent = make(map[string]Event, len(navToName)+len(controlToName)+8)
	for k, v := range navToName {
		nameToEvent[v] = Navigation(k)
	}
	for k, v := range controlToName {
		nameToEvent[v] = Control(k)
	}
	for r, v := range runeToName {
		nameToEvent[v] = Char(r, ModNone)
	}

	// Aliases
	nameToEvent["esc"] = Control(ControlEscape)
	nameToEvent["return"] = Control(ControlEnter)
	nameToEvent["bs"] = Control(ControlBackspace)
	nameToEvent["shift_tab"] = Control(ControlBackTab)
	nameToEvent["pgup"] = Navigation(NavPageUp)
	nameToEvent["pgdn"] = Navigation(NavPageDown)
	nameToEvent["pageup"] = Navigation(NavPageUp)
	nameToEvent["pagedown"] = Navigation(NavPageDown)
	nameToEvent["del"] = Navigation(NavDelete)
	nameToEvent["ins"] = Navigation(NavInsert)
}

// String returns the canonical name, e.g. "a", "ctrl+c", "shift+up", "f5"
func (e Event) String() string {
	if e.Kind == KindUnknown {
		if e.Raw == "" {
			return "unknown"
		}
		return "unknown(" + e.Raw + ")"
	}

	var sb strings.Builder
	for _, m := range modOrder {
		if e.Mods&m.mod != 0 {
			sb.WriteString(m.name)
			sb.WriteByte('+')
		}
	}

	switch e.Kind {
	case KindChar:
		sb.WriteString(runeName(e.Rune))
	case KindFunction:
		sb.WriteByte('f')
		sb.WriteString(strconv.Itoa(int(e.Fn)))
	case KindNav:
		sb.WriteString(navToName[e.Nav])
	case KindControl:
		sb.WriteString(controlToName[e.Control])
	}
	return sb.String()
}

func runeName(r rune) string {
	if name, ok := runeToName[r]; ok {
		return name
	}
	if unicode.IsPrint(r) {
		return string(r)
	}
	return fmt.Sprintf("u%04x", r)
}

// Parse resolves a canonical name produced by Event.String back to an event
// Modifier and key names are case-insensitive; single characters are taken literally
func Parse(name string) (Event, error) {
	if name == "" {
		return Event{}, fmt.Errorf("%w: empty", ErrUnknownName)
	}

	parts := strings.Split(name, "+")
	base := parts[len(parts)-1]
	if base == "" {
		// Trailing '+' means the plus key itself, e.g. "ctrl++"
		if len(parts) < 2 || parts[len(parts)-2] != "" {
			return Event{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
		}
		base = "+"
		parts = parts[:len(parts)-1]
	}

	var mods Modifier
	for _, tok := range parts[:len(parts)-1] {
		if tok == "" {
			continue
		}
		m, ok := modNames[strings.ToLower(tok)]
		if !ok {
			return Event{}, fmt.Errorf("%w: modifier %q in %q", ErrUnknownName, tok, name)
		}
		mods |= m
	}

	ev, ok := parseBase(base)
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return ev.WithMods(mods), nil
}

func parseBase(base string) (Event, bool) {
	if utf8.RuneCountInString(base) == 1 {
		r, _ := utf8.DecodeRuneInString(base)
		return Char(r, ModNone), true
	}

	lower := strings.ToLower(base)
	if ev, ok := nameToEvent[lower]; ok {
		return ev, true
	}

	if len(lower) > 1 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= MaxFunction {
			return Function(n), true
		}
	}

	if len(lower) > 1 && lower[0] == 'u' {
		if v, err := strconv.ParseUint(lower[1:], 16, 32); err == nil && utf8.ValidRune(rune(v)) {
			return Char(rune(v), ModNone), true
		}
	}
	return Event{}, false
}
