// @lixen: #focus{input[keys,event]}
package keys

// Kind distinguishes event variants
type Kind uint8

const (
	KindUnknown  Kind = iota // Backend event with no canonical mapping (check Event.Raw)
	KindChar                 // Printable or modified character (check Event.Rune)
	KindFunction             // Function key (check Event.Fn)
	KindNav                  // Navigation key (check Event.Nav)
	KindControl              // Editing/control key (check Event.Control)
)

// NavKey identifies navigation keys
type NavKey uint8

const (
	NavNone NavKey = iota
	NavUp
	NavDown
	NavLeft
	NavRight
	NavHome
	NavEnd
	NavPageUp
	NavPageDown
	NavInsert
	NavDelete
)

// ControlKey identifies control keys
type ControlKey uint8

const (
	ControlNone ControlKey = iota
	ControlBackspace
	ControlEnter
	ControlEscape
	ControlTab
	ControlBackTab // Shift+Tab
)

// Modifier flags
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
	ModMeta  Modifier = 1 << 3
)

// MaxFunction is the highest function key index any backend reports
const MaxFunction = 64

// Event is the canonical key event shared by every backend
// Comparable with ==; zero value is an Unknown event with empty Raw
type Event struct {
	Kind    Kind
	Rune    rune
	Fn      uint8
	Nav     NavKey
	Control ControlKey
	Mods    Modifier
	Raw     string
}

// Char returns a character event
// Shift is dropped: case is already encoded in the rune
func Char(r rune, mods Modifier) Event {
	return Event{Kind: KindChar, Rune: r, Mods: mods &^ ModShift}
}

// Function returns a function key event, out of range indices map to Unknown
func Function(n int) Event {
	if n < 1 || n > MaxFunction {
		return Unknown("function key out of range")
	}
	return Event{Kind: KindFunction, Fn: uint8(n)}
}

// Navigation returns a navigation key event
func Navigation(k NavKey) Event {
	if k == NavNone || k > NavDelete {
		return Unknown("invalid navigation key")
	}
	return Event{Kind: KindNav, Nav: k}
}

// Control returns a control key event
func Control(k ControlKey) Event {
	if k == ControlNone || k > ControlBackTab {
		return Unknown("invalid control key")
	}
	return Event{Kind: KindControl, Control: k}
}

// Unknown returns the escape-hatch event for unmapped backend input
func Unknown(raw string) Event {
	return Event{Kind: KindUnknown, Raw: raw}
}

// WithMods returns a copy carrying the given modifiers
// Character events keep their Shift-free invariant
func (e Event) WithMods(mods Modifier) Event {
	if e.Kind == KindUnknown {
		return e
	}
	if e.Kind == KindChar {
		mods &^= ModShift
	}
	e.Mods = mods
	return e
}

// Has reports whether all bits of m are set
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod
}

// IsUnknown reports whether the event has no canonical mapping
func (e Event) IsUnknown() bool {
	return e.Kind == KindUnknown
}

// Is reports whether the event is the character r with exactly the given modifiers
func (e Event) Is(r rune, mods Modifier) bool {
	return e.Kind == KindChar && e.Rune == r && e.Mods == mods&^ModShift
}
