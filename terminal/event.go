package terminal

// EventType distinguishes decoded input categories
type EventType uint8

const (
	EventKey     EventType = iota
	EventMouse             // SGR mouse report
	EventUnknown           // Well-formed but unmapped input (check Event.Seq)
)

// Event is a single decoded input unit
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Seq       string // Raw bytes for EventUnknown

	// Mouse event fields, 0-indexed cells
	MouseX      int
	MouseY      int
	MouseBtn    MouseButton
	MouseAction MouseAction
}
