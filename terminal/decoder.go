// @lixen: #focus{sys[term,io,input]}
package terminal

import (
	"unicode/utf8"
)

// Bounds on sequence scanning, anything longer is reported as unknown
const (
	maxCSILen   = 32
	maxMouseLen = 32
)

// Decoder turns a raw terminal byte stream into events
// Not safe for concurrent use; owners serialize Feed/Next/Flush
type Decoder struct {
	buf  []byte  // Unconsumed bytes, a partial sequence or UTF-8 rune
	out  []Event // Decoded, not yet taken
	head int
}

// NewDecoder returns an empty decoder
func NewDecoder() *Decoder {
	return &Decoder{
		buf: make([]byte, 0, 256),
		out: make([]Event, 0, 64),
	}
}

// Feed appends raw input and decodes every complete unit
// Incomplete trailing input is kept until more bytes or Flush
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
	consumed := d.decode(d.buf, false)
	d.compact(consumed)
}

// Next pops the oldest decoded event
func (d *Decoder) Next() (Event, bool) {
	if d.head >= len(d.out) {
		return Event{}, false
	}
	ev := d.out[d.head]
	d.out[d.head] = Event{}
	d.head++
	if d.head == len(d.out) {
		d.out = d.out[:0]
		d.head = 0
	}
	return ev, true
}

// Pending reports whether bytes are held back awaiting completion
// A lone ESC is the common case: the caller waits the escape timeout, then flushes
func (d *Decoder) Pending() bool {
	return len(d.buf) > 0
}

// Flush resolves held bytes as if no more input follows
// Lone ESC becomes Escape, ESC + introducer becomes Alt+introducer, the rest is unknown
func (d *Decoder) Flush() {
	if len(d.buf) == 0 {
		return
	}
	consumed := d.decode(d.buf, true)
	d.compact(consumed)
	if len(d.buf) > 0 {
		d.emit(Event{Type: EventUnknown, Seq: string(d.buf)})
		d.buf = d.buf[:0]
	}
}

func (d *Decoder) compact(consumed int) {
	if consumed <= 0 {
		return
	}
	if consumed >= len(d.buf) {
		d.buf = d.buf[:0]
		return
	}
	n := copy(d.buf, d.buf[consumed:])
	d.buf = d.buf[:n]
}

func (d *Decoder) emit(ev Event) {
	d.out = append(d.out, ev)
}

// decode parses as much as possible and returns bytes consumed
// final resolves incomplete escape prefixes instead of waiting
func (d *Decoder) decode(data []byte, final bool) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		// Fast path: printable ASCII
		if b >= 0x20 && b < 0x7f {
			d.emit(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++
			continue
		}

		if b == 0x1b {
			if i+1 >= n {
				if !final {
					return i
				}
				d.emit(Event{Type: EventKey, Key: KeyEscape})
				i++
				continue
			}
			consumed, ev := parseEscape(data[i:])
			if consumed == 0 {
				if !final {
					return i
				}
				// Timed-out prefix: ESC + next byte read as Alt+key
				consumed, ev = parseAltFallback(data[i:])
				if consumed == 0 {
					return i
				}
			}
			d.emit(ev)
			i += consumed
			continue
		}

		if b < 0x20 {
			d.emit(parseControl(b))
			i++
			continue
		}

		if b == 0x7f {
			d.emit(Event{Type: EventKey, Key: KeyBackspace})
			i++
			continue
		}

		// UTF-8 multibyte
		if !utf8.FullRune(data[i:]) {
			// Partial rune, Flush reports it as unknown if nothing follows
			return i
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			d.emit(Event{Type: EventUnknown, Seq: string(data[i : i+1])})
			i++
			continue
		}
		d.emit(Event{Type: EventKey, Key: KeyRune, Rune: r})
		i += size
	}
	return i
}

// parseEscape parses a sequence starting with ESC, returns 0 on incomplete
func parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}

	switch b := data[1]; {
	case b == 0x1b:
		// ESC ESC is Alt+Escape
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}
	case b == '[':
		return parseCSI(data)
	case b == 'O':
		return parseSS3(data)
	case b < 0x20:
		ev := parseControl(b)
		ev.Modifiers |= ModAlt
		return 2, ev
	case b == 0x7f:
		return 2, Event{Type: EventKey, Key: KeyBackspace, Modifiers: ModAlt}
	case b < 0x7f:
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(b), Modifiers: ModAlt}
	}

	// Alt + UTF-8 rune
	if !utf8.FullRune(data[1:]) {
		return 0, Event{}
	}
	r, size := utf8.DecodeRune(data[1:])
	if r == utf8.RuneError && size <= 1 {
		return 2, Event{Type: EventUnknown, Seq: string(data[:2])}
	}
	return 1 + size, Event{Type: EventKey, Key: KeyRune, Rune: r, Modifiers: ModAlt}
}

// parseAltFallback resolves an incomplete "ESC [" or "ESC O" once the escape timeout expired
func parseAltFallback(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}
	if b := data[1]; b >= 0x20 && b < 0x7f {
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(b), Modifiers: ModAlt}
	}
	return 0, Event{}
}

// parseCSI parses ESC [ params final without allocation for known keys
func parseCSI(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}

	if data[2] == '<' {
		return parseSGRMouse(data)
	}

	// Linux console: ESC [ [ A..E
	if data[2] == '[' {
		if len(data) < 4 {
			return 0, Event{}
		}
		if key, mod, ok := lookupCSI(data[2:4]); ok {
			return 4, Event{Type: EventKey, Key: key, Modifiers: mod}
		}
		return 4, Event{Type: EventUnknown, Seq: string(data[:4])}
	}

	// Parameter and intermediate bytes are 0x20-0x3f, final byte is 0x40-0x7e
	end := 2
	for end < len(data) {
		b := data[end]
		if b >= 0x40 && b <= 0x7e {
			end++
			if key, mod, ok := lookupCSI(data[2:end]); ok {
				return end, Event{Type: EventKey, Key: key, Modifiers: mod}
			}
			return end, Event{Type: EventUnknown, Seq: string(data[:end])}
		}
		if b < 0x20 || b > 0x7e {
			// Interrupted sequence, report what was seen and resume at b
			return end, Event{Type: EventUnknown, Seq: string(data[:end])}
		}
		end++
		if end >= maxCSILen {
			return end, Event{Type: EventUnknown, Seq: string(data[:end])}
		}
	}
	return 0, Event{}
}

// parseSS3 parses ESC O final
func parseSS3(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}
	if key, mod, ok := lookupSS3(data[2:3]); ok {
		return 3, Event{Type: EventKey, Key: key, Modifiers: mod}
	}
	return 3, Event{Type: EventUnknown, Seq: string(data[:3])}
}

// parseControl maps C0 control bytes
// Ctrl+letter is reported as the lowercase letter with ModCtrl
func parseControl(b byte) Event {
	switch b {
	case 0x00: // Ctrl+Space or Ctrl+@
		return Event{Type: EventKey, Key: KeyRune, Rune: ' ', Modifiers: ModCtrl}
	case 0x08: // Ctrl+H, sent as backspace by many terminals
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape}
	case 0x1c:
		return Event{Type: EventKey, Key: KeyRune, Rune: '\\', Modifiers: ModCtrl}
	case 0x1d:
		return Event{Type: EventKey, Key: KeyRune, Rune: ']', Modifiers: ModCtrl}
	case 0x1e:
		return Event{Type: EventKey, Key: KeyRune, Rune: '^', Modifiers: ModCtrl}
	case 0x1f:
		return Event{Type: EventKey, Key: KeyRune, Rune: '_', Modifiers: ModCtrl}
	}
	if b >= 0x01 && b <= 0x1a {
		return Event{Type: EventKey, Key: KeyRune, Rune: rune('a' + b - 1), Modifiers: ModCtrl}
	}
	return Event{Type: EventUnknown, Seq: string([]byte{b})}
}
