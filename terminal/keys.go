// @focus: #sys { io } #input { keys }
package terminal

import "strconv"

// Key identifies a decoded key
type Key uint16

const (
	KeyNone Key = iota
	KeyRune     // Character, possibly with modifiers (check Event.Rune)

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBacktab // Shift+Tab
	KeyBackspace

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete

	// Function keys, contiguous so KeyF1+n-1 is Fn
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20

	keyCount
)

// MaxFunctionKey is the highest function key the decoder reports
const MaxFunctionKey = int(KeyF20-KeyF1) + 1

// Modifier flags, bit layout matches xterm modifier parameter minus one
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
	ModMeta  Modifier = 1 << 3
)

// AllKeys returns every key the decoder can produce, KeyNone excluded
func AllKeys() []Key {
	out := make([]Key, 0, keyCount-1)
	for k := KeyRune; k < keyCount; k++ {
		out = append(out, k)
	}
	return out
}

// FunctionIndex returns n for KeyFn, 0 for non-function keys
func (k Key) FunctionIndex() int {
	if k < KeyF1 || k > KeyF20 {
		return 0
	}
	return int(k-KeyF1) + 1
}

var keyNames = [...]string{
	KeyNone:      "None",
	KeyRune:      "Rune",
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBacktab:   "Backtab",
	KeyBackspace: "Backspace",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyInsert:    "Insert",
	KeyDelete:    "Delete",
}

func (k Key) String() string {
	if n := k.FunctionIndex(); n > 0 {
		return "F" + strconv.Itoa(n)
	}
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "Key(" + strconv.Itoa(int(k)) + ")"
}

// escapeSequence maps the bytes after the introducer to a key
type escapeSequence struct {
	seq string
	key Key
	mod Modifier
}

// Letter-final CSI keys, modified form is ESC [ 1 ; m <final>
var csiLetterKeys = []struct {
	final byte
	key   Key
}{
	{'A', KeyUp},
	{'B', KeyDown},
	{'C', KeyRight},
	{'D', KeyLeft},
	{'H', KeyHome},
	{'F', KeyEnd},
	{'P', KeyF1},
	{'Q', KeyF2},
	{'R', KeyF3},
	{'S', KeyF4},
}

// Tilde-final CSI keys, modified form is ESC [ n ; m ~
var csiTildeKeys = []struct {
	code int
	key  Key
}{
	{1, KeyHome},
	{2, KeyInsert},
	{3, KeyDelete},
	{4, KeyEnd},
	{5, KeyPageUp},
	{6, KeyPageDown},
	{7, KeyHome}, // rxvt
	{8, KeyEnd},  // rxvt
	{11, KeyF1},
	{12, KeyF2},
	{13, KeyF3},
	{14, KeyF4},
	{15, KeyF5},
	{17, KeyF6},
	{18, KeyF7},
	{19, KeyF8},
	{20, KeyF9},
	{21, KeyF10},
	{23, KeyF11},
	{24, KeyF12},
	{25, KeyF13},
	{26, KeyF14},
	{28, KeyF15},
	{29, KeyF16},
	{31, KeyF17},
	{32, KeyF18},
	{33, KeyF19},
	{34, KeyF20},
}

// Sequences with no modifier variants
var csiFixed = []escapeSequence{
	{"Z", KeyBacktab, ModNone},
	// Linux console function keys
	{"[A", KeyF1, ModNone},
	{"[B", KeyF2, ModNone},
	{"[C", KeyF3, ModNone},
	{"[D", KeyF4, ModNone},
	{"[E", KeyF5, ModNone},
}

// SS3 sequences (ESC O ...)
var ss3Sequences = []escapeSequence{
	{"A", KeyUp, ModNone},
	{"B", KeyDown, ModNone},
	{"C", KeyRight, ModNone},
	{"D", KeyLeft, ModNone},
	{"H", KeyHome, ModNone},
	{"F", KeyEnd, ModNone},
	{"M", KeyEnter, ModNone}, // keypad enter
	{"P", KeyF1, ModNone},
	{"Q", KeyF2, ModNone},
	{"R", KeyF3, ModNone},
	{"S", KeyF4, ModNone},
}

// xterm modifier parameters run 2..16, parameter minus one is the flag set
const maxModParam = 16

var csiMap = buildCSIMap()
var ss3Map = buildSequenceMap(ss3Sequences)

func buildCSIMap() map[string]escapeSequence {
	seqs := append([]escapeSequence(nil), csiFixed...)
	for _, k := range csiLetterKeys {
		seqs = append(seqs, escapeSequence{string(k.final), k.key, ModNone})
		for m := 2; m <= maxModParam; m++ {
			seq := "1;" + strconv.Itoa(m) + string(k.final)
			seqs = append(seqs, escapeSequence{seq, k.key, Modifier(m - 1)})
		}
	}
	for _, k := range csiTildeKeys {
		code := strconv.Itoa(k.code)
		seqs = append(seqs, escapeSequence{code + "~", k.key, ModNone})
		for m := 2; m <= maxModParam; m++ {
			seq := code + ";" + strconv.Itoa(m) + "~"
			seqs = append(seqs, escapeSequence{seq, k.key, Modifier(m - 1)})
		}
	}
	return buildSequenceMap(seqs)
}

func buildSequenceMap(seqs []escapeSequence) map[string]escapeSequence {
	m := make(map[string]escapeSequence, len(seqs))
	for _, s := range seqs {
		m[s.seq] = s
	}
	return m
}

// lookupCSI performs zero-alloc map lookup
// The string([]byte) conversion inline in map access does not allocate
func lookupCSI(seq []byte) (Key, Modifier, bool) {
	if s, ok := csiMap[string(seq)]; ok {
		return s.key, s.mod, true
	}
	return KeyNone, ModNone, false
}

func lookupSS3(seq []byte) (Key, Modifier, bool) {
	if s, ok := ss3Map[string(seq)]; ok {
		return s.key, s.mod, true
	}
	return KeyNone, ModNone, false
}
