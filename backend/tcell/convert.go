// @lixen: #focus{input[keys,tcell]}
package tcellbackend

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keyflow/keys"
)

var navKeys = map[tcell.Key]keys.NavKey{
	tcell.KeyUp:     keys.NavUp,
	tcell.KeyDown:   keys.NavDown,
	tcell.KeyLeft:   keys.NavLeft,
	tcell.KeyRight:  keys.NavRight,
	tcell.KeyHome:   keys.NavHome,
	tcell.KeyEnd:    keys.NavEnd,
	tcell.KeyPgUp:   keys.NavPageUp,
	tcell.KeyPgDn:   keys.NavPageDown,
	tcell.KeyInsert: keys.NavInsert,
	tcell.KeyDelete: keys.NavDelete,
}

// Control bytes tcell reports as their own key codes
var ctrlPunct = map[tcell.Key]rune{
	tcell.KeyCtrlSpace:      ' ',
	tcell.KeyCtrlBackslash:  '\\',
	tcell.KeyCtrlRightSq:    ']',
	tcell.KeyCtrlCarat:      '^',
	tcell.KeyCtrlUnderscore: '_',
}

// ToCanonical converts a tcell key event, nil maps to Unknown
// tcell aliases Backspace/Ctrl+H, Tab/Ctrl+I, Enter/Ctrl+M and Escape/Ctrl+[, the named key wins
func ToCanonical(ev *tcell.EventKey) keys.Event {
	if ev == nil {
		return keys.Unknown("tcell: nil event")
	}

	k := ev.Key()
	mods := convertMod(ev.Modifiers())

	switch k {
	case tcell.KeyRune:
		r := ev.Rune()
		if mods.Has(keys.ModCtrl) && r >= 'A' && r <= 'Z' {
			r = unicode.ToLower(r)
		}
		return keys.Char(r, mods)
	case tcell.KeyEnter, tcell.KeyLF:
		return keys.Control(keys.ControlEnter).WithMods(mods)
	case tcell.KeyTab:
		return keys.Control(keys.ControlTab).WithMods(mods)
	case tcell.KeyBacktab:
		return keys.Control(keys.ControlBackTab).WithMods(mods &^ keys.ModShift)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return keys.Control(keys.ControlBackspace).WithMods(mods)
	case tcell.KeyEscape:
		return keys.Control(keys.ControlEscape).WithMods(mods)
	}

	if k >= tcell.KeyNUL && k <= tcell.KeyUS {
		if r, ok := ctrlRune(k); ok {
			return keys.Char(r, mods|keys.ModCtrl)
		}
	}
	if nav, ok := navKeys[k]; ok {
		return keys.Navigation(nav).WithMods(mods)
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF64 {
		return keys.Function(int(k-tcell.KeyF1) + 1).WithMods(mods)
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return keys.Char(rune('a'+(k-tcell.KeyCtrlA)), mods|keys.ModCtrl)
	}
	if r, ok := ctrlPunct[k]; ok {
		return keys.Char(r, mods|keys.ModCtrl)
	}
	return keys.Unknown("tcell: " + ev.Name())
}

func convertMod(m tcell.ModMask) keys.Modifier {
	var out keys.Modifier
	if m&tcell.ModShift != 0 {
		out |= keys.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= keys.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		out |= keys.ModCtrl
	}
	if m&tcell.ModMeta != 0 {
		out |= keys.ModMeta
	}
	return out
}

// ctrlRune names the key behind a C0 control code, matching the native decoder
func ctrlRune(k tcell.Key) (rune, bool) {
	switch c := int(k); {
	case c == 0:
		return ' ', true
	case c >= 1 && c <= 26:
		return rune('a' + c - 1), true
	case c >= 28 && c <= 31:
		return rune("\\]^_"[c-28]), true
	}
	return 0, false
}
