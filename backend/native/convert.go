// @lixen: #focus{input[keys,native]}
package native

import (
	"strconv"

	"github.com/lixenwraith/keyflow/keys"
	"github.com/lixenwraith/keyflow/terminal"
)

var navKeys = map[terminal.Key]keys.NavKey{
	terminal.KeyUp:       keys.NavUp,
	terminal.KeyDown:     keys.NavDown,
	terminal.KeyLeft:     keys.NavLeft,
	terminal.KeyRight:    keys.NavRight,
	terminal.KeyHome:     keys.NavHome,
	terminal.KeyEnd:      keys.NavEnd,
	terminal.KeyPageUp:   keys.NavPageUp,
	terminal.KeyPageDown: keys.NavPageDown,
	terminal.KeyInsert:   keys.NavInsert,
	terminal.KeyDelete:   keys.NavDelete,
}

var controlKeys = map[terminal.Key]keys.ControlKey{
	terminal.KeyBackspace: keys.ControlBackspace,
	terminal.KeyEnter:     keys.ControlEnter,
	terminal.KeyEscape:    keys.ControlEscape,
	terminal.KeyTab:       keys.ControlTab,
	terminal.KeyBacktab:   keys.ControlBackTab,
}

// ToCanonical converts a decoded native event
// Mouse reports and unmapped sequences become Unknown with a description
func ToCanonical(ev terminal.Event) keys.Event {
	switch ev.Type {
	case terminal.EventMouse:
		return keys.Unknown(terminal.DescribeMouse(ev))
	case terminal.EventUnknown:
		return keys.Unknown("seq " + strconv.Quote(ev.Seq))
	}

	mods := convertMod(ev.Modifiers)
	if ev.Key == terminal.KeyRune {
		return keys.Char(ev.Rune, mods)
	}
	if n := ev.Key.FunctionIndex(); n > 0 {
		return keys.Function(n).WithMods(mods)
	}
	if nav, ok := navKeys[ev.Key]; ok {
		return keys.Navigation(nav).WithMods(mods)
	}
	if ctl, ok := controlKeys[ev.Key]; ok {
		return keys.Control(ctl).WithMods(mods)
	}
	return keys.Unknown("key " + ev.Key.String())
}

func convertMod(m terminal.Modifier) keys.Modifier {
	var out keys.Modifier
	if m&terminal.ModShift != 0 {
		out |= keys.ModShift
	}
	if m&terminal.ModAlt != 0 {
		out |= keys.ModAlt
	}
	if m&terminal.ModCtrl != 0 {
		out |= keys.ModCtrl
	}
	if m&terminal.ModMeta != 0 {
		out |= keys.ModMeta
	}
	return out
}
