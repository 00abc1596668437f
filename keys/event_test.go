package keys

import (
	"errors"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		kind Kind
	}{
		{"char", Char('a', ModNone), KindChar},
		{"function", Function(5), KindFunction},
		{"nav", Navigation(NavUp), KindNav},
		{"control", Control(ControlEnter), KindControl},
		{"unknown", Unknown("mouse"), KindUnknown},
		{"function zero", Function(0), KindUnknown},
		{"function overflow", Function(MaxFunction + 1), KindUnknown},
		{"nav none", Navigation(NavNone), KindUnknown},
		{"control none", Control(ControlNone), KindUnknown},
		{"control overflow", Control(ControlBackTab + 1), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ev.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.ev.Kind, tt.kind)
			}
		})
	}
}

func TestZeroValueIsUnknown(t *testing.T) {
	var ev Event
	if !ev.IsUnknown() {
		t.Error("zero Event should be Unknown")
	}
	if ev.String() != "unknown" {
		t.Errorf("String() = %q, want %q", ev.String(), "unknown")
	}
}

func TestCharDropsShift(t *testing.T) {
	ev := Char('A', ModShift|ModCtrl)
	if ev.Mods != ModCtrl {
		t.Errorf("Mods = %v, want ModCtrl", ev.Mods)
	}
	if ev != Char('A', ModCtrl) {
		t.Error("shift should not affect equality of character events")
	}
	if !ev.Is('A', ModCtrl|ModShift) {
		t.Error("Is should ignore shift")
	}
}

func TestWithMods(t *testing.T) {
	up := Navigation(NavUp).WithMods(ModShift)
	if up.Mods != ModShift {
		t.Errorf("nav Mods = %v, want ModShift", up.Mods)
	}
	if up == Navigation(NavUp) {
		t.Error("modified navigation should differ from plain navigation")
	}

	unk := Unknown("x").WithMods(ModCtrl)
	if unk.Mods != ModNone {
		t.Error("Unknown events should not carry modifiers")
	}
}

func TestModifierHas(t *testing.T) {
	m := ModCtrl | ModAlt
	if !m.Has(ModCtrl) || !m.Has(ModAlt) || !m.Has(ModCtrl|ModAlt) {
		t.Error("Has should report set bits")
	}
	if m.Has(ModShift) || m.Has(ModCtrl|ModShift) {
		t.Error("Has should reject unset bits")
	}
}

func TestStringAndParseRoundTrip(t *testing.T) {
	events := []Event{
		Char('a', ModNone),
		Char('A', ModNone),
		Char('c', ModCtrl),
		Char('x', ModAlt|ModCtrl),
		Char(' ', ModNone),
		Char(' ', ModCtrl),
		Char('+', ModNone),
		Char('+', ModAlt),
		Char('é', ModNone),
		Char(0x01, ModNone),
		Function(1),
		Function(12),
		Function(MaxFunction),
		Navigation(NavPageDown),
		Navigation(NavUp).WithMods(ModShift),
		Navigation(NavDelete).WithMods(ModCtrl | ModAlt),
		Control(ControlEscape),
		Control(ControlBackTab),
		Control(ControlEnter).WithMods(ModAlt),
		Function(3).WithMods(ModMeta),
	}

	for _, ev := range events {
		name := ev.String()
		t.Run(name, func(t *testing.T) {
			got, err := Parse(name)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", name, err)
			}
			if got != ev {
				t.Errorf("Parse(%q) = %+v, want %+v", name, got, ev)
			}
		})
	}
}

func TestStringNames(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Char('a', ModNone), "a"},
		{Char('c', ModCtrl), "ctrl+c"},
		{Char('q', ModCtrl | ModAlt), "ctrl+alt+q"},
		{Navigation(NavUp), "up"},
		{Navigation(NavPageUp).WithMods(ModShift), "shift+page_up"},
		{Function(5), "f5"},
		{Control(ControlBackspace), "backspace"},
		{Unknown("\x1b[99~"), "unknown(\x1b[99~)"},
	}

	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseAliases(t *testing.T) {
	tests := []struct {
		name string
		want Event
	}{
		{"esc", Control(ControlEscape)},
		{"Ctrl+Q", Char('Q', ModCtrl)},
		{"CTRL+q", Char('q', ModCtrl)},
		{"shift_tab", Control(ControlBackTab)},
		{"pgdn", Navigation(NavPageDown)},
		{"F10", Function(10)},
		{"ctrl++", Char('+', ModCtrl)},
		{"+", Char('+', ModNone)},
		{"alt+space", Char(' ', ModAlt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, name := range []string{"", "hyper+a", "f0", "f65", "nosuchkey", "ctrl+", "unknown"} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(name)
			if !errors.Is(err, ErrUnknownName) {
				t.Errorf("Parse(%q) error = %v, want ErrUnknownName", name, err)
			}
		})
	}
}
