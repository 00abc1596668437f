package terminal

import "strconv"

// MouseButton represents mouse button identity
type MouseButton uint8

const (
	MouseBtnNone MouseButton = iota
	MouseBtnLeft
	MouseBtnMiddle
	MouseBtnRight
	MouseBtnWheelUp
	MouseBtnWheelDown
)

// MouseAction represents the type of mouse event
type MouseAction uint8

const (
	MouseActionNone MouseAction = iota
	MouseActionPress
	MouseActionRelease
	MouseActionMove
	MouseActionDrag
)

var mouseBtnNames = [...]string{"none", "left", "middle", "right", "wheel_up", "wheel_down"}

var mouseActionNames = [...]string{"none", "press", "release", "move", "drag"}

func (b MouseButton) String() string {
	if int(b) < len(mouseBtnNames) {
		return mouseBtnNames[b]
	}
	return "none"
}

func (a MouseAction) String() string {
	if int(a) < len(mouseActionNames) {
		return mouseActionNames[a]
	}
	return "none"
}

// DescribeMouse renders a mouse event compactly, e.g. "mouse left press 3,7"
func DescribeMouse(ev Event) string {
	return "mouse " + ev.MouseBtn.String() + " " + ev.MouseAction.String() + " " +
		strconv.Itoa(ev.MouseX) + "," + strconv.Itoa(ev.MouseY)
}

// parseSGRMouse parses ESC [ < Btn ; X ; Y M/m
func parseSGRMouse(data []byte) (int, Event) {
	end := 3
	for end < len(data) && end < maxMouseLen {
		if data[end] == 'M' || data[end] == 'm' {
			break
		}
		end++
	}
	if end >= len(data) {
		return 0, Event{}
	}
	if end >= maxMouseLen {
		return end, Event{Type: EventUnknown, Seq: string(data[:end])}
	}

	btn, x, y, ok := parseSGRParams(data[3:end])
	if !ok {
		return end + 1, Event{Type: EventUnknown, Seq: string(data[:end+1])}
	}

	ev := Event{Type: EventMouse, MouseX: x - 1, MouseY: y - 1}

	// Bits 0-1 button (3 = release), bit 5 motion, bit 6 wheel
	buttonID := btn & 0x03
	isMotion := btn&32 != 0

	if btn&64 != 0 {
		ev.MouseBtn = MouseBtnWheelUp
		if buttonID != 0 {
			ev.MouseBtn = MouseBtnWheelDown
		}
		ev.MouseAction = MouseActionPress
	} else {
		ev.MouseBtn = [4]MouseButton{MouseBtnLeft, MouseBtnMiddle, MouseBtnRight, MouseBtnNone}[buttonID]
		switch {
		case data[end] == 'm':
			ev.MouseAction = MouseActionRelease
		case isMotion && ev.MouseBtn != MouseBtnNone:
			ev.MouseAction = MouseActionDrag
		case isMotion:
			ev.MouseAction = MouseActionMove
		default:
			ev.MouseAction = MouseActionPress
		}
	}

	if btn&4 != 0 {
		ev.Modifiers |= ModShift
	}
	if btn&8 != 0 {
		ev.Modifiers |= ModAlt
	}
	if btn&16 != 0 {
		ev.Modifiers |= ModCtrl
	}

	return end + 1, ev
}

// parseSGRParams extracts btn, x, y from "Btn;X;Y"
func parseSGRParams(data []byte) (btn, x, y int, ok bool) {
	var vals [3]int
	field := 0
	digits := 0

	for _, b := range data {
		switch {
		case b == ';':
			if digits == 0 || field == 2 {
				return 0, 0, 0, false
			}
			field++
			digits = 0
		case b >= '0' && b <= '9':
			vals[field] = vals[field]*10 + int(b-'0')
			digits++
			if vals[field] > 9999 {
				return 0, 0, 0, false
			}
		default:
			return 0, 0, 0, false
		}
	}

	if field != 2 || digits == 0 {
		return 0, 0, 0, false
	}
	return vals[0], vals[1], vals[2], true
}
