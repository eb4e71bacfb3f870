package display

import (
	"fmt"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/hid"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"
)

// EventFormatter formats keyboard traffic for the panel. It creates
// compact string representations suitable for the narrow display rows.
type EventFormatter struct{}

// NewEventFormatter creates a new event formatter.
func NewEventFormatter() *EventFormatter {
	return &EventFormatter{}
}

// FormatID formats the two-byte device ID.
func (f *EventFormatter) FormatID(id uint16) string {
	if id == 0xFFFF {
		return "kbd: none"
	}
	return fmt.Sprintf("kbd id %04x", id)
}

// FormatKey formats a translated key event, e.g. "dn 52" for an
// up-arrow press.
func (f *EventFormatter) FormatKey(action hid.KeyAction) string {
	switch action.Gesture {
	case hid.KeyDown:
		return fmt.Sprintf("dn %02x", action.HIDCode)
	case hid.KeyUp:
		return fmt.Sprintf("up %02x", action.HIDCode)
	}
	return ""
}

// FormatScanCode formats a raw scan code, e.g. "e0 75".
func (f *EventFormatter) FormatScanCode(isExtended bool, code ps2.ScanCode) string {
	if isExtended {
		return fmt.Sprintf("e0 %02x", uint8(code))
	}
	return fmt.Sprintf("%02x", uint8(code))
}

// FormatFailures formats the diagnostics failure mask.
func (f *EventFormatter) FormatFailures(mask uint16) string {
	if mask == 0 {
		return "ok"
	}
	return fmt.Sprintf("err %04x", mask)
}
