package main

import (
	"machine"
	"runtime/interrupt"
	"time"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/diag"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/display"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/hid"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2io"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/report"
	"github.com/SteveBenz/PS2KeyboardHost/pkg/settings"
	"github.com/SteveBenz/PS2KeyboardHost/serial"
)

// PS/2 port wiring.
const (
	dataPin  = machine.GPIO2
	clockPin = machine.GPIO3
)

func main() {
	recorder := diag.NewRecorder(64)
	recorder.SetInterruptGuard(func(fn func()) {
		state := interrupt.Disable()
		fn()
		interrupt.Restore(state)
	})

	panel := display.NewManager()
	formatter := display.NewEventFormatter()

	bus := ps2io.New(ps2io.PinConfig{Data: dataPin, Clock: clockPin})
	kbd := ps2.New(ps2.Config{
		Bus:         bus,
		BufferSize:  16,
		Diagnostics: recorder,
	})
	kbd.Begin()

	if !kbd.Reset() {
		panel.ShowError("kbd reset")
	}
	panel.ShowID(formatter.FormatID(kbd.ReadID()))

	applyStoredSettings(kbd, panel)

	translator := hid.New(recorder)
	port := report.Port()

	// The LED handler runs in the USB interrupt, and talking PS/2 takes
	// milliseconds, so just note the value and apply it from the loop.
	pendingLeds := int32(-1)
	port.SetLedHandler(func(leds uint8) {
		pendingLeds = int32(leds)
	})

	console := serial.NewConsole(machine.Serial, recorder)
	go console.Handle()

	panel.ShowStatus("ps2 bridge up")

	for {
		if v := pendingLeds; v >= 0 {
			pendingLeds = -1
			kbd.SetLeds(hid.TranslateLeds(hid.Leds(v)))
		}

		code := kbd.ReadScanCode()
		switch {
		case code == ps2.None:
			time.Sleep(50 * time.Microsecond)
		case code == ps2.Garbled:
			// A byte was lost; any prefix state or held key derived
			// from it is suspect.
			translator.Reset()
			port.ReleaseAll()
			panel.ShowDiagnostics(formatter.FormatFailures(recorder.Failures()))
		default:
			action := translator.Translate(code)
			switch action.Gesture {
			case hid.KeyDown:
				port.Down(action.HIDCode)
			case hid.KeyUp:
				port.Up(action.HIDCode)
			}
			if action.Gesture != hid.None {
				panel.ShowKey(formatter.FormatKey(action))
			}
		}
	}
}

// applyStoredSettings pushes the persisted configuration to the
// keyboard. Any failure falls back to the keyboard's power-on defaults;
// a bridge with default settings beats one that doesn't boot.
func applyStoredSettings(kbd *ps2.Keyboard, panel *display.Manager) {
	store, err := settings.NewStore(machine.Flash, true)
	if err != nil {
		panel.ShowError("flash mount")
		return
	}
	defer store.Close()

	cfg := settings.Default()
	if err := store.Load(&cfg); err != nil {
		cfg = settings.Default()
	}
	if !cfg.Apply(kbd) {
		panel.ShowError("apply settings")
	}
}
