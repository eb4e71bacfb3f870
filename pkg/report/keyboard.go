// Package report implements a USB HID keyboard device using Report ID 2,
// the keyboard slot of TinyGo's default composite HID descriptor. It
// exposes the boot-protocol report: one modifier byte plus six
// simultaneous keys.
package report

import (
	"machine"
	"machine/usb/hid"
)

const (
	reportID = 0x02

	// HID usages 0xE0-0xE7 are the modifier keys; they live in the
	// modifier byte of the report rather than the key array.
	firstModifier = 0xE0
	lastModifier  = 0xE7
)

// Keyboard represents the USB HID keyboard endpoint.
type Keyboard struct {
	modifiers  uint8
	keys       [6]uint8
	buf        *hid.RingBuffer
	waitTxc    bool
	ledHandler func(leds uint8)
}

var keyboardInstance *Keyboard

// init registers the keyboard with the HID subsystem.
func init() {
	if keyboardInstance == nil {
		keyboardInstance = &Keyboard{
			buf: hid.NewRingBuffer(),
		}
		hid.SetHandler(keyboardInstance)
	}
}

// Port returns the keyboard instance.
func Port() *Keyboard {
	return keyboardInstance
}

// TxHandler is called by the USB interrupt when the endpoint is ready
// to transmit. This implements the hidDevicer interface.
func (k *Keyboard) TxHandler() bool {
	k.waitTxc = false
	if b, ok := k.buf.Get(); ok {
		k.waitTxc = true
		hid.SendUSBPacket(b)
		return true
	}
	return false
}

// RxHandler handles output reports from the host. For a keyboard that
// is the LED report: report ID followed by the lock-LED bits. Note that
// it runs in the USB interrupt; the installed handler must not block.
func (k *Keyboard) RxHandler(b []byte) bool {
	if len(b) < 2 || b[0] != reportID {
		return false
	}
	if k.ledHandler != nil {
		k.ledHandler(b[1])
	}
	return true
}

// SetLedHandler installs the callback for host LED updates. It is
// called from the USB interrupt with the raw HID LED bitfield; stash
// the value and act on it from the main loop.
func (k *Keyboard) SetLedHandler(fn func(leds uint8)) {
	k.ledHandler = fn
}

// tx sends a report packet, queuing if the endpoint is busy.
func (k *Keyboard) tx(b []byte) {
	if machine.USBDev.InitEndpointComplete {
		if k.waitTxc {
			k.buf.Put(b)
		} else {
			k.waitTxc = true
			hid.SendUSBPacket(b)
		}
	}
}

// Down reports a key press. Presses beyond six simultaneous keys are
// dropped rather than reported as rollover.
func (k *Keyboard) Down(hidCode uint8) {
	if hidCode >= firstModifier && hidCode <= lastModifier {
		k.modifiers |= 1 << (hidCode - firstModifier)
		k.sendState()
		return
	}
	for _, held := range k.keys {
		if held == hidCode {
			return
		}
	}
	for i, held := range k.keys {
		if held == 0 {
			k.keys[i] = hidCode
			k.sendState()
			return
		}
	}
}

// Up reports a key release.
func (k *Keyboard) Up(hidCode uint8) {
	if hidCode >= firstModifier && hidCode <= lastModifier {
		k.modifiers &^= 1 << (hidCode - firstModifier)
		k.sendState()
		return
	}
	for i, held := range k.keys {
		if held == hidCode {
			k.keys[i] = 0
			k.sendState()
			return
		}
	}
}

// ReleaseAll clears every held key and modifier. Use it when the scan
// code stream loses sync, so no key stays stuck down on the host.
func (k *Keyboard) ReleaseAll() {
	k.modifiers = 0
	k.keys = [6]uint8{}
	k.sendState()
}

// sendState sends the current keyboard state to the host.
func (k *Keyboard) sendState() {
	// Report format (9 bytes):
	// Byte 0: Report ID (2)
	// Byte 1: Modifier bits
	// Byte 2: Reserved
	// Bytes 3-8: Held key usages, zero-padded
	k.tx([]byte{
		reportID,
		k.modifiers,
		0,
		k.keys[0],
		k.keys[1],
		k.keys[2],
		k.keys[3],
		k.keys[4],
		k.keys[5],
	})
}
