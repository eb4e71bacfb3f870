// Package ps2 implements the host side of the PS/2 keyboard wire protocol.
// A Keyboard reconstructs 11-bit serial frames (start bit, 8 data bits,
// odd parity, stop bit) from a data line sampled on each falling clock
// edge, buffers completed bytes for a polling consumer, and drives the
// symmetric host-to-device transmit path over the same two pins.
//
// The clock-edge handler is registered through a Bus, which also supplies
// the pin and timing primitives, so the state machines can run against
// real GPIO on hardware and against a scripted bus in tests.
//
// Reference: http://www.computer-engineering.org/ps2keyboard/
package ps2

// ScanCode is one byte from the keyboard. Most values are set-2 make
// codes; a few are protocol bytes (ack, echo, the unmake and extend
// prefixes), and two are sentinels that ReadScanCode returns but that a
// healthy keyboard never delivers as a clean frame.
type ScanCode uint8

const (
	// None means the queue was empty; Garbled means a framing error was
	// seen and a resend has been requested.
	None    ScanCode = 0x00
	Garbled ScanCode = 0xFE

	// Protocol bytes sent by the device.
	SelfTestPassed ScanCode = 0xAA
	EchoResponse   ScanCode = 0xEE
	Ack            ScanCode = 0xFA
	SelfTestFailed ScanCode = 0xFC

	// Prefix bytes in the key-event stream.
	Extend ScanCode = 0xE0 // next code is from the extended set
	Unmake ScanCode = 0xF0 // next code is a key release

	// Set-2 codes the translators key on.
	LeftShift     ScanCode = 0x12
	Ctrl          ScanCode = 0x14
	CapsLock      ScanCode = 0x58
	RightShift    ScanCode = 0x59
	KeypadEnter   ScanCode = 0x5A
	Keypad1       ScanCode = 0x69
	NumLock       ScanCode = 0x77
	PauseKeyPart1 ScanCode = 0xE1
)

// command bytes sent from the host to the keyboard. Private because the
// point of this package is to encapsulate the protocol.
type command uint8

const (
	cmdReset                                   command = 0xFF
	cmdResend                                  command = 0xFE
	cmdDisableBreakAndTypematicForSpecificKeys command = 0xFD
	cmdDisableTypematicForSpecificKeys         command = 0xFC
	cmdDisableBreaksForSpecificKeys            command = 0xFB
	cmdEnableBreakAndTypematicForAllKeys       command = 0xFA
	cmdDisableBreakAndTypematicForAllKeys      command = 0xF9
	cmdDisableTypematicForAllKeys              command = 0xF8
	cmdDisableBreaksForAllKeys                 command = 0xF7
	cmdUseDefaultSettings                      command = 0xF6
	cmdDisable                                 command = 0xF5
	cmdEnable                                  command = 0xF4
	cmdSetTypematicRate                        command = 0xF3
	cmdReadID                                  command = 0xF2
	cmdSetScanCodeSet                          command = 0xF0
	cmdEcho                                    command = 0xEE
	cmdSetLeds                                 command = 0xED
)

// Leds is the PS/2 LED bitfield taken by SetLeds.
type Leds uint8

const (
	LedScrollLock Leds = 0x1
	LedNumLock    Leds = 0x2
	LedCapsLock   Leds = 0x4

	LedNone Leds = 0x0
	LedAll  Leds = 0x7
)

// ScanCodeSet identifies which of the three scan code tables the
// keyboard is using. The default, and the only one the translators
// understand, is the AT set (2).
type ScanCodeSet uint8

const (
	ScanCodeSetPCXT    ScanCodeSet = 1
	ScanCodeSetPCAT    ScanCodeSet = 2
	ScanCodeSetPS2     ScanCodeSet = 3
	ScanCodeSetDefault ScanCodeSet = ScanCodeSetPCAT

	// ScanCodeSetError is returned by GetScanCodeSet on failure.
	ScanCodeSetError ScanCodeSet = 0xFF
)

// TypematicRate is the auto-repeat rate, 0x00 (30 cps, fastest) through
// 0x1F (2 cps, slowest).
type TypematicRate uint8

const (
	RateFastest TypematicRate = 0x00 // 30.0 cps
	Rate26_7cps TypematicRate = 0x01
	Rate24_0cps TypematicRate = 0x02
	Rate21_8cps TypematicRate = 0x03
	RateDefault TypematicRate = 0x0B // 10.9 cps
	Rate2_3cps  TypematicRate = 0x1D
	Rate2_1cps  TypematicRate = 0x1E
	RateSlowest TypematicRate = 0x1F // 2.0 cps
)

// TypematicStartDelay is how long a key must be held before it starts
// repeating.
type TypematicStartDelay uint8

const (
	Delay0_25s   TypematicStartDelay = 0x0
	Delay0_50s   TypematicStartDelay = 0x1
	Delay0_75s   TypematicStartDelay = 0x2
	Delay1_00s   TypematicStartDelay = 0x3
	DelayDefault TypematicStartDelay = Delay0_50s
)
