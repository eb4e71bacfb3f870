package ps2

// parity accumulator values. The wire convention is odd parity: the
// parity bit makes the total number of set bits across data and parity
// odd. Accumulation starts at even and flips on every set data bit, so
// at the parity bit the accumulator equals the value the device should
// have sent.
const (
	parityOdd  uint8 = 0
	parityEven uint8 = 1
)

// engineMode selects which state machine the clock-edge handler runs.
// The two are mutually exclusive in time: the transmit machine is
// entered only by sendByte and always re-arms the receive machine when
// it finishes.
type engineMode uint8

const (
	modeRead engineMode = iota
	modeWrite
)

const (
	// immediateResponseMillis bounds the wait for the ack byte a
	// keyboard sends after every accepted command byte.
	immediateResponseMillis = 10
	// resetResponseMillis bounds the wait for the self-test result
	// after a reset command; the keyboard takes most of a second.
	resetResponseMillis = 1000

	// inhibitMicros is how long the host holds the clock low before
	// requesting to send; the protocol requires at least 100us.
	inhibitMicros = 120

	// resendGuardMicros delays a resend request after a framing error.
	// The clock runs between 10kHz and 17kHz, so a full 11-bit frame
	// takes 700-1200us; most errors surface at the parity or stop bit.
	// Requesting a retransmit while the device is still mid-frame would
	// make it re-send the byte before the one that failed.
	resendGuardMicros = 200
)

// Config carries the construction-time parameters for a Keyboard.
type Config struct {
	// Bus supplies the data/clock pins and timing. Required.
	Bus Bus
	// BufferSize is the scan-code queue capacity; 16 when zero. A full
	// keystroke takes 3, sometimes 5 bytes, so 16 covers several
	// keystrokes between polls.
	BufferSize int
	// Diagnostics receives protocol events; NullSink when nil.
	Diagnostics Sink
}

// Keyboard decodes the PS/2 keyboard protocol. Construct one with New,
// call Begin once from setup, then poll ReadScanCode frequently
// (several times per millisecond). The command methods configure the
// keyboard; they can take milliseconds and must only be called from the
// polling context, never from an interrupt handler.
type Keyboard struct {
	bus  Bus
	diag Sink

	// Bit-machine state, owned by the clock-edge handler. The polling
	// side only touches it through sendByte and enableRead, both of
	// which run with the clock interrupt masked.
	mode         engineMode
	bitIndex     uint8
	ioByte       uint8
	parity       uint8
	framingError bool

	// Timestamp of the last detected framing failure.
	failureMicros uint32

	// expectingResult is true while a command waits for its response,
	// so that self-test codes are treated as data rather than as a
	// hot-plug announcement. Touched only from the polling context.
	expectingResult bool

	queue *buffer
}

// New builds a Keyboard over the given bus. Nothing touches the pins
// until Begin.
func New(cfg Config) *Keyboard {
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = NullSink{}
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 16
	}
	return &Keyboard{
		bus:   cfg.Bus,
		diag:  cfg.Diagnostics,
		queue: newBuffer(cfg.BufferSize, cfg.Diagnostics),
	}
}

// Begin configures the pins and starts the receive state machine. Call
// it once from setup, ideally before other devices start generating
// long-running interrupts: a missed clock edge desynchronizes a frame.
func (k *Keyboard) Begin() {
	k.bus.ConfigurePins()
	k.bus.SetClockHandler(k.clockEdge)
	k.enableRead()
}

// clockEdge runs on every falling clock edge and must complete in
// microseconds. It never blocks; each call advances the active state
// machine exactly one bit.
func (k *Keyboard) clockEdge() {
	if k.mode == modeWrite {
		k.writeBit()
	} else {
		k.readBit()
	}
}

// readBit advances the receive state machine. A framing error anywhere
// in the frame is not fatal to byte assembly: accumulation continues to
// the stop bit so the engine stays aligned with the device's byte
// boundaries, but the byte is only delivered if the whole frame was
// clean.
func (k *Keyboard) readBit() {
	var bit uint8
	if k.bus.ReadData() {
		bit = 1
	}
	switch {
	case k.bitIndex == 0: // start bit, must be low
		if bit == 0 {
			k.framingError = false
		} else {
			// A failure here usually means the previous byte was not
			// actually framed right and its parity and stop bits
			// happened to match expectations.
			k.diag.PacketDidNotStartWithZero()
			k.framingError = true
			k.failureMicros = k.bus.Micros()
		}
		k.bitIndex++
		k.parity = parityEven
	case k.bitIndex <= 8: // data bits, LSB first
		if bit != 0 {
			k.ioByte |= 1 << (k.bitIndex - 1)
			k.parity ^= 1
		}
		k.bitIndex++
	case k.bitIndex == 9: // parity bit
		if bit != k.parity {
			k.diag.ParityError()
			k.framingError = true
			k.failureMicros = k.bus.Micros()
		}
		k.bitIndex++
	default: // stop bit, must be high
		if bit == 0 {
			k.diag.PacketDidNotEndWithOne()
			k.framingError = true
			k.failureMicros = k.bus.Micros()
		}
		if !k.framingError {
			k.queue.push(ScanCode(k.ioByte))
		}
		k.bitIndex = 0
		k.ioByte = 0
	}
}

// writeBit advances the transmit state machine. The device supplies the
// clock here too; the host only drives data.
func (k *Keyboard) writeBit() {
	switch {
	case k.bitIndex == 0:
		// The device clocked in the start bit that request-to-send put
		// on the line; data bits begin on the next edge.
		k.bitIndex++
	case k.bitIndex <= 8: // data bits, LSB first
		bit := (k.ioByte >> (k.bitIndex - 1)) & 1
		k.bus.WriteData(bit != 0)
		k.parity ^= bit
		k.bitIndex++
	case k.bitIndex == 9:
		k.bus.WriteData(k.parity != 0)
		k.bitIndex++
	case k.bitIndex == 10:
		// Release the line so the device can drive the ack bit.
		k.bus.DataInput()
		k.bitIndex++
	default:
		// Device ack: it pulls data low to accept the stop condition.
		if k.bus.ReadData() {
			// A retransmit would be better, but it isn't a thing, and
			// it seems impossible to test anyway.
			k.diag.SendFrameError()
		}
		k.enableRead()
	}
}

// enableRead re-arms the receive state machine. Safe from both the
// polling context and the tail of the transmit handler.
func (k *Keyboard) enableRead() {
	k.framingError = false
	k.bitIndex = 0
	k.ioByte = 0
	k.parity = parityEven
	k.queue.clear()
	k.mode = modeRead
	k.bus.EnableClockInterrupt()
}

// sendByte starts a host-to-device transmission and returns as soon as
// the transmit machine is armed; the byte itself is clocked out by the
// device over the next millisecond or so.
func (k *Keyboard) sendByte(b uint8) {
	k.bus.DisableClockInterrupt()

	// Inhibit communication by holding the clock low for at least
	// 100us.
	k.bus.ClockLow()
	k.bus.DelayMicros(inhibitMicros)

	// Prime the transmit machine while no edges can arrive. The start
	// bit goes on the line with the request-to-send below, so data bits
	// begin on the first clocked edge.
	k.framingError = false
	k.queue.clear()
	k.bitIndex = 0
	k.parity = parityEven
	k.ioByte = b
	k.mode = modeWrite
	k.bus.EnableClockInterrupt()

	// Request-to-send: pull data low, then release the clock.
	k.bus.DataOutput()
	k.bus.WriteData(false)
	k.bus.ClockInput()

	k.diag.SentByte(b)
}

// ReadScanCode returns the next code sent by the keyboard, None when
// nothing is pending, or Garbled when a framing error was observed (in
// which case a resend has been requested and the code will reappear).
// Call it frequently; the queue is small.
func (k *Keyboard) ReadScanCode() ScanCode {
	k.bus.DisableClockInterrupt()
	code := k.queue.pop()
	framingError := k.framingError
	failureMicros := k.failureMicros
	k.bus.EnableClockInterrupt()

	if code == None && framingError {
		// A resend affects what the device thinks the last byte sent
		// was. If it is still mid-frame, asking now would get us the
		// byte before the one that failed, so wait out the tail of the
		// frame first.
		if k.bus.Micros()-failureMicros < resendGuardMicros {
			return None
		}
		k.sendNack()
		return Garbled
	}

	if code != None {
		k.diag.ReceivedByte(uint8(code))
		if !k.expectingResult && (code == SelfTestPassed || code == SelfTestFailed) {
			// Power-on self-test announcement from a keyboard that was
			// just plugged in; not a keystroke.
			return None
		}
	}
	return code
}

// expectResponse polls the receive path for the next byte, bounded by
// the given deadline. None signals timeout; Garbled signals a framing
// error observed during the wait.
func (k *Keyboard) expectResponse(timeoutMillis uint32) ScanCode {
	start := k.bus.Millis()
	k.expectingResult = true
	var got ScanCode
	for {
		got = k.ReadScanCode()
		if got != None {
			break
		}
		// Unsigned subtraction keeps this correct across wraparound.
		if k.bus.Millis()-start >= timeoutMillis {
			break
		}
	}
	k.expectingResult = false

	if got == None {
		k.diag.NoResponse(None)
	}
	return got
}

func (k *Keyboard) expectResponseIs(want ScanCode, timeoutMillis uint32) bool {
	got := k.expectResponse(timeoutMillis)
	switch {
	case got == None:
		// Diagnostics already reported.
		return false
	case got != want:
		k.diag.IncorrectResponse(got, want)
		return false
	}
	return true
}

func (k *Keyboard) expectAck() bool {
	return k.expectResponseIs(Ack, immediateResponseMillis)
}

// sendData transmits one byte and waits for the keyboard to acknowledge
// it. On failure the receive machine is re-armed so the stream keeps
// flowing.
func (k *Keyboard) sendData(b uint8) bool {
	k.sendByte(b)
	if !k.expectAck() {
		k.diag.NoAckReceived()
		k.enableRead()
		return false
	}
	return true
}

func (k *Keyboard) sendNack() {
	k.diag.SentNack()
	k.sendByte(uint8(cmdResend))
}

// sendCommand sends a command byte and any parameter bytes, each
// individually acknowledged, short-circuiting on the first failure.
func (k *Keyboard) sendCommand(cmd command, params ...uint8) bool {
	if !k.sendData(uint8(cmd)) {
		return false
	}
	for _, p := range params {
		if !k.sendData(p) {
			return false
		}
	}
	return true
}

// Reset resets the keyboard and reports whether it passed its self
// test. This can take up to a second to complete.
func (k *Keyboard) Reset() bool {
	k.bus.DisableClockInterrupt()
	k.queue.clear()
	k.bus.EnableClockInterrupt()

	k.sendCommand(cmdReset)
	return k.expectResponse(resetResponseMillis) == SelfTestPassed
}

// ReadID returns the two-byte device ID, documented to always be
// 0xAB83 for a keyboard, or 0xFFFF on any failure.
func (k *Keyboard) ReadID() uint16 {
	k.sendCommand(cmdReadID)
	first := k.expectResponse(immediateResponseMillis)
	if first == None {
		return 0xFFFF
	}
	second := k.expectResponse(immediateResponseMillis)
	if second == None {
		return 0xFFFF
	}
	return uint16(first)<<8 | uint16(second)
}

// Echo verifies that a keyboard is connected and responding. This may
// take several milliseconds.
func (k *Keyboard) Echo() bool {
	k.sendByte(uint8(cmdEcho))
	return k.expectResponseIs(EchoResponse, immediateResponseMillis)
}

// SetLeds drives the caps/num/scroll lock LEDs.
func (k *Keyboard) SetLeds(leds Leds) bool {
	return k.sendCommand(cmdSetLeds, uint8(leds))
}

// GetScanCodeSet asks the keyboard which scan code set it is using.
func (k *Keyboard) GetScanCodeSet() ScanCodeSet {
	if !k.sendCommand(cmdSetScanCodeSet, 0) {
		return ScanCodeSetError
	}
	got := ScanCodeSet(k.expectResponse(immediateResponseMillis))
	switch got {
	case ScanCodeSetPCXT, ScanCodeSetPCAT, ScanCodeSetPS2:
		return got
	}
	return ScanCodeSetError
}

// SetScanCodeSet switches the keyboard to the given scan code set.
func (k *Keyboard) SetScanCodeSet(set ScanCodeSet) bool {
	return k.sendCommand(cmdSetScanCodeSet, uint8(set))
}

// SetTypematicRateAndDelay configures key auto-repeat.
func (k *Keyboard) SetTypematicRateAndDelay(rate TypematicRate, delay TypematicStartDelay) bool {
	combined := uint8(rate) | uint8(delay)<<5
	return k.sendCommand(cmdSetTypematicRate, combined)
}

// ResetToDefaults restores the scan code set, typematic rate and
// typematic delay without the full self test.
func (k *Keyboard) ResetToDefaults() bool {
	return k.sendCommand(cmdUseDefaultSettings)
}

// Enable resumes scanning; Disable stops the keyboard sending key
// events until Enable or a reset.
func (k *Keyboard) Enable() bool  { return k.sendCommand(cmdEnable) }
func (k *Keyboard) Disable() bool { return k.sendCommand(cmdDisable) }

// EnableBreakAndTypematic instructs the keyboard to resume sending
// break codes and auto-repeats for all keys. Only meaningful in the
// PS/2 scan code set (3).
func (k *Keyboard) EnableBreakAndTypematic() bool {
	return k.sendCommand(cmdEnableBreakAndTypematicForAllKeys)
}

// DisableBreakCodes stops the keyboard sending break codes for all
// keys. Only meaningful in the PS/2 scan code set (3).
func (k *Keyboard) DisableBreakCodes() bool {
	return k.sendCommand(cmdDisableBreaksForAllKeys)
}

// DisableBreakCodesFor stops break codes for the given set-3 scan
// codes. A single invalid code in the list can wedge the keyboard, and
// the keyboard is left disabled afterward; call Enable to fix that.
func (k *Keyboard) DisableBreakCodesFor(keys []uint8) bool {
	return k.sendCommand(cmdDisableBreaksForSpecificKeys, keys...)
}

// DisableTypematic stops auto-repeat for all keys. Only meaningful in
// the PS/2 scan code set (3).
func (k *Keyboard) DisableTypematic() bool {
	return k.sendCommand(cmdDisableTypematicForAllKeys)
}

// DisableTypematicFor stops auto-repeat for the given set-3 scan codes.
// The keyboard is left disabled afterward; call Enable to fix that.
func (k *Keyboard) DisableTypematicFor(keys []uint8) bool {
	return k.sendCommand(cmdDisableTypematicForSpecificKeys, keys...)
}

// DisableBreakAndTypematic stops both break codes and auto-repeat for
// all keys. Only meaningful in the PS/2 scan code set (3).
func (k *Keyboard) DisableBreakAndTypematic() bool {
	return k.sendCommand(cmdDisableBreakAndTypematicForAllKeys)
}

// DisableBreakAndTypematicFor stops both for the given set-3 scan
// codes. The keyboard is left disabled afterward; call Enable to fix
// that.
func (k *Keyboard) DisableBreakAndTypematicFor(keys []uint8) bool {
	return k.sendCommand(cmdDisableBreakAndTypematicForSpecificKeys, keys...)
}
