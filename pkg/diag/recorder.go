// Package diag records protocol events in a small ring buffer so that
// a flaky keyboard can be debugged in the field. A Recorder implements
// ps2.Sink; feed its Report to a serial console or a display when
// something goes wrong.
package diag

import (
	"fmt"
	"io"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"
)

// Event codes. Codes below firstInfoCode are failures and set a bit in
// the failure mask; the rest are traffic notifications.
const (
	codePacketDidNotStartWithZero = 0
	codeParityError               = 1
	codePacketDidNotEndWithOne    = 2
	codeSendFrameError            = 3
	codeBufferOverflow            = 4
	codeIncorrectResponse         = 5
	codeNoResponse                = 6
	codeNoAckReceived             = 7
	codeNoTranslationForKey       = 8

	firstInfoCode = 16

	codeSentByte     = 16
	codeReceivedByte = 17
	codeSentNack     = 18
)

// Recorder keeps the last events in a byte ring. Each event is one
// header byte, code<<2 | number-of-extra-bytes, followed by its extra
// bytes. Old events fall off the front.
//
// Several events fire from the clock-edge interrupt while Report and
// Reset run from the polling context; on hardware, set an interrupt
// guard so the two cannot interleave. Recording itself never allocates.
type Recorder struct {
	data     []byte
	next     int
	wrapped  bool
	failures uint16
	guard    func(func())
}

// NewRecorder returns a Recorder keeping roughly the last size event
// bytes; 32 when size is not positive.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 32
	}
	return &Recorder{
		data:  make([]byte, size),
		guard: func(fn func()) { fn() },
	}
}

// SetInterruptGuard installs the critical-section wrapper used around
// ring updates and reads. On RP2040 pass a function that masks the
// clock interrupt while it runs the callback. Tests and hosted builds
// can leave the default, which runs the callback directly.
func (r *Recorder) SetInterruptGuard(guard func(func())) {
	r.guard = guard
}

// AnyErrors reports whether any failure event has been recorded since
// the last Reset.
func (r *Recorder) AnyErrors() bool { return r.failures != 0 }

// Failures returns the bitmask of failure codes seen since the last
// Reset.
func (r *Recorder) Failures() uint16 { return r.failures }

// Reset clears the ring and the failure mask.
func (r *Recorder) Reset() {
	r.guard(func() {
		r.failures = 0
		r.next = 0
		r.wrapped = false
	})
}

// Report writes the failure mask and the event ring as a compact hex
// blob, oldest event first. It is not meant to be human-readable so
// much as short enough to read back over a serial console.
func (r *Recorder) Report(w io.Writer) error {
	var failures uint16
	var snapshot []byte
	r.guard(func() {
		failures = r.failures
		if r.wrapped {
			snapshot = append(snapshot, r.data[r.next:]...)
			snapshot = append(snapshot, r.data[:r.next]...)
		} else {
			snapshot = append(snapshot, r.data[:r.next]...)
		}
	})

	if _, err := fmt.Fprintf(w, "{%x:", failures); err != nil {
		return err
	}
	for _, b := range snapshot {
		if _, err := fmt.Fprintf(w, "%02x", b); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}

func (r *Recorder) push(code uint8, extra ...uint8) {
	r.guard(func() {
		if code < firstInfoCode {
			r.failures |= 1 << code
		}
		r.pushByte(code<<2 | uint8(len(extra)))
		for _, e := range extra {
			r.pushByte(e)
		}
	})
}

func (r *Recorder) pushByte(b byte) {
	r.data[r.next] = b
	r.next++
	if r.next == len(r.data) {
		r.next = 0
		r.wrapped = true
	}
}

// ps2.Sink implementation.

func (r *Recorder) PacketDidNotStartWithZero() { r.push(codePacketDidNotStartWithZero) }
func (r *Recorder) ParityError()               { r.push(codeParityError) }
func (r *Recorder) PacketDidNotEndWithOne()    { r.push(codePacketDidNotEndWithOne) }
func (r *Recorder) SendFrameError()            { r.push(codeSendFrameError) }
func (r *Recorder) BufferOverflow()            { r.push(codeBufferOverflow) }
func (r *Recorder) NoAckReceived()             { r.push(codeNoAckReceived) }
func (r *Recorder) SentNack()                  { r.push(codeSentNack) }
func (r *Recorder) SentByte(b uint8)           { r.push(codeSentByte, b) }
func (r *Recorder) ReceivedByte(b uint8)       { r.push(codeReceivedByte, b) }

func (r *Recorder) IncorrectResponse(got, want ps2.ScanCode) {
	r.push(codeIncorrectResponse, uint8(got), uint8(want))
}

func (r *Recorder) NoResponse(want ps2.ScanCode) {
	r.push(codeNoResponse, uint8(want))
}

func (r *Recorder) NoTranslationForKey(isExtended bool, code ps2.ScanCode) {
	var ext uint8
	if isExtended {
		ext = 1
	}
	r.push(codeNoTranslationForKey, ext, uint8(code))
}
