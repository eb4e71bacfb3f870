package ps2

// Sink receives named protocol events. The engine calls it
// synchronously and unconditionally when the event happens; several of
// the calls fire from the clock-edge interrupt, so implementations must
// not block or allocate there.
//
// pkg/diag provides a ring-buffer recorder; NullSink drops everything.
type Sink interface {
	// Framing violations seen by the receive state machine. These
	// usually mean an interrupt got dropped, e.g. because another
	// interrupt or critical section was running when the clock fell.
	PacketDidNotStartWithZero()
	ParityError()
	PacketDidNotEndWithOne()

	// BufferOverflow reports that the scan-code queue dropped its
	// oldest unread entry to make room.
	BufferOverflow()

	// SendFrameError reports that the device did not acknowledge the
	// stop condition of a host-to-device byte.
	SendFrameError()

	// Handshake outcomes of the command/response layer.
	NoAckReceived()
	IncorrectResponse(got, want ScanCode)
	NoResponse(want ScanCode)

	// NoTranslationForKey is fired by the HID translator for a scan
	// code with no table entry.
	NoTranslationForKey(isExtended bool, code ScanCode)

	// Traffic notifications.
	SentNack()
	SentByte(b uint8)
	ReceivedByte(b uint8)
}

// NullSink is the Sink to use when nothing is debugging the keyboard
// anymore.
type NullSink struct{}

func (NullSink) PacketDidNotStartWithZero()                {}
func (NullSink) ParityError()                              {}
func (NullSink) PacketDidNotEndWithOne()                   {}
func (NullSink) BufferOverflow()                           {}
func (NullSink) SendFrameError()                           {}
func (NullSink) NoAckReceived()                            {}
func (NullSink) IncorrectResponse(got, want ScanCode)      {}
func (NullSink) NoResponse(want ScanCode)                  {}
func (NullSink) NoTranslationForKey(ext bool, c ScanCode)  {}
func (NullSink) SentNack()                                 {}
func (NullSink) SentByte(b uint8)                          {}
func (NullSink) ReceivedByte(b uint8)                      {}
