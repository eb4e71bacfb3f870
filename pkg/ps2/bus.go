package ps2

// Bus abstracts the data/clock pin pair and the timing primitives the
// protocol engine needs. The engine calls the sampling and driving
// methods from both the clock-edge interrupt and the polling context;
// implementations must perform them synchronously, without buffering.
//
// The pkg/ps2io package provides the RP2040 implementation; tests use a
// scripted bus that generates edges on demand.
type Bus interface {
	// ConfigurePins puts both lines into pulled-up input mode, the idle
	// state of an open-collector PS/2 bus.
	ConfigurePins()

	// ReadData samples the data line.
	ReadData() bool
	// WriteData drives the data line. Only meaningful after DataOutput.
	WriteData(high bool)
	// DataOutput switches the data line to output mode.
	DataOutput()
	// DataInput releases the data line back to pulled-up input.
	DataInput()

	// ClockLow drives the clock line low, inhibiting the device.
	ClockLow()
	// ClockInput releases the clock line back to pulled-up input.
	ClockInput()

	// SetClockHandler registers fn to run on every falling clock edge.
	// Registration implies the interrupt is enabled.
	SetClockHandler(fn func())
	// DisableClockInterrupt masks the falling-edge interrupt;
	// EnableClockInterrupt restores it. The polling side brackets every
	// multi-step read of state the edge handler also touches with this
	// pair.
	DisableClockInterrupt()
	EnableClockInterrupt()

	// Micros and Millis read free-running monotonic clocks. Both wrap;
	// callers compare by subtraction.
	Micros() uint32
	Millis() uint32
	// DelayMicros busy-waits for at least the given duration.
	DelayMicros(us uint32)
}
