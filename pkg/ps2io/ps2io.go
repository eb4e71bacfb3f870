// Package ps2io implements the ps2.Bus interface on real GPIO pins.
// The PS/2 bus is open collector: both lines idle high through pull-up
// resistors and either end drives them low, so the pins sit in
// input-pullup mode except while the host is actively driving.
package ps2io

import (
	"machine"
	"time"
)

// PinConfig names the two pins the keyboard is wired to.
type PinConfig struct {
	Data  machine.Pin
	Clock machine.Pin
}

// Bus drives one PS/2 port. Only one Bus can have its clock interrupt
// attached at a time; pin interrupt callbacks cannot close over state,
// so dispatch goes through a package-level registration.
type Bus struct {
	data    machine.Pin
	clock   machine.Pin
	handler func()
}

var registered *Bus

func clockInterrupt(machine.Pin) {
	b := registered
	if b != nil && b.handler != nil {
		b.handler()
	}
}

// New returns a Bus over the given pins. Nothing is configured until
// ConfigurePins.
func New(cfg PinConfig) *Bus {
	return &Bus{data: cfg.Data, clock: cfg.Clock}
}

func (b *Bus) ConfigurePins() {
	b.data.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	b.clock.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (b *Bus) ReadData() bool {
	return b.data.Get()
}

func (b *Bus) WriteData(high bool) {
	b.data.Set(high)
}

func (b *Bus) DataOutput() {
	b.data.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

func (b *Bus) DataInput() {
	b.data.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (b *Bus) ClockLow() {
	b.clock.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.clock.Low()
}

func (b *Bus) ClockInput() {
	b.clock.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (b *Bus) SetClockHandler(fn func()) {
	b.handler = fn
	registered = b
	b.clock.SetInterrupt(machine.PinFalling, clockInterrupt)
}

func (b *Bus) DisableClockInterrupt() {
	b.clock.SetInterrupt(machine.PinFalling, nil)
}

func (b *Bus) EnableClockInterrupt() {
	b.clock.SetInterrupt(machine.PinFalling, clockInterrupt)
}

func (b *Bus) Micros() uint32 {
	return uint32(time.Now().UnixNano() / 1e3)
}

func (b *Bus) Millis() uint32 {
	return uint32(time.Now().UnixNano() / 1e6)
}

func (b *Bus) DelayMicros(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
