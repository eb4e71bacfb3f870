// Package settings holds the keyboard configuration that survives a
// power cycle: scan code set, typematic behavior and the lock LEDs. The
// structs are fixed-size for zero-allocation binary serialization.
package settings

import (
	"encoding/binary"
	"errors"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"
)

// CurrentVersion is the settings format version. Bump it on breaking
// layout changes; a mismatch found in flash at boot wipes the file and
// falls back to defaults.
const CurrentVersion uint16 = 1

// Flag bits.
const (
	// FlagScanningDisabled leaves the keyboard disabled after Apply.
	FlagScanningDisabled uint32 = 1 << iota
)

var ErrInvalidSize = errors.New("invalid settings size")

// Settings is the persisted keyboard configuration.
// Total size: 12 bytes
// Layout:
//
//	[0-1]:  Version (uint16)
//	[2-5]:  Flags (uint32)
//	[6]:    ScanCodeSet (uint8)
//	[7]:    TypematicRate (uint8)
//	[8]:    TypematicDelay (uint8)
//	[9]:    Leds (uint8)
//	[10-11]: Reserved
type Settings struct {
	Version        uint16
	Flags          uint32
	ScanCodeSet    ps2.ScanCodeSet
	TypematicRate  ps2.TypematicRate
	TypematicDelay ps2.TypematicStartDelay
	Leds           ps2.Leds
	Reserved       uint16
}

// Default returns the configuration a freshly reset keyboard has.
func Default() Settings {
	return Settings{
		Version:        CurrentVersion,
		ScanCodeSet:    ps2.ScanCodeSetDefault,
		TypematicRate:  ps2.RateDefault,
		TypematicDelay: ps2.DelayDefault,
		Leds:           ps2.LedNone,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Settings) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint16(buf[0:], s.Version)
	binary.LittleEndian.PutUint32(buf[2:], s.Flags)
	buf[6] = uint8(s.ScanCodeSet)
	buf[7] = uint8(s.TypematicRate)
	buf[8] = uint8(s.TypematicDelay)
	buf[9] = uint8(s.Leds)
	binary.LittleEndian.PutUint16(buf[10:], s.Reserved)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Settings) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return ErrInvalidSize
	}
	s.Version = binary.LittleEndian.Uint16(data[0:])
	s.Flags = binary.LittleEndian.Uint32(data[2:])
	s.ScanCodeSet = ps2.ScanCodeSet(data[6])
	s.TypematicRate = ps2.TypematicRate(data[7])
	s.TypematicDelay = ps2.TypematicStartDelay(data[8])
	s.Leds = ps2.Leds(data[9])
	s.Reserved = binary.LittleEndian.Uint16(data[10:])
	return nil
}

// Commander is the slice of ps2.Keyboard that Apply drives. It is an
// interface so settings can be tested without a wire protocol behind
// them.
type Commander interface {
	SetScanCodeSet(set ps2.ScanCodeSet) bool
	SetTypematicRateAndDelay(rate ps2.TypematicRate, delay ps2.TypematicStartDelay) bool
	SetLeds(leds ps2.Leds) bool
	Disable() bool
}

// Apply pushes the configuration to the keyboard, skipping commands
// whose value matches the keyboard's power-on state. It reports whether
// every command was acknowledged.
func (s *Settings) Apply(kbd Commander) bool {
	ok := true
	if s.ScanCodeSet != ps2.ScanCodeSetDefault {
		ok = kbd.SetScanCodeSet(s.ScanCodeSet) && ok
	}
	if s.TypematicRate != ps2.RateDefault || s.TypematicDelay != ps2.DelayDefault {
		ok = kbd.SetTypematicRateAndDelay(s.TypematicRate, s.TypematicDelay) && ok
	}
	if s.Leds != ps2.LedNone {
		ok = kbd.SetLeds(s.Leds) && ok
	}
	if s.Flags&FlagScanningDisabled != 0 {
		ok = kbd.Disable() && ok
	}
	return ok
}
