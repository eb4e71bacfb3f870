package settings

import (
	"testing"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"

	"tinygo.org/x/tinyfs"
)

func newTestStore(t *testing.T) (*Store, *tinyfs.MemBlockDevice) {
	// Memory-backed block device shaped like RP2040 flash:
	// 256 byte pages, 4096 byte blocks, 64 blocks.
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)
	store, err := NewStore(blockDev, true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, blockDev
}

func TestLoadMissingFile(t *testing.T) {
	store, _ := newTestStore(t)
	defer store.Close()

	var s Settings
	if err := store.Load(&s); !isNotExist(err) {
		t.Errorf("Load on empty store = %v, want a not-exist error", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	defer store.Close()

	s := Default()
	s.Leds = ps2.LedCapsLock
	s.TypematicRate = ps2.RateSlowest
	if err := store.Save(&s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got Settings
	if err := store.Load(&got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != s {
		t.Errorf("Load = %+v, want %+v", got, s)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	defer store.Close()

	s := Default()
	if err := store.Save(&s); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	s.Leds = ps2.LedAll
	if err := store.Save(&s); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	var got Settings
	if err := store.Load(&got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Leds != ps2.LedAll {
		t.Errorf("Leds after overwrite = %#x, want LedAll", got.Leds)
	}
}

func TestVersionMismatchWipesOnRemount(t *testing.T) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)
	store, err := NewStore(blockDev, true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s := Default()
	if err := store.Save(&s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Sneak a bumped version onto flash, as an older firmware's file
	// would look to us after an upgrade.
	s.Version = CurrentVersion + 1
	data, _ := s.MarshalBinary()
	if err := store.atomicWrite(settingsFile, data); err != nil {
		t.Fatalf("atomicWrite: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store2, err := NewStore(blockDev, false)
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	defer store2.Close()

	var got Settings
	if err := store2.Load(&got); !isNotExist(err) {
		t.Errorf("Load after version mismatch = %v, want a not-exist error", err)
	}
}

func TestWipe(t *testing.T) {
	store, _ := newTestStore(t)
	defer store.Close()

	s := Default()
	if err := store.Save(&s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	var got Settings
	if err := store.Load(&got); !isNotExist(err) {
		t.Errorf("Load after Wipe = %v, want a not-exist error", err)
	}
}

func TestSettingsSurviveRemount(t *testing.T) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)
	store, err := NewStore(blockDev, true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := Default()
	s.ScanCodeSet = ps2.ScanCodeSetPS2
	if err := store.Save(&s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store2, err := NewStore(blockDev, false)
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	defer store2.Close()

	var got Settings
	if err := store2.Load(&got); err != nil {
		t.Fatalf("Load after remount: %v", err)
	}
	if got.ScanCodeSet != ps2.ScanCodeSetPS2 {
		t.Errorf("ScanCodeSet after remount = %d, want PS2", got.ScanCodeSet)
	}
}
