package ansi

import (
	"testing"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"
)

// feed pushes a sequence of raw scan codes and returns the characters
// that came out.
func feed(t *Translator, codes ...ps2.ScanCode) []byte {
	var out []byte
	for _, c := range codes {
		if ch := t.Translate(c); ch != 0 {
			out = append(out, ch)
		}
	}
	return out
}

// tap simulates a full press and release of one key.
func tap(t *Translator, code ps2.ScanCode) byte {
	ch := t.Translate(code)
	t.Translate(ps2.Unmake)
	t.Translate(code)
	return ch
}

func TestPlainLetters(t *testing.T) {
	tr := New()
	if got := tap(tr, 0x1C); got != 'a' {
		t.Errorf("0x1c = %q, want 'a'", got)
	}
	if got := tap(tr, 0x34); got != 'g' {
		t.Errorf("0x34 = %q, want 'g'", got)
	}
	if got := tap(tr, 0x29); got != ' ' {
		t.Errorf("0x29 = %q, want space", got)
	}
	if got := tap(tr, 0x5A); got != '\r' {
		t.Errorf("0x5a = %q, want CR", got)
	}
}

func TestReleaseEmitsNothing(t *testing.T) {
	tr := New()
	if got := feed(tr, ps2.Unmake, 0x1C); len(got) != 0 {
		t.Errorf("release of 'a' emitted %q", got)
	}
	// The next press still works.
	if got := tap(tr, 0x1C); got != 'a' {
		t.Errorf("press after release = %q, want 'a'", got)
	}
}

func TestShift(t *testing.T) {
	tr := New()
	tr.Translate(ps2.LeftShift)
	if !tr.ShiftKeyDown() {
		t.Fatal("shift not tracked")
	}
	if got := tap(tr, 0x1C); got != 'A' {
		t.Errorf("shift+a = %q, want 'A'", got)
	}
	if got := tap(tr, 0x16); got != '!' {
		t.Errorf("shift+1 = %q, want '!'", got)
	}
	if got := tap(tr, 0x4E); got != '_' {
		t.Errorf("shift+- = %q, want '_'", got)
	}
	feed(tr, ps2.Unmake, ps2.LeftShift)
	if tr.ShiftKeyDown() {
		t.Fatal("shift release not tracked")
	}
	if got := tap(tr, 0x1C); got != 'a' {
		t.Errorf("a after shift release = %q, want 'a'", got)
	}
}

func TestCapsLock(t *testing.T) {
	tr := New()
	tap(tr, 0x58)
	if !tr.CapsLock() {
		t.Fatal("caps lock not toggled")
	}
	if got := tap(tr, 0x1C); got != 'A' {
		t.Errorf("caps+a = %q, want 'A'", got)
	}
	// Caps lock upcases letters but leaves the digit row alone.
	if got := tap(tr, 0x16); got != '1' {
		t.Errorf("caps+1 = %q, want '1'", got)
	}
	// Shift cancels caps for letters.
	tr.Translate(ps2.LeftShift)
	if got := tap(tr, 0x1C); got != 'a' {
		t.Errorf("caps+shift+a = %q, want 'a'", got)
	}
}

func TestCtrl(t *testing.T) {
	tr := New()
	tr.Translate(ps2.Ctrl)
	if !tr.CtrlKeyDown() {
		t.Fatal("ctrl not tracked")
	}
	if got := tap(tr, 0x34); got != 7 {
		t.Errorf("ctrl+g = %#x, want 0x07", got)
	}
	feed(tr, ps2.Unmake, ps2.Ctrl)
	if got := tap(tr, 0x34); got != 'g' {
		t.Errorf("g after ctrl release = %q, want 'g'", got)
	}
}

func TestNumLock(t *testing.T) {
	tr := New()
	// Keypad 8 doubles as the up arrow when num lock is off.
	if got := tap(tr, 0x75); got != 0 {
		t.Errorf("keypad 8 without num lock = %q, want nothing", got)
	}
	tap(tr, 0x77) // num lock key
	if !tr.NumLock() {
		t.Fatal("num lock not toggled")
	}
	if got := tap(tr, 0x75); got != '8' {
		t.Errorf("keypad 8 with num lock = %q, want '8'", got)
	}
	if got := tap(tr, 0x71); got != '.' {
		t.Errorf("keypad . with num lock = %q, want '.'", got)
	}
	// Keypad + is not governed by num lock.
	tr.SetNumLock(false)
	if got := tap(tr, 0x79); got != '+' {
		t.Errorf("keypad + without num lock = %q, want '+'", got)
	}
}

func TestExtendedKeys(t *testing.T) {
	tr := New()
	// Keypad enter is the one extended key with an ANSI meaning.
	if got := feed(tr, ps2.Extend, ps2.KeypadEnter); string(got) != "\r" {
		t.Errorf("extended keypad enter = %q, want CR", got)
	}
	// Keypad / shares a code with the main-row / but emits nothing.
	if got := feed(tr, ps2.Extend, 0x4A); len(got) != 0 {
		t.Errorf("extended 0x4a emitted %q", got)
	}
	if got := feed(tr, ps2.Extend, ps2.Unmake, ps2.KeypadEnter); len(got) != 0 {
		t.Errorf("extended release emitted %q", got)
	}
}

func TestPauseKeySequence(t *testing.T) {
	tr := New()
	// The full make/break sequence the Pause key sends. It embeds the
	// ctrl and num lock codes, which must not disturb their state.
	got := feed(tr, 0xE1, 0x14, 0x77, 0xE1, ps2.Unmake, 0x14, ps2.Unmake, 0x77)
	if len(got) != 0 {
		t.Errorf("pause sequence emitted %q", got)
	}
	if tr.CtrlKeyDown() {
		t.Error("pause sequence left ctrl down")
	}
	if tr.NumLock() {
		t.Error("pause sequence toggled num lock")
	}
	if got := tap(tr, 0x1C); got != 'a' {
		t.Errorf("key after pause = %q, want 'a'", got)
	}
}

func TestKeysWithNoMeaningEmitNothing(t *testing.T) {
	tr := New()
	for _, code := range []ps2.ScanCode{0x05 /* F1 */, 0x78 /* F11 */, 0x58 /* caps */, 0x77 /* num */} {
		if got := tap(tr, code); got != 0 {
			t.Errorf("%#x emitted %q", code, got)
		}
	}
}

func TestResetClearsPrefixesOnly(t *testing.T) {
	tr := New()
	tr.Translate(ps2.LeftShift)
	tr.SetCapsLock(true)
	tr.Translate(ps2.Extend)
	tr.Translate(ps2.Unmake)
	tr.Reset()
	// Shift and caps survive; shift cancels caps, so 'a' comes through
	// lowercase and is emitted (not swallowed as a release).
	if got := tap(tr, 0x1C); got != 'a' {
		t.Errorf("a after Reset = %q, want 'a'", got)
	}
	if !tr.ShiftKeyDown() || !tr.CapsLock() {
		t.Error("Reset cleared modifier or lock state")
	}
}
