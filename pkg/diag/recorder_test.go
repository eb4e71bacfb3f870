package diag

import (
	"strings"
	"testing"

	"github.com/SteveBenz/PS2KeyboardHost/pkg/ps2"
)

// The Recorder must satisfy the engine's diagnostics interface.
var _ ps2.Sink = (*Recorder)(nil)

func report(t *testing.T, r *Recorder) string {
	var sb strings.Builder
	if err := r.Report(&sb); err != nil {
		t.Fatalf("Report: %v", err)
	}
	return sb.String()
}

func TestEmptyReport(t *testing.T) {
	r := NewRecorder(16)
	if got := report(t, r); got != "{0:}" {
		t.Errorf("empty report = %q, want {0:}", got)
	}
	if r.AnyErrors() {
		t.Error("AnyErrors on a fresh recorder")
	}
}

func TestFailureMask(t *testing.T) {
	r := NewRecorder(16)
	r.ParityError()
	r.BufferOverflow()
	if !r.AnyErrors() {
		t.Fatal("AnyErrors = false after failures")
	}
	want := uint16(1<<codeParityError | 1<<codeBufferOverflow)
	if r.Failures() != want {
		t.Errorf("Failures = %#x, want %#x", r.Failures(), want)
	}
	// Traffic events don't count as failures.
	r2 := NewRecorder(16)
	r2.SentByte(0xED)
	r2.ReceivedByte(0xFA)
	r2.SentNack()
	if r2.AnyErrors() {
		t.Error("AnyErrors = true for traffic-only events")
	}
}

func TestEventEncoding(t *testing.T) {
	r := NewRecorder(16)
	r.ParityError()                 // header 04
	r.SentByte(0xED)                // header 41, payload ed
	r.IncorrectResponse(0xEE, 0xFA) // header 16, payload ee fa
	want := "{2:0441ed16eefa}"
	if got := report(t, r); got != want {
		t.Errorf("report = %q, want %q", got, want)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRecorder(4)
	for i := 0; i < 10; i++ {
		r.ReceivedByte(uint8(i))
	}
	// Each event is two bytes, so a 4-byte ring holds the last two.
	got := report(t, r)
	if got != "{0:45084509}" {
		t.Errorf("report = %q, want the last two events {0:45084509}", got)
	}
}

func TestReset(t *testing.T) {
	r := NewRecorder(16)
	r.ParityError()
	r.SentByte(0x12)
	r.Reset()
	if r.AnyErrors() {
		t.Error("AnyErrors after Reset")
	}
	if got := report(t, r); got != "{0:}" {
		t.Errorf("report after Reset = %q, want {0:}", got)
	}
}

func TestInterruptGuardUsed(t *testing.T) {
	r := NewRecorder(16)
	calls := 0
	r.SetInterruptGuard(func(fn func()) {
		calls++
		fn()
	})
	r.ParityError()
	report(t, r)
	r.Reset()
	if calls != 3 {
		t.Errorf("guard invoked %d times, want 3", calls)
	}
}
