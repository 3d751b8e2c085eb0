package core

import (
	"strings"
	"testing"
)

func TestEventRingOrderAndWrap(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	for i := uint32(0); i < EventRingSize+5; i++ {
		RecordEvent(EvtTick, 0, i, 0)
	}

	evts := Events()
	if len(evts) != EventRingSize {
		t.Fatalf("got %d events, expected %d", len(evts), EventRingSize)
	}
	if evts[0].Value1 != 5 {
		t.Errorf("oldest event v1 = %d, expected 5", evts[0].Value1)
	}
	if last := evts[len(evts)-1]; last.Value1 != EventRingSize+4 {
		t.Errorf("newest event v1 = %d, expected %d", last.Value1, EventRingSize+4)
	}
}

func TestDumpEventRing(t *testing.T) {
	ClearEventRing()
	defer ClearEventRing()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	RecordEvent(EvtStaleFlush, 3, 2, 0xAABBCCDD)
	DumpEventRing()

	if len(lines) != 3 {
		t.Fatalf("dump produced %d lines: %q", len(lines), lines)
	}
	want := "[EVENT] STALE port=3 v1=0x00000002 v2=2864434397"
	if lines[1] != want {
		t.Errorf("dump line = %q, expected %q", lines[1], want)
	}
}

func TestDebugPrintlnGated(t *testing.T) {
	var out []string
	SetDebugWriter(func(s string) { out = append(out, s) })
	defer SetDebugWriter(func(string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if strings.Join(out, ",") != "shown" {
		t.Errorf("debug output = %q", out)
	}
}

func TestStrutil(t *testing.T) {
	if utoa(0) != "0" || utoa(4294967295) != "4294967295" {
		t.Errorf("utoa: %q %q", utoa(0), utoa(4294967295))
	}
	if hex32(0x16540000) != "0x16540000" || hex32(0xabc) != "0x00000abc" {
		t.Errorf("hex32: %q %q", hex32(0x16540000), hex32(0xabc))
	}
}

// Error strings are matched by tooling that reads console logs.
func TestErrorStringsStable(t *testing.T) {
	tests := map[error]string{
		ErrInvalidPort:        "invalid_port",
		ErrPortConfigured:     "port_configured",
		ErrNoData:             "no_data",
		ErrNotInitialized:     "not_initialized",
		ErrAlreadyInitialized: "already_initialized",
		ErrInvalidFrequency:   "invalid_frequency",
	}
	for err, want := range tests {
		if err.Error() != want {
			t.Errorf("error string %q, expected %q", err.Error(), want)
		}
	}
}
