package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"msmbsp/board"
	"msmbsp/core"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := newSession(board.DefaultConfig(), &out)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		core.SetDebugWriter(func(string) {})
		core.SetDebugEnabled(false)
	})
	return s, &out
}

func run(t *testing.T, s *session, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if err := s.exec(line); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	return out.String()
}

func TestSessionRxGetc(t *testing.T) {
	s, out := newTestSession(t)

	run(t, s, out, `rx 1 "hello world!"`)
	if got := run(t, s, out, "getc 1 20"); got != "\"hello world!\"\n" {
		t.Errorf("getc output = %q", got)
	}
	if got := run(t, s, out, "getc 1"); got != "\"\"\n" {
		t.Errorf("getc on drained port = %q", got)
	}
}

func TestSessionWriteTx(t *testing.T) {
	s, out := newTestSession(t)

	run(t, s, out, "tx") // drop boot output
	run(t, s, out, `write 0 "ok then"`)
	if got := run(t, s, out, "tx 1"); got != "\"ok then\"\n" {
		t.Errorf("tx output = %q", got)
	}
}

func TestSessionTimer(t *testing.T) {
	s, out := newTestSession(t)

	if got := run(t, s, out, "tick 3"); got != "fired 3, elapsed 30ms\n" {
		t.Errorf("tick output = %q", got)
	}
	if got := run(t, s, out, "periodic 1"); got != "match 6750 ticks\n" {
		t.Errorf("periodic output = %q", got)
	}
	if got := run(t, s, out, "gpt 33000"); got != "1000ms 1000000us\n" {
		t.Errorf("gpt output = %q", got)
	}
}

func TestSessionRegsAndTrace(t *testing.T) {
	s, out := newTestSession(t)

	got := run(t, s, out, "regs 1")
	if !strings.Contains(got, "MR2=0x34") || !strings.Contains(got, "CSR=0xff") {
		t.Errorf("regs output = %q", got)
	}
	if got := run(t, s, out, "trace 2"); strings.Count(got, "\n") != 2 {
		t.Errorf("trace output = %q", got)
	}
}

func TestSessionErrors(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.exec("bogus"); err == nil {
		t.Error("unknown command accepted")
	}
	if err := s.exec("rx 9 x"); !errors.Is(err, core.ErrInvalidPort) {
		t.Errorf("rx on unknown port returned %v", err)
	}
	if err := s.exec("rx 1 'unterminated"); err == nil {
		t.Error("unbalanced quote accepted")
	}
	if err := s.exec("quit"); !errors.Is(err, errQuit) {
		t.Errorf("quit returned %v", err)
	}
	if err := s.exec("   "); err != nil {
		t.Errorf("blank line returned %v", err)
	}
}
