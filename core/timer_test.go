package core_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"msmbsp/core"
	"msmbsp/sim"
)

const (
	tmrBase = 0xC0000000 + 0x01F00000 + 0xA000
	dgtFreq = 6750000
)

func newTimerMachine(t *testing.T) *sim.Machine {
	t.Helper()
	m, err := sim.NewMachine(tmrBase, core.IRQDebugTimerExp)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func initTimer(t *testing.T, m *sim.Machine) *core.Timer {
	t.Helper()
	tm := core.EarlyInit(m.Bus, tmrBase)
	if err := tm.Init(m.IRQ, dgtFreq); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return tm
}

func TestEarlyInitStartsGPT(t *testing.T) {
	m := newTimerMachine(t)
	core.EarlyInit(m.Bus, tmrBase)

	want := []sim.Access{{Op: sim.OpWrite, Addr: tmrBase + 0x04 + 0x08, Val: 1}}
	if diff := cmp.Diff(want, m.Bus.Log()); diff != "" {
		t.Errorf("EarlyInit accesses (-want +got):\n%s", diff)
	}
}

func TestCurrentTimeFromGPT(t *testing.T) {
	m := newTimerMachine(t)
	tm := core.EarlyInit(m.Bus, tmrBase)

	tests := []struct {
		count uint32
		ms    uint32
		us    uint64
	}{
		{0, 0, 0},
		{33, 1, 1000},
		{33000, 1000, 1000000},
		{1, 0, 30},   // 30.30us
		{17, 1, 515}, // 0.515ms rounds up
		{0xFFFFFFFF, 130150524, 130150524091},
	}
	for _, tt := range tests {
		m.Timer.SetGPTCount(tt.count)
		if got := tm.CurrentTime(); got != tt.ms {
			t.Errorf("count %d: CurrentTime = %d, expected %d", tt.count, got, tt.ms)
		}
		if got := tm.CurrentTimeHires(); got != tt.us {
			t.Errorf("count %d: CurrentTimeHires = %d, expected %d", tt.count, got, tt.us)
		}
	}
}

func TestCurrentTimeMonotonic(t *testing.T) {
	m := newTimerMachine(t)
	tm := core.EarlyInit(m.Bus, tmrBase)

	var last uint32
	for i := 0; i < 1000; i++ {
		m.Timer.AdvanceGPT(7)
		now := tm.CurrentTime()
		if now < last {
			t.Fatalf("time went backwards: %d after %d", now, last)
		}
		last = now
	}
}

func TestInitProgramsDGT(t *testing.T) {
	m := newTimerMachine(t)
	tm := core.EarlyInit(m.Bus, tmrBase)
	m.Bus.Reset()

	if err := tm.Init(m.IRQ, dgtFreq); err != nil {
		t.Fatal(err)
	}

	want := []sim.Access{
		{Op: sim.OpWrite, Addr: tmrBase + 0x24 + 0x08, Val: 0},
		{Op: sim.OpWrite, Addr: tmrBase + 0x24 + 0x10, Val: 3},
	}
	if diff := cmp.Diff(want, m.Bus.Log()); diff != "" {
		t.Errorf("Init accesses (-want +got):\n%s", diff)
	}
	if !m.IRQ.Unmasked(core.IRQDebugTimerExp) {
		t.Error("DGT interrupt left masked")
	}
	if tm.DGTFreq() != dgtFreq {
		t.Errorf("DGTFreq = %d", tm.DGTFreq())
	}
}

func TestInitErrors(t *testing.T) {
	m := newTimerMachine(t)
	tm := core.EarlyInit(m.Bus, tmrBase)

	if err := tm.Init(m.IRQ, 0); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("Init with zero frequency returned %v", err)
	}
	if err := tm.Init(m.IRQ, dgtFreq); err != nil {
		t.Fatal(err)
	}
	if err := tm.Init(m.IRQ, dgtFreq); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Errorf("second Init returned %v", err)
	}
}

func TestSetPeriodicBeforeInit(t *testing.T) {
	m := newTimerMachine(t)
	tm := core.EarlyInit(m.Bus, tmrBase)

	err := tm.SetPeriodic(func(any, uint64) core.HandlerReturn { return core.IntNoReschedule }, nil, 10)
	if !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("SetPeriodic before Init returned %v", err)
	}
}

func TestSetPeriodicProgramsMatch(t *testing.T) {
	tests := []struct {
		interval uint32
		ticks    uint32
	}{
		{10, 67500},
		{1, 6750},
		{0, 1}, // never zero
		{636291, 4294964250},
		{636292, 0xFFFFFFFF}, // saturates
		{0xFFFFFFFF, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		m := newTimerMachine(t)
		tm := initTimer(t, m)
		m.Bus.Reset()

		if err := tm.SetPeriodic(nil, nil, tt.interval); err != nil {
			t.Fatal(err)
		}
		want := []sim.Access{
			{Op: sim.OpWrite, Addr: tmrBase + 0x24 + 0x00, Val: tt.ticks},
			{Op: sim.OpWrite, Addr: tmrBase + 0x24 + 0x0c, Val: 0},
			{Op: sim.OpWrite, Addr: tmrBase + 0x24 + 0x08, Val: 3},
		}
		if diff := cmp.Diff(want, m.Bus.Log()); diff != "" {
			t.Errorf("interval %d: SetPeriodic accesses (-want +got):\n%s", tt.interval, diff)
		}
	}
}

func TestPeriodicTicksAccumulate(t *testing.T) {
	m := newTimerMachine(t)
	tm := initTimer(t, m)

	type call struct {
		Arg any
		Now uint64
	}
	var calls []call
	cb := func(arg any, now uint64) core.HandlerReturn {
		calls = append(calls, call{arg, now})
		return core.IntReschedule
	}
	if err := tm.SetPeriodic(cb, "ctx", 10); err != nil {
		t.Fatal(err)
	}

	if n := m.Tick(5); n != 5 {
		t.Fatalf("delivered %d ticks, expected 5", n)
	}

	want := []call{{"ctx", 10}, {"ctx", 20}, {"ctx", 30}, {"ctx", 40}, {"ctx", 50}}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("callbacks (-want +got):\n%s", diff)
	}
	if tm.Elapsed() != 50 {
		t.Errorf("Elapsed = %d, expected 50", tm.Elapsed())
	}
}

func TestHandleTickPropagatesReturn(t *testing.T) {
	m := newTimerMachine(t)
	tm := initTimer(t, m)

	if ret := tm.HandleTick(nil); ret != core.IntNoReschedule {
		t.Errorf("tick without callback returned %d", ret)
	}

	tm.SetPeriodic(func(any, uint64) core.HandlerReturn { return core.IntReschedule }, nil, 1)
	ret, ok := m.IRQ.Raise(core.IRQDebugTimerExp)
	if !ok || ret != core.IntReschedule {
		t.Errorf("Raise = %d, %v", ret, ok)
	}
}

func TestSetPeriodicReplacesCallback(t *testing.T) {
	m := newTimerMachine(t)
	tm := initTimer(t, m)

	var a, b int
	tm.SetPeriodic(func(any, uint64) core.HandlerReturn { a++; return core.IntNoReschedule }, nil, 5)
	m.Tick(2)
	tm.SetPeriodic(func(any, uint64) core.HandlerReturn { b++; return core.IntNoReschedule }, nil, 20)
	m.Tick(3)

	if a != 2 || b != 3 {
		t.Errorf("first callback ran %d times, second %d; expected 2 and 3", a, b)
	}
	if tm.Elapsed() != 2*5+3*20 {
		t.Errorf("Elapsed = %d, expected %d", tm.Elapsed(), 2*5+3*20)
	}
	if tm.Interval() != 20 {
		t.Errorf("Interval = %d", tm.Interval())
	}
}

func TestSchedulerOnPeriodicTick(t *testing.T) {
	m := newTimerMachine(t)
	tm := initTimer(t, m)

	var s core.Scheduler
	fired := uint64(0)
	s.ScheduleTimer(&core.SoftTimer{
		WakeTime: 25,
		Handler: func(st *core.SoftTimer) uint8 {
			fired = s.Now()
			return core.SF_DONE
		},
	})
	tm.SetPeriodic(s.Tick, nil, 10)

	m.Tick(2)
	if fired != 0 {
		t.Fatalf("soft timer fired at %d, before its wake time", fired)
	}
	m.Tick(1)
	if fired != 30 {
		t.Errorf("soft timer fired at %d, expected 30", fired)
	}
}
