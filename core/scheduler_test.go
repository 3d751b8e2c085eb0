package core

import "testing"

func TestSchedulerOrdersByWakeTime(t *testing.T) {
	var s Scheduler
	var order []int

	mk := func(id int, wake uint64) *SoftTimer {
		return &SoftTimer{
			WakeTime: wake,
			Handler: func(*SoftTimer) uint8 {
				order = append(order, id)
				return SF_DONE
			},
		}
	}

	s.ScheduleTimer(mk(3, 30))
	s.ScheduleTimer(mk(1, 10))
	s.ScheduleTimer(mk(2, 20))
	s.ScheduleTimer(mk(4, 20)) // same wake time as 2, runs after it

	if ret := s.Tick(nil, 5); ret != IntNoReschedule {
		t.Errorf("Tick with nothing due returned %d", ret)
	}
	if len(order) != 0 {
		t.Fatalf("timers ran early: %v", order)
	}

	if ret := s.Tick(nil, 20); ret != IntReschedule {
		t.Errorf("Tick that ran handlers returned %d", ret)
	}
	s.Tick(nil, 30)

	want := []int{1, 2, 4, 3}
	if len(order) != len(want) {
		t.Fatalf("ran %v, expected %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ran %v, expected %v", order, want)
		}
	}
	if s.Now() != 30 {
		t.Errorf("Now() = %d, expected 30", s.Now())
	}
}

func TestSchedulerReschedule(t *testing.T) {
	var s Scheduler
	runs := 0

	periodic := &SoftTimer{
		WakeTime: 10,
		Handler: func(st *SoftTimer) uint8 {
			runs++
			st.WakeTime += 10
			return SF_RESCHEDULE
		},
	}
	s.ScheduleTimer(periodic)

	for now := uint64(10); now <= 50; now += 10 {
		s.Tick(nil, now)
	}
	if runs != 5 {
		t.Errorf("periodic timer ran %d times, expected 5", runs)
	}
}

func TestSchedulerStaleRescheduleRunsOncePerTick(t *testing.T) {
	var s Scheduler
	runs := 0

	// Leaves WakeTime in the past; must not spin inside a single Tick.
	stuck := &SoftTimer{
		WakeTime: 1,
		Handler: func(*SoftTimer) uint8 {
			runs++
			return SF_RESCHEDULE
		},
	}
	s.ScheduleTimer(stuck)

	s.Tick(nil, 100)
	s.Tick(nil, 101)
	if runs != 2 {
		t.Errorf("stale timer ran %d times over two ticks, expected 2", runs)
	}
}

func TestSchedulerHandlerMaySchedule(t *testing.T) {
	var s Scheduler
	followed := false

	follow := &SoftTimer{
		WakeTime: 15,
		Handler: func(*SoftTimer) uint8 {
			followed = true
			return SF_DONE
		},
	}
	first := &SoftTimer{
		WakeTime: 10,
		Handler: func(*SoftTimer) uint8 {
			s.ScheduleTimer(follow)
			return SF_DONE
		},
	}
	s.ScheduleTimer(first)

	s.Tick(nil, 10)
	if followed {
		t.Fatal("follow-up timer ran before its wake time")
	}
	s.Tick(nil, 20)
	if !followed {
		t.Error("follow-up timer scheduled from a handler never ran")
	}
}

func TestSchedulerCancel(t *testing.T) {
	var s Scheduler
	ran := false

	a := &SoftTimer{WakeTime: 10, Handler: func(*SoftTimer) uint8 { ran = true; return SF_DONE }}
	b := &SoftTimer{WakeTime: 20, Handler: func(*SoftTimer) uint8 { return SF_DONE }}
	s.ScheduleTimer(a)
	s.ScheduleTimer(b)

	if !s.CancelTimer(a) {
		t.Fatal("CancelTimer did not find a pending timer")
	}
	if s.CancelTimer(a) {
		t.Error("CancelTimer found an already cancelled timer")
	}

	s.Tick(nil, 30)
	if ran {
		t.Error("cancelled timer ran")
	}
}
