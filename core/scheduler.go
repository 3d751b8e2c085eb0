package core

// SoftTimer represents a scheduled event driven by the periodic tick
type SoftTimer struct {
	WakeTime uint64 // ms, in the Timer's elapsed tick domain
	Handler  func(*SoftTimer) uint8
	Next     *SoftTimer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler multiplexes software timers over a single periodic tick. Install
// Scheduler.Tick as the Timer's periodic callback.
type Scheduler struct {
	lock        SpinLock
	timerList   *SoftTimer
	currentTime uint64
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *SoftTimer) {
	state := s.lock.LockIRQSave()
	defer s.lock.UnlockIRQRestore(state)

	s.insertTimer(t)
}

// CancelTimer removes t if it is still pending. Returns whether it was found.
func (s *Scheduler) CancelTimer(t *SoftTimer) bool {
	state := s.lock.LockIRQSave()
	defer s.lock.UnlockIRQRestore(state)

	link := &s.timerList
	for *link != nil {
		if *link == t {
			*link = t.Next
			t.Next = nil
			return true
		}
		link = &(*link).Next
	}
	return false
}

// Now returns the tick time of the last dispatch
func (s *Scheduler) Now() uint64 {
	state := s.lock.LockIRQSave()
	defer s.lock.UnlockIRQRestore(state)
	return s.currentTime
}

// insertTimer inserts a timer in sorted order by WakeTime
func (s *Scheduler) insertTimer(t *SoftTimer) {
	if s.timerList == nil || t.WakeTime < s.timerList.WakeTime {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Tick is a PeriodicCallback. It runs every timer due at or before now and
// asks for a reschedule if any handler ran.
func (s *Scheduler) Tick(_ any, now uint64) HandlerReturn {
	s.lock.Lock()
	s.currentTime = now

	ret := IntNoReschedule
	var again *SoftTimer
	for s.timerList != nil && s.timerList.WakeTime <= now {
		timer := s.timerList
		s.timerList = timer.Next
		timer.Next = nil

		// Handlers run unlocked so they may schedule further timers.
		s.lock.Unlock()
		result := timer.Handler(timer)
		s.lock.Lock()

		ret = IntReschedule
		if result == SF_RESCHEDULE {
			// Reinserted after the pass: a handler that leaves WakeTime
			// unchanged runs at most once per tick.
			timer.Next = again
			again = timer
		}
	}
	for again != nil {
		timer := again
		again = timer.Next
		s.insertTimer(timer)
	}
	s.lock.Unlock()
	return ret
}
