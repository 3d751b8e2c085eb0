package core

import (
	"context"
	"sync/atomic"
)

// SpinLock is a test-and-set lock usable before any scheduler exists. The
// IRQ-saving variants mask local interrupts for the duration of the critical
// section so an interrupt handler on the same core cannot interleave with it.
type SpinLock struct {
	held atomic.Uint32
}

// Lock spins until the lock is taken.
func (l *SpinLock) Lock() {
	for !l.held.CompareAndSwap(0, 1) {
		cpuRelax()
	}
}

// TryLock takes the lock if it is free and reports whether it did.
func (l *SpinLock) TryLock() bool {
	return l.held.CompareAndSwap(0, 1)
}

// Unlock releases the lock.
func (l *SpinLock) Unlock() {
	l.held.Store(0)
}

// LockIRQSave disables local interrupts, then takes the lock.
func (l *SpinLock) LockIRQSave() State {
	state := disableInterrupts()
	l.Lock()
	return state
}

// UnlockIRQRestore releases the lock and restores the saved interrupt state.
func (l *SpinLock) UnlockIRQRestore(state State) {
	l.Unlock()
	restoreInterrupts(state)
}

// spinUntil busy-waits until ready reports true. Contexts without a Done
// channel spin forever, matching the hardware contract of a polled status bit.
func spinUntil(ctx context.Context, ready func() bool) error {
	done := ctx.Done()
	for !ready() {
		if done != nil {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}
		cpuRelax()
	}
	return nil
}
