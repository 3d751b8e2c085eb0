//go:build !tinygo

package core

import "runtime"

// State stands in for the saved interrupt mask. Hosted builds have no
// local interrupts, so it is always zero.
type State uintptr

func disableInterrupts() State { return 0 }

func restoreInterrupts(State) {}

// cpuRelax lets the goroutines driving the simulated registers run.
func cpuRelax() {
	runtime.Gosched()
}
