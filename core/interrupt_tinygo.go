//go:build tinygo

package core

import (
	"device/arm"
	"runtime/interrupt"
)

// State is the saved local interrupt mask
type State = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}

// cpuRelax hints the core that it is busy waiting
func cpuRelax() {
	arm.Asm("yield")
}
