package core

// RegisterBus is the raw 32-bit register access the BSP drivers are built on.
// Targets back it with volatile MMIO; host tests back it with the sim package.
type RegisterBus interface {
	// Read32 returns the 32-bit register at addr.
	Read32(addr uintptr) uint32

	// Write32 stores v at addr. Implementations must issue a memory barrier
	// after the store so device state changes are ordered with later accesses.
	Write32(addr uintptr, v uint32)
}

// IRQ identifies an interrupt line as numbered by the interrupt controller.
type IRQ uint32

// HandlerReturn tells the interrupt dispatcher whether the scheduler should run
// on the way out of the interrupt.
type HandlerReturn uint8

const (
	IntNoReschedule HandlerReturn = 0
	IntReschedule   HandlerReturn = 1
)

// InterruptHandler is invoked with interrupts masked on the local core.
type InterruptHandler func(arg any) HandlerReturn

// InterruptController is the interrupt registration primitive supplied by the
// surrounding kernel.
type InterruptController interface {
	// RegisterHandler installs handler for irq, replacing any previous one.
	RegisterHandler(irq IRQ, handler InterruptHandler, arg any)

	// Unmask enables delivery of irq.
	Unmask(irq IRQ) error
}
