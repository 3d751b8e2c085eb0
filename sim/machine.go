package sim

import (
	"sync"

	"msmbsp/core"
)

// RegFile is a plain register block: reads return the last value written.
type RegFile struct {
	mu   sync.Mutex
	regs map[uintptr]uint32
}

// NewRegFile returns an all-zero register block.
func NewRegFile() *RegFile {
	return &RegFile{regs: make(map[uintptr]uint32)}
}

// Read32 implements Device.
func (r *RegFile) Read32(off uintptr) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs[off]
}

// Write32 implements Device.
func (r *RegFile) Write32(off uintptr, v uint32) {
	r.mu.Lock()
	r.regs[off] = v
	r.mu.Unlock()
}

// GSBISize is the span of one GSBI register window.
const GSBISize = 0x100

// Machine wires a bus, a timer block, an interrupt controller and any
// number of UART DM blocks into one simulated SoC.
type Machine struct {
	Bus   *Bus
	Timer *Timer
	IRQ   *IRQ

	// DGTIRQ is raised once per DGT match.
	DGTIRQ core.IRQ

	uarts map[uintptr]*UARTDM
	gsbis map[uintptr]*RegFile
}

// NewMachine maps a timer block at timerBase.
func NewMachine(timerBase uintptr, dgtIRQ core.IRQ) (*Machine, error) {
	m := &Machine{
		Bus:    NewBus(),
		Timer:  NewTimer(),
		IRQ:    NewIRQ(),
		DGTIRQ: dgtIRQ,
		uarts:  make(map[uintptr]*UARTDM),
		gsbis:  make(map[uintptr]*RegFile),
	}
	if err := m.Bus.Map(timerBase, TimerSize, m.Timer); err != nil {
		return nil, err
	}
	return m, nil
}

// AddUART maps a UART DM model at base and, when gsbiBase is non-zero, a
// GSBI control block in front of it.
func (m *Machine) AddUART(gsbiBase, base uintptr) (*UARTDM, error) {
	u := NewUARTDM()
	if err := m.Bus.Map(base, UARTSize, u); err != nil {
		return nil, err
	}
	m.uarts[base] = u

	if gsbiBase != 0 {
		g := NewRegFile()
		if err := m.Bus.Map(gsbiBase, GSBISize, g); err != nil {
			return nil, err
		}
		m.gsbis[gsbiBase] = g
	}
	return u, nil
}

// UART returns the model mapped at base.
func (m *Machine) UART(base uintptr) *UARTDM {
	return m.uarts[base]
}

// GSBI returns the GSBI block mapped at base.
func (m *Machine) GSBI(base uintptr) *RegFile {
	return m.gsbis[base]
}

// RunDGT advances the DGT by n input ticks, raising DGTIRQ once per match.
// It returns how many interrupts were delivered.
func (m *Machine) RunDGT(n uint64) int {
	delivered := 0
	for i := m.Timer.AdvanceDGT(n); i > 0; i-- {
		if _, ok := m.IRQ.Raise(m.DGTIRQ); ok {
			delivered++
		}
	}
	return delivered
}

// Tick runs the DGT for n programmed periods.
func (m *Machine) Tick(n int) int {
	match := uint64(m.Timer.DGT().Match)
	delivered := 0
	for i := 0; i < n; i++ {
		delivered += m.RunDGT(match)
	}
	return delivered
}
