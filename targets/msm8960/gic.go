//go:build msm8960

package main

import (
	"errors"

	"msmbsp/board"
	"msmbsp/core"
)

// QGIC register windows in the CPU private space.
const (
	gicDistBase = board.MSMIOBase + 0x01F00000
	gicCPUBase  = gicDistBase + 0x2000

	gicdCtlr      = 0x000
	gicdIsenabler = 0x100
	gicdIcenabler = 0x180

	giccCtlr = 0x00
	giccPMR  = 0x04
	giccIAR  = 0x0C
	giccEOIR = 0x10

	gicMaxIRQ   = 1020
	gicSpurious = 1023
)

var errIRQRange = errors.New("irq out of range")

type irqHandler struct {
	fn  core.InterruptHandler
	arg any
}

// gic is the interrupt controller the BSP drivers register with.
type gic struct {
	bus      core.RegisterBus
	handlers [gicMaxIRQ]irqHandler
}

func newGIC(bus core.RegisterBus) *gic {
	g := &gic{bus: bus}
	g.bus.Write32(gicCPUBase+giccPMR, 0xFF)
	g.bus.Write32(gicCPUBase+giccCtlr, 1)
	g.bus.Write32(gicDistBase+gicdCtlr, 1)
	return g
}

func (g *gic) RegisterHandler(irq core.IRQ, handler core.InterruptHandler, arg any) {
	if irq >= gicMaxIRQ {
		return
	}
	state := irqLock.LockIRQSave()
	g.handlers[irq] = irqHandler{fn: handler, arg: arg}
	irqLock.UnlockIRQRestore(state)
}

func (g *gic) Unmask(irq core.IRQ) error {
	if irq >= gicMaxIRQ {
		return errIRQRange
	}
	g.bus.Write32(gicDistBase+gicdIsenabler+uintptr(irq/32)*4, 1<<(irq%32))
	return nil
}

func (g *gic) Mask(irq core.IRQ) {
	if irq < gicMaxIRQ {
		g.bus.Write32(gicDistBase+gicdIcenabler+uintptr(irq/32)*4, 1<<(irq%32))
	}
}

// dispatch acknowledges the pending interrupt and runs its handler.
func (g *gic) dispatch() core.HandlerReturn {
	iar := g.bus.Read32(gicCPUBase + giccIAR)
	irq := core.IRQ(iar & 0x3FF)
	if irq == gicSpurious {
		return core.IntNoReschedule
	}

	ret := core.IntNoReschedule
	if irq < gicMaxIRQ {
		if h := g.handlers[irq]; h.fn != nil {
			ret = h.fn(h.arg)
		}
	}
	g.bus.Write32(gicCPUBase+giccEOIR, iar)
	return ret
}

var irqLock core.SpinLock
