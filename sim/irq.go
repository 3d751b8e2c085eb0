package sim

import (
	"fmt"
	"sync"

	"msmbsp/core"
)

// MaxIRQ is the number of interrupt lines the distributor implements.
const MaxIRQ = 1020

type irqEntry struct {
	handler  core.InterruptHandler
	arg      any
	unmasked bool
}

// IRQ is an interrupt controller that dispatches on demand. It implements
// core.InterruptController.
type IRQ struct {
	mu      sync.Mutex
	entries map[core.IRQ]*irqEntry
}

// NewIRQ returns a controller with every line masked.
func NewIRQ() *IRQ {
	return &IRQ{entries: make(map[core.IRQ]*irqEntry)}
}

func (c *IRQ) entry(irq core.IRQ) *irqEntry {
	e := c.entries[irq]
	if e == nil {
		e = &irqEntry{}
		c.entries[irq] = e
	}
	return e
}

// RegisterHandler implements core.InterruptController.
func (c *IRQ) RegisterHandler(irq core.IRQ, handler core.InterruptHandler, arg any) {
	c.mu.Lock()
	e := c.entry(irq)
	e.handler, e.arg = handler, arg
	c.mu.Unlock()
}

// Unmask implements core.InterruptController.
func (c *IRQ) Unmask(irq core.IRQ) error {
	if irq >= MaxIRQ {
		return fmt.Errorf("irq %d out of range", irq)
	}
	c.mu.Lock()
	c.entry(irq).unmasked = true
	c.mu.Unlock()
	return nil
}

// Mask stops delivery of irq.
func (c *IRQ) Mask(irq core.IRQ) {
	c.mu.Lock()
	if e := c.entries[irq]; e != nil {
		e.unmasked = false
	}
	c.mu.Unlock()
}

// Unmasked reports whether irq is enabled.
func (c *IRQ) Unmasked(irq core.IRQ) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[irq]
	return e != nil && e.unmasked
}

// Raise delivers irq to its handler. It reports false, without calling
// anything, when the line is masked or has no handler.
func (c *IRQ) Raise(irq core.IRQ) (core.HandlerReturn, bool) {
	c.mu.Lock()
	e := c.entries[irq]
	if e == nil || !e.unmasked || e.handler == nil {
		c.mu.Unlock()
		return core.IntNoReschedule, false
	}
	h, arg := e.handler, e.arg
	c.mu.Unlock()

	return h(arg), true
}
