// Package sim provides a simulated MSM8960 register space for running the
// BSP drivers off-target.
package sim

import (
	"fmt"
	"sync"
)

// Device is a register block mapped into a Bus. Offsets are relative to the
// window base.
type Device interface {
	Read32(off uintptr) uint32
	Write32(off uintptr, v uint32)
}

// Op is the direction of a recorded access.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
)

func (o Op) String() string {
	if o == OpWrite {
		return "W"
	}
	return "R"
}

// Access is one recorded register access.
type Access struct {
	Op   Op
	Addr uintptr
	Val  uint32
}

func (a Access) String() string {
	return fmt.Sprintf("%s %#08x=%#08x", a.Op, a.Addr, a.Val)
}

type window struct {
	base, size uintptr
	dev        Device
}

// Bus decodes addresses to mapped devices and records every access.
// Unmapped reads return zero and unmapped writes are dropped, both still
// recorded.
type Bus struct {
	mu      sync.Mutex
	windows []window
	log     []Access
	record  bool
}

// NewBus returns an empty bus with recording enabled.
func NewBus() *Bus {
	return &Bus{record: true}
}

// Map places dev at [base, base+size). Overlapping windows are rejected.
func (b *Bus) Map(base, size uintptr, dev Device) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range b.windows {
		if base < w.base+w.size && w.base < base+size {
			return fmt.Errorf("window %#x+%#x overlaps %#x+%#x", base, size, w.base, w.size)
		}
	}
	b.windows = append(b.windows, window{base: base, size: size, dev: dev})
	return nil
}

func (b *Bus) decode(addr uintptr) (Device, uintptr) {
	for _, w := range b.windows {
		if addr >= w.base && addr < w.base+w.size {
			return w.dev, addr - w.base
		}
	}
	return nil, 0
}

// Read32 implements core.RegisterBus.
func (b *Bus) Read32(addr uintptr) uint32 {
	b.mu.Lock()
	dev, off := b.decode(addr)
	b.mu.Unlock()

	var v uint32
	if dev != nil {
		v = dev.Read32(off)
	}
	b.append(Access{Op: OpRead, Addr: addr, Val: v})
	return v
}

// Write32 implements core.RegisterBus.
func (b *Bus) Write32(addr uintptr, v uint32) {
	b.mu.Lock()
	dev, off := b.decode(addr)
	b.mu.Unlock()

	b.append(Access{Op: OpWrite, Addr: addr, Val: v})
	if dev != nil {
		dev.Write32(off, v)
	}
}

func (b *Bus) append(a Access) {
	b.mu.Lock()
	if b.record {
		b.log = append(b.log, a)
	}
	b.mu.Unlock()
}

// SetRecording turns the access log on or off.
func (b *Bus) SetRecording(on bool) {
	b.mu.Lock()
	b.record = on
	b.mu.Unlock()
}

// Log returns a copy of every recorded access.
func (b *Bus) Log() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Access(nil), b.log...)
}

// Writes returns the recorded writes that fall in [base, base+size).
func (b *Bus) Writes(base, size uintptr) []Access {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Access
	for _, a := range b.log {
		if a.Op == OpWrite && a.Addr >= base && a.Addr < base+size {
			out = append(out, a)
		}
	}
	return out
}

// Reset clears the access log.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.log = nil
	b.mu.Unlock()
}
