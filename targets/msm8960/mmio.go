//go:build msm8960

package main

import (
	"device/arm"
	"runtime/volatile"
	"unsafe"
)

// mmioBus is core.RegisterBus over device memory.
type mmioBus struct{}

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

func (mmioBus) Read32(addr uintptr) uint32 {
	return reg(addr).Get()
}

// Write32 stores v and drains the write before returning.
func (mmioBus) Write32(addr uintptr, v uint32) {
	reg(addr).Set(v)
	arm.Asm("dsb")
}
