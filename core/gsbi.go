package core

import "github.com/usbarmory/tamago/bits"

// GSBI control register and protocol codes. A GSBI block must be told which
// serial protocol owns its pins before the QUP/UART DM behind it is usable.
const (
	gsbiCtrlReg             = 0x0
	gsbiCtrlProtocolCodePos = 4
	gsbiCtrlProtocolMask    = 0x7

	GSBIProtocolI2C      = 0x2
	GSBIProtocolSPI      = 0x3
	GSBIProtocolUARTFlow = 0x4
	GSBIProtocolI2CUART  = 0x6 // I2C on two pins, UART without HW flow control on the other two
)

// SetGSBIProtocol routes the pins of the GSBI block at base to protocol code.
func SetGSBIProtocol(bus RegisterBus, base uintptr, code uint32) {
	var ctrl uint32
	bits.SetN(&ctrl, gsbiCtrlProtocolCodePos, gsbiCtrlProtocolMask, code)
	bus.Write32(base+gsbiCtrlReg, ctrl)
}
