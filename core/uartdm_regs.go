package core

// UART DM register map. Some offsets are shared between a read-only and a
// write-only register (SR/CSR, ISR/IMR, RF/TF).
const (
	uartdmMR1   = 0x00
	uartdmMR2   = 0x04
	uartdmCSR   = 0x08 // W: clock select
	uartdmSR    = 0x08 // R: status
	uartdmCR    = 0x10
	uartdmISR   = 0x14 // R: interrupt status
	uartdmIMR   = 0x14 // W: interrupt mask
	uartdmIPR   = 0x18
	uartdmTFWR  = 0x1c
	uartdmRFWR  = 0x20
	uartdmHCR   = 0x24
	uartdmDMRX  = 0x34
	uartdmIRDA  = 0x38
	uartdmDMEN  = 0x3c
	uartdmNCFTX = 0x40
	uartdmRXFS  = 0x50
	uartdmTF    = 0x70 // W: TX FIFO
	uartdmRF    = 0x70 // R: RX FIFO
)

// SR bits
const (
	uartdmSRRxRdy   = 1 << 0
	uartdmSRTxRdy   = 1 << 2
	uartdmSRTxEmt   = 1 << 3
	uartdmSROverrun = 1 << 4
)

// ISR/IMR bits
const (
	uartdmTxLev   = 1 << 0
	uartdmRxStale = 1 << 3
	uartdmRxLev   = 1 << 4
	uartdmTxReady = 1 << 7
)

// CR commands. Each is written as a whole word; the register is not
// read-modify-write.
const (
	uartdmCRRxEnable = 1 << 0
	uartdmCRTxEnable = 1 << 2

	uartdmCmdResetRx           = 1 << 4
	uartdmCmdResetTx           = 2 << 4
	uartdmCmdResetErr          = 3 << 4
	uartdmCmdResetStaleInt     = 8 << 4
	uartdmCmdResetTxErr        = 10 << 4
	uartdmCmdResetTxReady      = 3 << 8
	uartdmCmdForceStale        = 4 << 8
	uartdmCmdStaleEventEnable  = 5 << 8
	uartdmCmdStaleEventDisable = 6 << 8
)

const (
	uartdmStaleTimeoutLSB = 0x0f
	uartdmRxTimeoutMax    = 0xFFFFFF

	// RXFS: number of bytes sitting in the RX packer, bits [9:7].
	uartdmRXFSBufShift = 7
	uartdmRXFSBufMask  = 0x7

	// MR2 fields
	uartdmMR2ParityPos = 0
	uartdmMR2StopPos   = 2
	uartdmMR2BitsPos   = 4
	uartdmMR2FieldMask = 0x3

	uartdmWordSize = 4
)

// Parity modes (MR2)
const (
	ParityNone = iota
	ParityOdd
	ParityEven
	ParitySpace
)

// Stop bit lengths (MR2)
const (
	StopBits9_16 = iota
	StopBits1
	StopBits1_9_16
	StopBits2
)

// Bits per character (MR2)
const (
	CharBits5 = iota
	CharBits6
	CharBits7
	CharBits8
)

// DefaultClockSelect is the CSR value selecting 115200 baud for RX and TX
// from the default UART DM clock.
const DefaultClockSelect = 0xFF
