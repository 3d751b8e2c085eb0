package core

import (
	"context"

	"github.com/usbarmory/tamago/bits"
)

// PortConfig describes one UART DM instance.
type PortConfig struct {
	ID          uint8
	GSBIBase    uintptr // zero when no GSBI routing is needed
	Base        uintptr
	ClockSelect uint32 // CSR value, zero selects DefaultClockSelect
}

// uartPort is the per-instance state. The receive unpacker lives here rather
// than in the driver so alternating reads of two ports never mix bytes.
type uartPort struct {
	id   uint8
	base uintptr

	tx SpinLock
	rx SpinLock

	// Last word pulled from the RX FIFO and how many of its bytes are
	// still undelivered (0..3).
	word    uint32
	pending int
}

// UARTDM drives the MSM UART DM blocks in polled mode. Ports move one way
// from unconfigured to configured and are never torn down.
type UARTDM struct {
	bus RegisterBus

	lock        SpinLock
	ports       [256]*uartPort
	defaultPort uint8
	hasDefault  bool
}

// NewUARTDM returns a driver with an empty port table.
func NewUARTDM(bus RegisterBus) *UARTDM {
	return &UARTDM{bus: bus}
}

// RegisterPort configures the UART DM at base as port id, routing the GSBI
// at gsbiBase to UART mode first when gsbiBase is non-zero.
func (u *UARTDM) RegisterPort(id uint8, gsbiBase, base uintptr) error {
	return u.Configure(PortConfig{ID: id, GSBIBase: gsbiBase, Base: base})
}

// Configure programs a UART DM instance and adds it to the port table. The
// first port ever configured becomes the default that id 0 resolves to.
func (u *UARTDM) Configure(cfg PortConfig) error {
	if cfg.Base == 0 {
		return ErrInvalidPort
	}
	if cfg.ClockSelect == 0 {
		cfg.ClockSelect = DefaultClockSelect
	}

	state := u.lock.LockIRQSave()
	defer u.lock.UnlockIRQRestore(state)

	if u.ports[cfg.ID] != nil {
		return ErrPortConfigured
	}

	// The mux has to be set before the UART DM registers mean anything.
	if cfg.GSBIBase != 0 {
		SetGSBIProtocol(u.bus, cfg.GSBIBase, GSBIProtocolI2CUART)
	}

	u.bus.Write32(cfg.Base+uartdmCSR, cfg.ClockSelect)
	u.initBlock(cfg.Base)

	if !u.hasDefault {
		u.defaultPort = cfg.ID
		u.hasDefault = true
	}
	u.ports[cfg.ID] = &uartPort{id: cfg.ID, base: cfg.Base}

	RecordEvent(EvtPortUp, cfg.ID, uint32(cfg.Base), cfg.ClockSelect)
	return nil
}

func (u *UARTDM) initBlock(base uintptr) {
	w := func(reg uintptr, v uint32) { u.bus.Write32(base+reg, v) }

	// No hardware flow control.
	w(uartdmMR1, 0)

	// 8-N-1
	var mr2 uint32
	bits.SetN(&mr2, uartdmMR2ParityPos, uartdmMR2FieldMask, ParityNone)
	bits.SetN(&mr2, uartdmMR2StopPos, uartdmMR2FieldMask, StopBits1)
	bits.SetN(&mr2, uartdmMR2BitsPos, uartdmMR2FieldMask, CharBits8)
	w(uartdmMR2, mr2)

	// Unmasked for the status bits polled below, no handler is installed.
	w(uartdmIMR, uartdmTxReady|uartdmTxLev|uartdmRxLev|uartdmRxStale)

	w(uartdmTFWR, 0)
	w(uartdmRFWR, 0)
	w(uartdmIPR, uartdmStaleTimeoutLSB)
	w(uartdmIRDA, 0)
	w(uartdmHCR, 0)

	w(uartdmCR, uartdmCmdResetRx)
	w(uartdmCR, uartdmCmdResetTx)
	w(uartdmCR, uartdmCmdResetErr)
	w(uartdmCR, uartdmCmdResetTxErr)
	w(uartdmCR, uartdmCmdResetStaleInt)

	// Data mover unused.
	w(uartdmDMEN, 0)

	w(uartdmCR, uartdmCRRxEnable)
	w(uartdmCR, uartdmCRTxEnable)

	w(uartdmCR, uartdmCmdStaleEventDisable)
	w(uartdmCR, uartdmCmdResetStaleInt)
	w(uartdmDMRX, uartdmRxTimeoutMax)
	w(uartdmCR, uartdmCmdStaleEventEnable)
}

// lookup resolves id (0 meaning the default port) to its state.
func (u *UARTDM) lookup(id uint8) *uartPort {
	state := u.lock.LockIRQSave()
	defer u.lock.UnlockIRQRestore(state)

	if id == 0 {
		if !u.hasDefault {
			return nil
		}
		id = u.defaultPort
	}
	return u.ports[id]
}

// Base returns the register base port id resolves to.
func (u *UARTDM) Base(id uint8) (uintptr, error) {
	p := u.lookup(id)
	if p == nil {
		return 0, ErrInvalidPort
	}
	return p.base, nil
}

// DefaultPort returns the id that port 0 aliases, if any port is configured.
func (u *UARTDM) DefaultPort() (uint8, bool) {
	state := u.lock.LockIRQSave()
	defer u.lock.UnlockIRQRestore(state)
	return u.defaultPort, u.hasDefault
}

// PutChar transmits c on port id, spinning until the hardware accepts it.
// It returns the number of bytes written.
func (u *UARTDM) PutChar(id uint8, c byte) (int, error) {
	return u.PutCharContext(context.Background(), id, c)
}

// PutCharContext is PutChar with every status spin bounded by ctx.
func (u *UARTDM) PutCharContext(ctx context.Context, id uint8, c byte) (int, error) {
	p := u.lookup(id)
	if p == nil {
		RecordEvent(EvtInvalidPort, id, 0, 0)
		return 0, ErrInvalidPort
	}
	r := func(reg uintptr) uint32 { return u.bus.Read32(p.base + reg) }

	// A previous character may still be draining.
	if r(uartdmSR)&uartdmSRTxEmt == 0 {
		err := spinUntil(ctx, func() bool { return r(uartdmISR)&uartdmTxReady != 0 })
		if err != nil {
			return 0, err
		}
	}

	if r(uartdmSR)&uartdmSROverrun != 0 {
		u.bus.Write32(p.base+uartdmCR, uartdmCmdResetErr)
		RecordEvent(EvtOverrun, p.id, 0, 0)
	}

	state := p.tx.LockIRQSave()
	defer p.tx.UnlockIRQRestore(state)

	u.bus.Write32(p.base+uartdmNCFTX, 1)
	u.bus.Write32(p.base+uartdmCR, uartdmCmdResetTxReady)

	err := spinUntil(ctx, func() bool { return r(uartdmSR)&uartdmSRTxRdy != 0 })
	if err != nil {
		return 0, err
	}

	u.bus.Write32(p.base+uartdmTF, uint32(c))
	return 1, nil
}

// Write transmits p on port id one character at a time, stopping at the
// first error.
func (u *UARTDM) Write(id uint8, p []byte) (int, error) {
	for i, c := range p {
		if _, err := u.PutChar(id, c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// GetChar returns the next received byte on port id. Without wait it
// returns ErrNoData when nothing is buffered; with wait it busy-polls.
func (u *UARTDM) GetChar(id uint8, wait bool) (byte, error) {
	return u.GetCharContext(context.Background(), id, wait)
}

// GetCharContext is GetChar with the blocking poll bounded by ctx.
func (u *UARTDM) GetCharContext(ctx context.Context, id uint8, wait bool) (byte, error) {
	p := u.lookup(id)
	if p == nil {
		RecordEvent(EvtInvalidPort, id, 0, 0)
		return 0, ErrInvalidPort
	}

	c, ok := u.getc(p)
	if ok {
		return c, nil
	}
	if !wait {
		return 0, ErrNoData
	}

	err := spinUntil(ctx, func() bool {
		c, ok = u.getc(p)
		return ok
	})
	if err != nil {
		return 0, err
	}
	return c, nil
}

// getc makes one attempt at producing a byte. The FIFO hands out 4-byte
// words, oldest byte in the least significant position. The first byte of
// a word is returned at once and the rest are delivered from index
// 4-pending, also after a stale flush that reported fewer than four bytes.
func (u *UARTDM) getc(p *uartPort) (byte, bool) {
	state := p.rx.LockIRQSave()
	defer p.rx.UnlockIRQRestore(state)

	r := func(reg uintptr) uint32 { return u.bus.Read32(p.base + reg) }
	w := func(reg uintptr, v uint32) { u.bus.Write32(p.base+reg, v) }

	if p.pending > 0 {
		c := wordByte(p.word, uartdmWordSize-p.pending)
		p.pending--
		return c, true
	}

	if r(uartdmSR)&uartdmSRRxRdy == 0 {
		// Less than a word may be sitting in the packer: force a stale
		// event to push it into the FIFO.
		rxfs := r(uartdmRXFS)
		n := int(bits.Get(&rxfs, uartdmRXFSBufShift, uartdmRXFSBufMask))
		if n == 0 {
			return 0, false
		}

		w(uartdmCR, uartdmCmdForceStale)
		p.word = r(uartdmRF)
		p.pending = Clamp(n, 1, uartdmWordSize) - 1

		w(uartdmCR, uartdmCmdResetStaleInt)
		w(uartdmDMRX, uartdmRxTimeoutMax)
		w(uartdmCR, uartdmCmdStaleEventEnable)

		RecordEvent(EvtStaleFlush, p.id, uint32(n), p.word)
		return wordByte(p.word, 0), true
	}

	if r(uartdmSR)&uartdmSROverrun != 0 {
		w(uartdmCR, uartdmCmdResetErr)
		RecordEvent(EvtOverrun, p.id, 1, 0)
	}

	p.word = r(uartdmRF)
	p.pending = uartdmWordSize - 1

	RecordEvent(EvtRxWord, p.id, p.word, 0)
	return wordByte(p.word, 0), true
}

func wordByte(w uint32, i int) byte {
	return byte(w >> (8 * uint(i)))
}
