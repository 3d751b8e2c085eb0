package sim

import "sync"

// UART DM register offsets as seen by the model.
const (
	UARTMR1   = 0x00
	UARTMR2   = 0x04
	UARTSR    = 0x08 // read; CSR on write
	UARTCR    = 0x10
	UARTISR   = 0x14 // read; IMR on write
	UARTIPR   = 0x18
	UARTTFWR  = 0x1c
	UARTRFWR  = 0x20
	UARTHCR   = 0x24
	UARTDMRX  = 0x34
	UARTIRDA  = 0x38
	UARTDMEN  = 0x3c
	UARTNCFTX = 0x40
	UARTRXFS  = 0x50
	UARTFIFO  = 0x70 // RF on read, TF on write

	// UARTSize is the span of one UART DM register window.
	UARTSize = 0x100
)

const (
	srRxRdy   = 1 << 0
	srTxRdy   = 1 << 2
	srTxEmt   = 1 << 3
	srOverrun = 1 << 4

	isrRxStale = 1 << 3
	isrRxLev   = 1 << 4
	isrTxReady = 1 << 7

	rxfsShift = 7

	// RXFIFO depth in words.
	rxFIFOWords = 128
)

// UARTRegs is a snapshot of the model's write-side configuration.
type UARTRegs struct {
	MR1, MR2, CSR, IMR, IPR  uint32
	TFWR, RFWR, HCR, IRDA    uint32
	DMEN, DMRX, NCFTX        uint32
	RxEnabled, TxEnabled     bool
	StaleEnabled, StaleLatch bool
}

// UARTDM models one UART DM block: the RX packer, the word FIFO behind it,
// stale handling, overrun and the TX ready/empty handshake. Transmitted
// characters are captured in a ByteFIFO.
type UARTDM struct {
	mu   sync.Mutex
	regs UARTRegs

	packWord  uint32
	packCount int
	words     []uint32
	overrun   bool

	txReady bool
	txBusy  bool
	txStall int
	txHang  bool
	tx      *ByteFIFO
}

// NewUARTDM returns a model in its reset state.
func NewUARTDM() *UARTDM {
	return &UARTDM{tx: NewByteFIFO(4096)}
}

// Read32 implements Device.
func (u *UARTDM) Read32(off uintptr) uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch off {
	case UARTMR1:
		return u.regs.MR1
	case UARTMR2:
		return u.regs.MR2
	case UARTSR:
		return u.status()
	case UARTISR:
		var v uint32
		if u.txReady {
			v |= isrTxReady
		}
		if u.regs.StaleLatch {
			v |= isrRxStale
		}
		if len(u.words) > 0 {
			v |= isrRxLev
		}
		return v
	case UARTRXFS:
		return uint32(u.packCount) << rxfsShift
	case UARTFIFO:
		if len(u.words) == 0 {
			return 0
		}
		w := u.words[0]
		u.words = u.words[1:]
		return w
	case UARTDMRX:
		return u.regs.DMRX
	case UARTNCFTX:
		return u.regs.NCFTX
	}
	return 0
}

func (u *UARTDM) status() uint32 {
	var v uint32
	if len(u.words) > 0 {
		v |= srRxRdy
	}
	if !u.txHang {
		if u.txStall > 0 {
			u.txStall--
		} else {
			v |= srTxRdy
		}
	}
	if !u.txBusy {
		v |= srTxEmt
	}
	if u.overrun {
		v |= srOverrun
	}
	return v
}

// Write32 implements Device.
func (u *UARTDM) Write32(off uintptr, v uint32) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch off {
	case UARTMR1:
		u.regs.MR1 = v
	case UARTMR2:
		u.regs.MR2 = v
	case UARTSR:
		u.regs.CSR = v
	case UARTCR:
		u.command(v)
	case UARTISR:
		u.regs.IMR = v
	case UARTIPR:
		u.regs.IPR = v
	case UARTTFWR:
		u.regs.TFWR = v
	case UARTRFWR:
		u.regs.RFWR = v
	case UARTHCR:
		u.regs.HCR = v
	case UARTDMRX:
		u.regs.DMRX = v
	case UARTIRDA:
		u.regs.IRDA = v
	case UARTDMEN:
		u.regs.DMEN = v
	case UARTNCFTX:
		u.regs.NCFTX = v
	case UARTFIFO:
		if u.regs.TxEnabled {
			u.tx.Push(byte(v))
			u.txReady = true
		}
	}
}

// command decodes a CR write: enables in bits [3:0], channel command in
// bits [7:4], general command in bits [10:8].
func (u *UARTDM) command(v uint32) {
	switch v & 0xf {
	case 1:
		u.regs.RxEnabled = true
	case 2:
		u.regs.RxEnabled = false
	case 4:
		u.regs.TxEnabled = true
	case 8:
		u.regs.TxEnabled = false
	}

	switch (v >> 4) & 0xf {
	case 1: // reset RX
		u.packWord, u.packCount = 0, 0
		u.words = u.words[:0]
		u.overrun = false
	case 2: // reset TX
		u.txReady = false
	case 3: // reset error
		u.overrun = false
	case 8: // reset stale interrupt
		u.regs.StaleLatch = false
	}

	switch (v >> 8) & 0x7 {
	case 3: // reset TX ready
		u.txReady = false
	case 4: // force stale
		u.flushPacker()
		u.regs.StaleLatch = true
	case 5:
		u.regs.StaleEnabled = true
	case 6:
		u.regs.StaleEnabled = false
	}
}

func (u *UARTDM) flushPacker() {
	if u.packCount == 0 {
		return
	}
	w := u.packWord
	u.packWord, u.packCount = 0, 0
	u.pushWord(w)
}

func (u *UARTDM) pushWord(w uint32) {
	if len(u.words) >= rxFIFOWords {
		u.overrun = true
		return
	}
	u.words = append(u.words, w)
}

// Feed delivers bytes on the RX line. Every fourth byte completes a word
// in the FIFO, first byte in the low lane.
func (u *UARTDM) Feed(p []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, b := range p {
		u.packWord |= uint32(b) << (8 * u.packCount)
		u.packCount++
		if u.packCount == 4 {
			w := u.packWord
			u.packWord, u.packCount = 0, 0
			u.pushWord(w)
		}
	}
}

// FeedWord pushes a complete word straight into the RX FIFO.
func (u *UARTDM) FeedWord(w uint32) {
	u.mu.Lock()
	u.pushWord(w)
	u.mu.Unlock()
}

// FeedPartial loads the packer with w while RXFS reports n bytes. Lanes
// above n are flushed as they are, like stale data left in the hardware.
func (u *UARTDM) FeedPartial(w uint32, n int) {
	u.mu.Lock()
	u.packWord, u.packCount = w, n
	u.mu.Unlock()
}

// SetOverrun forces the overrun status bit.
func (u *UARTDM) SetOverrun(on bool) {
	u.mu.Lock()
	u.overrun = on
	u.mu.Unlock()
}

// Overrun reports the overrun status bit.
func (u *UARTDM) Overrun() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.overrun
}

// SetTxBusy holds TXEMT low, as if a previous character were still
// shifting out.
func (u *UARTDM) SetTxBusy(busy bool) {
	u.mu.Lock()
	u.txBusy = busy
	u.mu.Unlock()
}

// SetTxReady sets the ISR TX_READY latch.
func (u *UARTDM) SetTxReady(ready bool) {
	u.mu.Lock()
	u.txReady = ready
	u.mu.Unlock()
}

// StallTx keeps TXRDY low for the next n status reads.
func (u *UARTDM) StallTx(n int) {
	u.mu.Lock()
	u.txStall = n
	u.mu.Unlock()
}

// HangTx keeps TXRDY low until cleared.
func (u *UARTDM) HangTx(hang bool) {
	u.mu.Lock()
	u.txHang = hang
	u.mu.Unlock()
}

// TxBytes drains and returns every transmitted character.
func (u *UARTDM) TxBytes() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := u.tx.Data()
	u.tx.Reset()
	return out
}

// RxLevel returns the number of words waiting in the RX FIFO and the bytes
// still in the packer.
func (u *UARTDM) RxLevel() (words, packed int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.words), u.packCount
}

// Regs returns a snapshot of the configuration registers.
func (u *UARTDM) Regs() UARTRegs {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.regs
}
