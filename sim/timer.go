package sim

import "sync"

// Timer block offsets relative to the control base.
const (
	GPTBase = 0x04
	DGTBase = 0x24

	TimerMatch  = 0x00
	TimerCount  = 0x04
	TimerEnable = 0x08
	TimerClear  = 0x0c
	DGTClkCtl   = 0x10

	// TimerSize is the span of the timer register window.
	TimerSize = 0x100
)

const (
	enableEn         = 1 << 0
	enableClrOnMatch = 1 << 1
)

// TimerRegs is the state of one GPT or DGT channel.
type TimerRegs struct {
	Match, Count, Enable, Clear, ClkCtl uint32
}

// Timer models the GPT and DGT counters. Time only moves when the test
// advances it.
type Timer struct {
	mu  sync.Mutex
	gpt TimerRegs
	dgt TimerRegs
}

// NewTimer returns a timer model with both channels stopped.
func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) channel(off uintptr) (*TimerRegs, uintptr) {
	switch {
	case off >= DGTBase && off < DGTBase+0x20:
		return &t.dgt, off - DGTBase
	case off >= GPTBase && off < GPTBase+0x20:
		return &t.gpt, off - GPTBase
	}
	return nil, 0
}

// Read32 implements Device.
func (t *Timer) Read32(off uintptr) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, reg := t.channel(off)
	if ch == nil {
		return 0
	}
	switch reg {
	case TimerMatch:
		return ch.Match
	case TimerCount:
		return ch.Count
	case TimerEnable:
		return ch.Enable
	case DGTClkCtl:
		if ch == &t.dgt {
			return ch.ClkCtl
		}
	}
	return 0
}

// Write32 implements Device.
func (t *Timer) Write32(off uintptr, v uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, reg := t.channel(off)
	if ch == nil {
		return
	}
	switch reg {
	case TimerMatch:
		ch.Match = v
	case TimerEnable:
		ch.Enable = v
	case TimerClear:
		ch.Clear = v
		ch.Count = 0
	case DGTClkCtl:
		if ch == &t.dgt {
			ch.ClkCtl = v
		}
	}
}

// SetGPTCount loads the GPT counter directly.
func (t *Timer) SetGPTCount(v uint32) {
	t.mu.Lock()
	t.gpt.Count = v
	t.mu.Unlock()
}

// AdvanceGPT adds n ticks to the GPT if it is enabled.
func (t *Timer) AdvanceGPT(n uint32) {
	t.mu.Lock()
	if t.gpt.Enable&enableEn != 0 {
		t.gpt.Count += n
	}
	t.mu.Unlock()
}

// AdvanceDGT runs the DGT for n input ticks and returns how many match
// events it produced. With clear-on-match the counter restarts after each
// match; without it the counter matches once and keeps counting.
func (t *Timer) AdvanceDGT(n uint64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := &t.dgt
	if d.Enable&enableEn == 0 || d.Match == 0 {
		return 0
	}

	matches := 0
	for n > 0 {
		if d.Count >= d.Match {
			d.Count += uint32(n)
			break
		}
		left := uint64(d.Match - d.Count)
		if n < left {
			d.Count += uint32(n)
			break
		}
		n -= left
		matches++
		if d.Enable&enableClrOnMatch != 0 {
			d.Count = 0
			continue
		}
		d.Count = d.Match + uint32(n)
		break
	}
	return matches
}

// GPT returns the GPT channel state.
func (t *Timer) GPT() TimerRegs {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gpt
}

// DGT returns the DGT channel state.
func (t *Timer) DGT() TimerRegs {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dgt
}
