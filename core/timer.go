package core

// MSM8960 combined GPT/DGT timer block. Offsets are relative to the control
// base handed to EarlyInit.
const (
	gptTimerOffset = 0x0004
	dgtTimerOffset = 0x0024

	timerMatchVal = 0x0000
	timerCountVal = 0x0004
	timerEnable   = 0x0008
	timerClear    = 0x000C
	dgtClkCtl     = 0x0010 // DGT only

	timerEnableEn         = 1 << 0
	timerEnableClrOnMatch = 1 << 1

	// DGT is fed from the 27 MHz LPXO; CLK_CTL=3 divides it by 4.
	dgtClkDiv4 = 3
)

const (
	// GPTFreq is the fixed GPT input clock in Hz.
	GPTFreq = 33000

	// IRQDebugTimerExp is the DGT match interrupt (GIC PPI 1).
	IRQDebugTimerExp IRQ = 16 + 1

	maxDGTTicks = 0xFFFFFFFF
)

// PeriodicCallback runs in interrupt context on every periodic tick. now is
// the software tick count in milliseconds.
type PeriodicCallback func(arg any, now uint64) HandlerReturn

// Timer owns the GPT (monotonic clock source) and the DGT (periodic interrupt
// source). Construct it with EarlyInit, then promote it with Init once the
// interrupt controller is available.
type Timer struct {
	bus  RegisterBus
	base uintptr

	msPerGPT FP3264
	usPerGPT FP3264

	dgtFreq  uint32
	dgtPerMs FP3264

	lock     SpinLock
	interval uint32 // ms
	callback PeriodicCallback
	arg      any
	elapsed  uint64
}

// EarlyInit records the control base, starts the free-running GPT and
// precomputes the GPT conversion factors. It takes no locks and touches no
// interrupt state, so it is safe before either exists.
func EarlyInit(bus RegisterBus, controlBase uintptr) *Timer {
	t := &Timer{
		bus:  bus,
		base: controlBase,
	}

	t.gptWrite(timerEnable, timerEnableEn)

	t.msPerGPT = Ratio(1000, GPTFreq)
	t.usPerGPT = Ratio(1000*1000, GPTFreq)
	return t
}

// Init derives the DGT conversion factor from its (post-divider) input
// frequency, stops and programs the DGT, and hooks its match interrupt.
func (t *Timer) Init(ic InterruptController, dgtFreqHz uint32) error {
	if dgtFreqHz == 0 {
		return ErrInvalidFrequency
	}
	if !t.dgtPerMs.IsZero() {
		return ErrAlreadyInitialized
	}

	t.dgtFreq = dgtFreqHz
	t.dgtPerMs = Ratio(dgtFreqHz, 1000)

	t.dgtWrite(timerEnable, 0)
	t.dgtWrite(dgtClkCtl, dgtClkDiv4)

	ic.RegisterHandler(IRQDebugTimerExp, t.HandleTick, nil)
	return ic.Unmask(IRQDebugTimerExp)
}

// CurrentTime returns milliseconds derived from the live GPT count. The 32-bit
// counter wraps after roughly 36 hours at 33 kHz; the wrap is not corrected.
func (t *Timer) CurrentTime() uint32 {
	return t.msPerGPT.MulU32(t.readGPT())
}

// CurrentTimeHires returns microseconds derived from the live GPT count.
func (t *Timer) CurrentTimeHires() uint64 {
	return t.usPerGPT.MulU64(t.readGPT())
}

// DGTTicks converts a millisecond interval to DGT ticks, clamped to the
// programmable range. Zero is bumped to one tick so the timer always fires.
func (t *Timer) DGTTicks(intervalMs uint32) uint32 {
	ticks := t.dgtPerMs.MulU64(uint64(intervalMs))
	return uint32(Clamp[uint64](ticks, 1, maxDGTTicks))
}

// SetPeriodic installs callback to run every intervalMs milliseconds,
// superseding any previous registration. The DGT is programmed to clear on
// match so it free-runs without software re-arming.
func (t *Timer) SetPeriodic(callback PeriodicCallback, arg any, intervalMs uint32) error {
	if t.dgtPerMs.IsZero() {
		return ErrNotInitialized
	}
	ticks := t.DGTTicks(intervalMs)

	state := t.lock.LockIRQSave()

	t.callback = callback
	t.arg = arg
	t.interval = intervalMs

	t.dgtWrite(timerMatchVal, ticks)
	t.dgtWrite(timerClear, 0)
	t.dgtWrite(timerEnable, timerEnableEn|timerEnableClrOnMatch)

	t.lock.UnlockIRQRestore(state)

	RecordEvent(EvtPeriodicSet, 0, intervalMs, ticks)
	return nil
}

// HandleTick is the DGT match interrupt handler. The tick count advances by
// the programmed interval rather than by reading hardware, so it accumulates
// exactly one interval per match regardless of interrupt latency.
func (t *Timer) HandleTick(any) HandlerReturn {
	t.lock.Lock()
	t.elapsed += uint64(t.interval)
	now := t.elapsed
	cb, arg := t.callback, t.arg
	t.lock.Unlock()

	RecordEvent(EvtTick, 0, uint32(now), 0)

	if cb == nil {
		return IntNoReschedule
	}
	return cb(arg, now)
}

// Elapsed returns the software tick count in milliseconds.
func (t *Timer) Elapsed() uint64 {
	state := t.lock.LockIRQSave()
	defer t.lock.UnlockIRQRestore(state)
	return t.elapsed
}

// Interval returns the last requested periodic interval in milliseconds.
func (t *Timer) Interval() uint32 {
	state := t.lock.LockIRQSave()
	defer t.lock.UnlockIRQRestore(state)
	return t.interval
}

// DGTFreq returns the frequency passed to Init, or zero before Init.
func (t *Timer) DGTFreq() uint32 {
	return t.dgtFreq
}

func (t *Timer) readGPT() uint64 {
	return uint64(t.bus.Read32(t.base + gptTimerOffset + timerCountVal))
}

func (t *Timer) gptWrite(reg uintptr, v uint32) {
	t.bus.Write32(t.base+gptTimerOffset+reg, v)
}

func (t *Timer) dgtWrite(reg uintptr, v uint32) {
	t.bus.Write32(t.base+dgtTimerOffset+reg, v)
}
