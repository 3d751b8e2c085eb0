package board

import "msmbsp/core"

// Platform holds the BSP drivers for one board.
type Platform struct {
	Config    *Config
	Timer     *core.Timer
	UART      *core.UARTDM
	Console   *core.Console
	Scheduler core.Scheduler
}

// EarlyInit starts the clock source, the DGT and every UART port, in that
// order. The console is usable when it returns.
func EarlyInit(cfg *Config, bus core.RegisterBus, ic core.InterruptController) (*Platform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Platform{Config: cfg}

	// First, so spinning on CurrentTime works from here on.
	p.Timer = core.EarlyInit(bus, uintptr(cfg.TimerBase))
	if err := p.Timer.Init(ic, cfg.DGTFreq); err != nil {
		return nil, err
	}

	p.UART = core.NewUARTDM(bus)
	for _, port := range cfg.Ports {
		if err := p.UART.Configure(port.toCore()); err != nil {
			return nil, err
		}
	}
	p.Console = core.NewConsole(p.UART, cfg.Console)
	return p, nil
}

// Init routes debug output to the console and starts the periodic tick
// that drives the scheduler.
func (p *Platform) Init() error {
	core.SetDebugWriter(p.Console.DebugWriter())
	core.SetDebugEnabled(p.Config.Debug)

	if err := p.Timer.SetPeriodic(p.Scheduler.Tick, nil, p.Config.TickMs); err != nil {
		return err
	}
	core.DebugPrintln("[BOARD] " + p.Config.Name + " up")
	return nil
}

// Dputc writes one character to the debug console.
func (p *Platform) Dputc(c byte) error {
	return p.Console.Putc(c)
}

// Dgetc reads one character from the debug console.
func (p *Platform) Dgetc(wait bool) (byte, error) {
	return p.Console.Getc(wait)
}

// Now returns milliseconds from the free-running clock.
func (p *Platform) Now() uint32 {
	return p.Timer.CurrentTime()
}
