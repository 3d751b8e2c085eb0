// Package board describes an MSM8960 board and brings its BSP drivers up in
// platform order.
package board

import (
	"errors"

	"msmbsp/core"
)

// MSM8960 physical-to-virtual map used by the boot image.
const (
	MSMIOBase = 0xC0000000

	// UARTDMBase is the UART DM carrying the debug console.
	UARTDMBase = MSMIOBase + 0x16540000
	// GSBIBase is the GSBI control block in front of UARTDMBase.
	GSBIBase = UARTDMBase - 0x40000

	TimerBase = MSMIOBase + 0x01F00000 + 0xA000

	// DGTFreq is the DGT input after the divide-by-4 in CLK_CTL.
	DGTFreq = 27000000 / 4

	DefaultTickMs = 10
)

var (
	ErrNoPorts        = errors.New("board: no uart ports")
	ErrNoTimer        = errors.New("board: no timer base")
	ErrDuplicatePort  = errors.New("board: duplicate uart port id")
	ErrUnknownConsole = errors.New("board: console port not configured")
)

// PortConfig describes one UART DM port.
type PortConfig struct {
	ID          uint8  `yaml:"id"`
	GSBIBase    uint64 `yaml:"gsbi_base"`
	Base        uint64 `yaml:"base"`
	ClockSelect uint32 `yaml:"clock_select"`
}

// Config is the board description.
type Config struct {
	Name      string       `yaml:"name"`
	TimerBase uint64       `yaml:"timer_base"`
	DGTFreq   uint32       `yaml:"dgt_freq"`
	TickMs    uint32       `yaml:"tick_ms"`
	Console   uint8        `yaml:"console"`
	Debug     bool         `yaml:"debug"`
	Ports     []PortConfig `yaml:"ports"`
}

// DefaultConfig returns the MSM8960 reference board.
func DefaultConfig() *Config {
	return &Config{
		Name:      "msm8960",
		TimerBase: TimerBase,
		DGTFreq:   DGTFreq,
		TickMs:    DefaultTickMs,
		Console:   1,
		Ports: []PortConfig{
			{ID: 1, GSBIBase: GSBIBase, Base: UARTDMBase, ClockSelect: core.DefaultClockSelect},
		},
	}
}

// applyDefaults fills in missing values with the reference board's.
func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = "msm8960"
	}
	if cfg.TimerBase == 0 {
		cfg.TimerBase = TimerBase
	}
	if cfg.DGTFreq == 0 {
		cfg.DGTFreq = DGTFreq
	}
	if cfg.TickMs == 0 {
		cfg.TickMs = DefaultTickMs
	}
	for i := range cfg.Ports {
		if cfg.Ports[i].ClockSelect == 0 {
			cfg.Ports[i].ClockSelect = core.DefaultClockSelect
		}
	}
	if cfg.Console == 0 && len(cfg.Ports) > 0 {
		cfg.Console = cfg.Ports[0].ID
	}
}

// Validate checks the description is usable.
func (c *Config) Validate() error {
	if c.TimerBase == 0 {
		return ErrNoTimer
	}
	if len(c.Ports) == 0 {
		return ErrNoPorts
	}

	var seen [256]bool
	console := false
	for _, p := range c.Ports {
		if p.Base == 0 {
			return core.ErrInvalidPort
		}
		if seen[p.ID] {
			return ErrDuplicatePort
		}
		seen[p.ID] = true
		if p.ID == c.Console {
			console = true
		}
	}
	if !console {
		return ErrUnknownConsole
	}
	return nil
}

func (p PortConfig) toCore() core.PortConfig {
	return core.PortConfig{
		ID:          p.ID,
		GSBIBase:    uintptr(p.GSBIBase),
		Base:        uintptr(p.Base),
		ClockSelect: p.ClockSelect,
	}
}
