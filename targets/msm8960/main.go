//go:build msm8960

package main

import (
	"msmbsp/board"
	"msmbsp/core"
)

var intc *gic

//export platform_irq
func platformIRQ() uint32 {
	if intc == nil {
		return 0
	}
	return uint32(intc.dispatch())
}

func main() {
	bus := mmioBus{}
	intc = newGIC(bus)

	cfg := board.DefaultConfig()
	p, err := board.EarlyInit(cfg, bus, intc)
	if err != nil {
		// No console yet; nothing to report to.
		for {
		}
	}

	if err := p.Init(); err != nil {
		p.Console.Write([]byte("init: " + err.Error() + "\n"))
	}
	p.Console.Write([]byte("msm8960 ready\n"))

	// Echo the console. '?' dumps the event ring.
	for {
		c, err := p.Dgetc(true)
		if err != nil {
			continue
		}
		if c == '?' {
			core.DumpEventRing()
			continue
		}
		if c == '\r' {
			c = '\n'
		}
		p.Dputc(c)
	}
}
