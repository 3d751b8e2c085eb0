package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/shlex"

	"msmbsp/board"
	"msmbsp/core"
	"msmbsp/sim"
)

var errQuit = errors.New("quit")

// session is one simulated board plus the REPL state around it.
type session struct {
	cfg      *board.Config
	machine  *sim.Machine
	platform *board.Platform
	out      io.Writer
}

func newSession(cfg *board.Config, out io.Writer) (*session, error) {
	m, err := sim.NewMachine(uintptr(cfg.TimerBase), core.IRQDebugTimerExp)
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Ports {
		if _, err := m.AddUART(uintptr(p.GSBIBase), uintptr(p.Base)); err != nil {
			return nil, fmt.Errorf("map port %d: %w", p.ID, err)
		}
	}

	p, err := board.EarlyInit(cfg, m.Bus, m.IRQ)
	if err != nil {
		return nil, fmt.Errorf("early init: %w", err)
	}
	if err := p.Init(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return &session{cfg: cfg, machine: m, platform: p, out: out}, nil
}

// consoleUART returns the model behind the console port.
func (s *session) consoleUART() *sim.UARTDM {
	return s.uart(s.cfg.Console)
}

func (s *session) uart(id uint8) *sim.UARTDM {
	base, err := s.platform.UART.Base(id)
	if err != nil {
		return nil
	}
	return s.machine.UART(base)
}

type command struct {
	usage string
	help  string
	run   func(s *session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     {"help", "list commands", (*session).cmdHelp},
		"rx":       {"rx PORT TEXT", "deliver TEXT on PORT's receive line", (*session).cmdRx},
		"tx":       {"tx [PORT]", "show and drain what PORT transmitted", (*session).cmdTx},
		"getc":     {"getc PORT [N]", "read N bytes through the driver", (*session).cmdGetc},
		"write":    {"write PORT TEXT", "transmit TEXT through the driver", (*session).cmdWrite},
		"tick":     {"tick [N]", "fire N periodic interrupts", (*session).cmdTick},
		"periodic": {"periodic MS", "reprogram the periodic tick", (*session).cmdPeriodic},
		"gpt":      {"gpt COUNT", "load the GPT counter and show the clock", (*session).cmdGPT},
		"overrun":  {"overrun PORT", "raise the overrun status on PORT", (*session).cmdOverrun},
		"regs":     {"regs PORT", "show PORT's configuration registers", (*session).cmdRegs},
		"events":   {"events", "dump the driver event ring", (*session).cmdEvents},
		"trace":    {"trace [N]", "show the last N register accesses", (*session).cmdTrace},
		"quit":     {"quit", "exit", func(*session, []string) error { return errQuit }},
	}
}

// exec runs one command line.
func (s *session) exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return cmd.run(s, args[1:])
}

func (s *session) cmdHelp([]string) error {
	for _, name := range []string{"rx", "tx", "getc", "write", "tick", "periodic", "gpt", "overrun", "regs", "events", "trace", "quit"} {
		c := commands[name]
		fmt.Fprintf(s.out, "  %-18s %s\n", c.usage, c.help)
	}
	return nil
}

func parsePort(args []string) (uint8, error) {
	if len(args) == 0 {
		return 0, errors.New("missing port")
	}
	v, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return 0, fmt.Errorf("port %q: %w", args[0], err)
	}
	return uint8(v), nil
}

func optInt(args []string, i, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	return strconv.Atoi(args[i])
}

func (s *session) cmdRx(args []string) error {
	id, err := parsePort(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("missing text")
	}
	u := s.uart(id)
	if u == nil {
		return core.ErrInvalidPort
	}
	u.Feed([]byte(args[1]))
	return nil
}

func (s *session) cmdTx(args []string) error {
	id := s.cfg.Console
	if len(args) > 0 {
		var err error
		if id, err = parsePort(args); err != nil {
			return err
		}
	}
	u := s.uart(id)
	if u == nil {
		return core.ErrInvalidPort
	}
	fmt.Fprintf(s.out, "%q\n", u.TxBytes())
	return nil
}

func (s *session) cmdGetc(args []string) error {
	id, err := parsePort(args)
	if err != nil {
		return err
	}
	n, err := optInt(args, 1, 1)
	if err != nil {
		return err
	}

	var got []byte
	for i := 0; i < n; i++ {
		c, err := s.platform.UART.GetChar(id, false)
		if errors.Is(err, core.ErrNoData) {
			break
		}
		if err != nil {
			return err
		}
		got = append(got, c)
	}
	fmt.Fprintf(s.out, "%q\n", got)
	return nil
}

func (s *session) cmdWrite(args []string) error {
	id, err := parsePort(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("missing text")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, c := range []byte(args[1]) {
		if _, err := s.platform.UART.PutCharContext(ctx, id, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) cmdTick(args []string) error {
	n, err := optInt(args, 0, 1)
	if err != nil {
		return err
	}
	fired := s.machine.Tick(n)
	fmt.Fprintf(s.out, "fired %d, elapsed %dms\n", fired, s.platform.Timer.Elapsed())
	return nil
}

func (s *session) cmdPeriodic(args []string) error {
	ms, err := optInt(args, 0, int(s.cfg.TickMs))
	if err != nil || ms < 0 {
		return fmt.Errorf("bad interval %v", args)
	}
	if err := s.platform.Timer.SetPeriodic(s.platform.Scheduler.Tick, nil, uint32(ms)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "match %d ticks\n", s.machine.Timer.DGT().Match)
	return nil
}

func (s *session) cmdGPT(args []string) error {
	if len(args) == 0 {
		return errors.New("missing count")
	}
	v, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return err
	}
	s.machine.Timer.SetGPTCount(uint32(v))
	fmt.Fprintf(s.out, "%dms %dus\n", s.platform.Timer.CurrentTime(), s.platform.Timer.CurrentTimeHires())
	return nil
}

func (s *session) cmdOverrun(args []string) error {
	id, err := parsePort(args)
	if err != nil {
		return err
	}
	u := s.uart(id)
	if u == nil {
		return core.ErrInvalidPort
	}
	u.SetOverrun(true)
	return nil
}

func (s *session) cmdRegs(args []string) error {
	id, err := parsePort(args)
	if err != nil {
		return err
	}
	u := s.uart(id)
	if u == nil {
		return core.ErrInvalidPort
	}
	r := u.Regs()
	fmt.Fprintf(s.out, "MR1=%#x MR2=%#x CSR=%#x IMR=%#x IPR=%#x DMRX=%#x rx=%v tx=%v stale=%v\n",
		r.MR1, r.MR2, r.CSR, r.IMR, r.IPR, r.DMRX, r.RxEnabled, r.TxEnabled, r.StaleEnabled)
	return nil
}

func (s *session) cmdEvents([]string) error {
	for _, e := range core.Events() {
		fmt.Fprintf(s.out, "type=%d port=%d v1=%#x v2=%d\n", e.EventType, e.Port, e.Value1, e.Value2)
	}
	return nil
}

func (s *session) cmdTrace(args []string) error {
	n, err := optInt(args, 0, 16)
	if err != nil {
		return err
	}
	log := s.machine.Bus.Log()
	if len(log) > n {
		log = log[len(log)-n:]
	}
	for _, a := range log {
		fmt.Fprintln(s.out, a)
	}
	return nil
}
