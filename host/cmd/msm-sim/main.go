// Command msm-sim runs the MSM8960 BSP drivers against a simulated register
// space and drives them from an interactive prompt.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"k8s.io/klog/v2"

	"msmbsp/board"
	"msmbsp/host/serial"
)

var (
	configFile = flag.String("config", "", "Board description (YAML). Empty uses the MSM8960 reference board.")
	device     = flag.String("serial", "", "Bridge the console UART to this serial device instead of the prompt.")
	baud       = flag.Int("baud", 115200, "Baud rate for -serial.")
	tick       = flag.Duration("tick", 0, "Fire the periodic interrupt on this wall-clock period while bridging (0 disables).")
	dumpConfig = flag.Bool("dump_config", false, "Print the effective board description and exit.")
)

func main() {
	klog.InitFlags(nil)
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer klog.Flush()

	cfg := board.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = board.LoadConfigFile(*configFile); err != nil {
			klog.Exitf("Failed to load board config: %v", err)
		}
	}

	if *dumpConfig {
		data, err := cfg.Marshal()
		if err != nil {
			klog.Exitf("Marshal: %v", err)
		}
		os.Stdout.Write(data)
		return
	}

	s, err := newSession(cfg, os.Stdout)
	if err != nil {
		klog.Exitf("Failed to bring up %s: %v", cfg.Name, err)
	}
	klog.Infof("%s up: timer %#x, %d uart port(s), console port %d", cfg.Name, cfg.TimerBase, len(cfg.Ports), cfg.Console)

	if *device != "" {
		if err := bridge(s); err != nil && !errors.Is(err, context.Canceled) {
			klog.Exitf("Bridge: %v", err)
		}
		return
	}
	repl(s)
}

// bridge connects the console UART to a real tty and echoes on the device
// side until interrupted.
func bridge(s *session) error {
	scfg := serial.DefaultConfig(*device)
	scfg.Baud = *baud
	port, err := serial.Open(scfg)
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *tick > 0 {
		go func() {
			t := time.NewTicker(*tick)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					s.machine.Tick(1)
				}
			}
		}()
	}

	go func() {
		for ctx.Err() == nil {
			c, err := s.platform.UART.GetCharContext(ctx, s.cfg.Console, true)
			if err != nil {
				return
			}
			if c == '\r' {
				c = '\n'
			}
			s.platform.Dputc(c)
		}
	}()

	klog.Infof("Bridging console port %d to %s", s.cfg.Console, *device)
	return serial.NewBridge(port, s.consoleUART(), time.Millisecond).Run(ctx)
}

func repl(s *session) {
	fmt.Println("msm-sim: type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		err := s.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		klog.Exitf("Error reading input: %v", err)
	}
}
