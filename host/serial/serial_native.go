//go:build !tinygo

package serial

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tarm/serial"
)

// NativePort is a host tty opened through tarm/serial.
type NativePort struct {
	port    *serial.Port
	timeout bool
}

// Open opens the tty named by cfg.Device in raw 8N1 mode.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	return &NativePort{port: port, timeout: cfg.ReadTimeout > 0}, nil
}

// Read returns os.ErrDeadlineExceeded when a timed read sees no data.
// tarm/serial reports that case as a zero-length io.EOF.
func (p *NativePort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if n == 0 && err == io.EOF && p.timeout {
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush discards received bytes not yet read.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
