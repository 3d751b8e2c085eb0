// Package serial connects host ttys to the simulated UART DM ports.
package serial

import "io"

// Port is a host serial line: a tty opened with Open, or an in-memory
// pipe in tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards pending input.
	Flush() error
}

// Config selects a tty and its line settings.
type Config struct {
	Device string // e.g. "/dev/ttyUSB0"
	Baud   int

	// ReadTimeout in milliseconds; 0 blocks.
	ReadTimeout int
}

// DefaultConfig returns the board console settings for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 50,
	}
}
