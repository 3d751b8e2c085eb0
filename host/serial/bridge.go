package serial

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"k8s.io/klog/v2"
)

// Line is the device side of a simulated UART.
type Line interface {
	// Feed delivers received bytes to the UART.
	Feed(p []byte)

	// TxBytes drains the characters the UART has transmitted.
	TxBytes() []byte
}

// Bridge pumps bytes between a host Port and a simulated UART line.
type Bridge struct {
	port Port
	line Line
	poll time.Duration
}

// NewBridge connects port to line. TX is polled every poll interval.
func NewBridge(port Port, line Line, poll time.Duration) *Bridge {
	if poll <= 0 {
		poll = time.Millisecond
	}
	return &Bridge{port: port, line: line, poll: poll}
}

// Run copies in both directions until ctx is done or the port fails.
func (b *Bridge) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- b.rxLoop(ctx) }()
	go func() { errc <- b.txLoop(ctx) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

func (b *Bridge) rxLoop(ctx context.Context) error {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := b.port.Read(buf)
		if n > 0 {
			klog.V(2).Infof("bridge rx %q", buf[:n])
			b.line.Feed(buf[:n])
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return err
		case errors.Is(err, os.ErrDeadlineExceeded):
			// Read timeout, poll again.
		default:
			return err
		}
	}
	return ctx.Err()
}

func (b *Bridge) txLoop(ctx context.Context) error {
	t := time.NewTicker(b.poll)
	defer t.Stop()

	for {
		if err := b.FlushTx(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// FlushTx writes everything the UART has transmitted to the port.
func (b *Bridge) FlushTx() error {
	out := b.line.TxBytes()
	if len(out) == 0 {
		return nil
	}
	klog.V(2).Infof("bridge tx %q", out)
	_, err := b.port.Write(out)
	return err
}
