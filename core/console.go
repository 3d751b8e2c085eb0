package core

// Console is the debug console on one UART DM port.
type Console struct {
	uart *UARTDM
	port uint8
}

// NewConsole returns a console bound to port (0 for the default port).
func NewConsole(uart *UARTDM, port uint8) *Console {
	return &Console{uart: uart, port: port}
}

// Putc writes c, preceding a newline with a carriage return.
func (c *Console) Putc(ch byte) error {
	if ch == '\n' {
		if _, err := c.uart.PutChar(c.port, '\r'); err != nil {
			return err
		}
	}
	_, err := c.uart.PutChar(c.port, ch)
	return err
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	for i, ch := range p {
		if err := c.Putc(ch); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Getc reads one character, busy-polling if wait is set.
func (c *Console) Getc(wait bool) (byte, error) {
	return c.uart.GetChar(c.port, wait)
}

// DebugWriter returns a writer suitable for SetDebugWriter. Output errors
// are dropped.
func (c *Console) DebugWriter() DebugWriter {
	return func(s string) {
		c.Write([]byte(s))
		c.Putc('\n')
	}
}
