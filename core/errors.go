package core

import "errors"

var (
	// UART
	ErrInvalidPort    = errors.New("invalid_port")
	ErrPortConfigured = errors.New("port_configured")
	ErrNoData         = errors.New("no_data")

	// Timer
	ErrNotInitialized     = errors.New("not_initialized")
	ErrAlreadyInitialized = errors.New("already_initialized")
	ErrInvalidFrequency   = errors.New("invalid_frequency")
)
