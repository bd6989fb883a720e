package domain

import "errors"

// Domain errors represent error conditions in the serialteleop domain.
// Adapters wrap them with context; check them with errors.Is.
var (
	// ErrConnection is returned when the serial channel cannot be opened.
	ErrConnection = errors.New("serialteleop: connection error")

	// ErrIO is returned when a single serial read or write fails.
	ErrIO = errors.New("serialteleop: serial i/o error")

	// ErrTerminal is returned when the controlling terminal cannot be
	// switched to raw mode.
	ErrTerminal = errors.New("serialteleop: terminal error")

	// ErrAlreadyRunning is returned when Start() is called on a started session.
	ErrAlreadyRunning = errors.New("serialteleop: already running")

	// ErrNotRunning is returned when an operation needs a running session.
	ErrNotRunning = errors.New("serialteleop: not running")

	// ErrShutdownTimeout is returned when the reader does not finish within
	// the join timeout.
	ErrShutdownTimeout = errors.New("serialteleop: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("serialteleop: invalid configuration")

	// ErrClosed is returned by channel operations after Close.
	ErrClosed = errors.New("serialteleop: channel closed")
)
