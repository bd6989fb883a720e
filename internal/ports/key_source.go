package ports

import "time"

// KeySource delivers single keystrokes from an interactive terminal.
type KeySource interface {
	// EnterRawMode captures the current terminal mode and switches to
	// unbuffered, no-echo input. Errors wrap domain.ErrTerminal.
	EnterRawMode() error

	// PollKey returns one pending keystroke. ok is false when nothing
	// arrived within timeout; a zero timeout does not block.
	PollKey(timeout time.Duration) (key byte, ok bool, err error)

	// Restore puts back the mode captured by EnterRawMode. It is a no-op
	// when raw mode was never entered or was already restored.
	Restore() error
}
