package serialteleop

import "github.com/bft-labs/serialteleop/internal/domain"

// Errors returned by the session. Check them with errors.Is.
var (
	ErrConnection      = domain.ErrConnection
	ErrIO              = domain.ErrIO
	ErrTerminal        = domain.ErrTerminal
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)
