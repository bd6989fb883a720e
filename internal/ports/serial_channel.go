package ports

// SerialChannel is a line-oriented duplex link to the robot controller.
//
// ReadLine is called only from the reader goroutine and WriteLine only from
// the polling loop, so implementations need no lock between the two.
type SerialChannel interface {
	// WriteLine writes text followed by '\n'.
	// Errors wrap domain.ErrIO.
	WriteLine(text string) error

	// ReadLine returns one complete line if one is buffered or arrives within
	// the channel's read timeout. ok is false when no line is available.
	// Trailing whitespace is trimmed and invalid UTF-8 is replaced.
	ReadLine() (line string, ok bool, err error)

	// Close releases the port. Safe to call more than once.
	Close() error
}
