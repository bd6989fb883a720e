//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// Package terminal implements ports.KeySource for an interactive Unix terminal.
//
// EnterRawMode switches the terminal to cbreak mode: input is delivered one
// byte at a time without echo, while output processing and signal keys stay
// enabled so log lines still render and Ctrl-C still raises SIGINT.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

// Terminal reads keystrokes from a terminal file descriptor.
type Terminal struct {
	fd int

	mu    sync.Mutex
	saved *term.State
}

// New returns a Terminal reading from f (usually os.Stdin).
func New(f *os.File) *Terminal {
	return &Terminal{fd: int(f.Fd())}
}

// EnterRawMode captures the current mode and switches to cbreak.
// Calling it again while already in raw mode is a no-op.
func (t *Terminal) EnterRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved != nil {
		return nil
	}
	if !term.IsTerminal(t.fd) {
		return fmt.Errorf("%w: fd %d is not an interactive terminal", domain.ErrTerminal, t.fd)
	}

	state, err := term.GetState(t.fd)
	if err != nil {
		return fmt.Errorf("%w: read terminal mode: %w", domain.ErrTerminal, err)
	}
	if err := setCbreak(t.fd); err != nil {
		_ = term.Restore(t.fd, state)
		return fmt.Errorf("%w: set cbreak mode: %w", domain.ErrTerminal, err)
	}

	t.saved = state
	return nil
}

// Restore puts back the mode captured by EnterRawMode. No-op if raw mode
// was never entered or has already been restored.
func (t *Terminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved == nil {
		return nil
	}
	if err := term.Restore(t.fd, t.saved); err != nil {
		return fmt.Errorf("%w: restore terminal mode: %w", domain.ErrTerminal, err)
	}
	t.saved = nil
	return nil
}

// PollKey returns one pending byte, waiting at most timeout.
// End of input is reported as "no key".
func (t *Terminal) PollKey(timeout time.Duration) (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("poll terminal: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	if fds[0].Revents&unix.POLLNVAL != 0 {
		return 0, false, fmt.Errorf("poll terminal: invalid descriptor %d", t.fd)
	}
	if fds[0].Revents&(unix.POLLIN|unix.POLLHUP) == 0 {
		return 0, false, nil
	}

	var buf [1]byte
	r, err := unix.Read(t.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read terminal: %w", err)
	}
	if r == 0 {
		return 0, false, nil
	}
	return buf[0], true, nil
}

// setCbreak clears canonical mode and echo, one byte per read.
func setCbreak(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}
	termios.Lflag &^= unix.ICANON | unix.ECHO
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, termios)
}

var _ ports.KeySource = (*Terminal)(nil)
