// Package serial implements ports.SerialChannel on top of go.bug.st/serial.
//
// The controller firmware speaks newline-delimited ASCII. Channel buffers
// incoming bytes and hands out one complete line at a time; every read is
// bounded by the configured read timeout so the reader goroutine can always
// observe cancellation.
package serial

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.bug.st/serial"
	"go.uber.org/atomic"

	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

const (
	// maxLineSize bounds a partial line; longer lines are dropped.
	maxLineSize = 4096

	readChunkSize = 256
)

// Port abstracts the subset of go.bug.st/serial.Port used by Channel.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(t time.Duration) error
}

// Config selects the device and line settings.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

// allow tests to override the device layer
var openPort = func(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Channel is a line-oriented serial link. ReadLine must only be called from
// one goroutine; WriteLine may run concurrently with it.
type Channel struct {
	port Port
	name string

	pending []byte
	chunk   []byte

	// set after an oversized line was dropped; bytes are skipped up to
	// and including the next '\n'
	discarding bool

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open opens cfg.Port at cfg.BaudRate, 8N1, with the given read timeout.
// Failures wrap domain.ErrConnection.
func Open(cfg Config) (*Channel, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: missing port name", domain.ErrConnection)
	}
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("%w: invalid baud rate %d", domain.ErrConnection, cfg.BaudRate)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := openPort(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s @ %d: %w", domain.ErrConnection, cfg.Port, cfg.BaudRate, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("%w: set read timeout on %s: %w", domain.ErrConnection, cfg.Port, err)
		}
	}

	return NewChannel(p, cfg.Port), nil
}

// NewChannel wraps an already-open port.
func NewChannel(p Port, name string) *Channel {
	return &Channel{
		port:  p,
		name:  name,
		chunk: make([]byte, readChunkSize),
	}
}

// Name returns the device path the channel was opened on.
func (c *Channel) Name() string {
	return c.name
}

// WriteLine writes text followed by '\n'. Failures wrap domain.ErrIO.
func (c *Channel) WriteLine(text string) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: write: %w", domain.ErrIO, domain.ErrClosed)
	}

	data := []byte(text + "\n")
	written := 0
	for written < len(data) {
		n, err := c.port.Write(data[written:])
		if err != nil {
			return fmt.Errorf("%w: write %s: %w", domain.ErrIO, c.name, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: write %s: short write (%d of %d bytes)", domain.ErrIO, c.name, written, len(data))
		}
		written += n
	}
	return nil
}

// ReadLine returns a buffered line immediately, otherwise performs a single
// read bounded by the read timeout. ok is false when no full line is ready.
func (c *Channel) ReadLine() (string, bool, error) {
	if c.closed.Load() {
		return "", false, fmt.Errorf("%w: read: %w", domain.ErrIO, domain.ErrClosed)
	}

	if line, ok := c.nextLine(); ok {
		return line, true, nil
	}

	n, err := c.port.Read(c.chunk)
	if n > 0 {
		c.buffer(c.chunk[:n])
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: read %s: %w", domain.ErrIO, c.name, err)
	}

	line, ok := c.nextLine()
	return line, ok, nil
}

// Close closes the port. Safe to call multiple times and on a nil Channel.
func (c *Channel) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.port != nil {
			c.closeErr = c.port.Close()
		}
	})
	return c.closeErr
}

func (c *Channel) buffer(b []byte) {
	if c.discarding {
		idx := bytes.IndexByte(b, '\n')
		if idx == -1 {
			return
		}
		b = b[idx+1:]
		c.discarding = false
	}
	c.pending = append(c.pending, b...)

	// Only the partial line after the last '\n' counts against the cap.
	start := bytes.LastIndexByte(c.pending, '\n') + 1
	if len(c.pending)-start > maxLineSize {
		c.pending = c.pending[:start]
		c.discarding = true
	}
}

func (c *Channel) nextLine() (string, bool) {
	idx := bytes.IndexByte(c.pending, '\n')
	if idx == -1 {
		return "", false
	}
	line := decodeLine(c.pending[:idx])
	c.pending = append(c.pending[:0], c.pending[idx+1:]...)
	return line, true
}

// decodeLine replaces invalid UTF-8 and trims trailing whitespace (incl. '\r').
func decodeLine(raw []byte) string {
	s := strings.ToValidUTF8(string(raw), "\uFFFD")
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

var _ ports.SerialChannel = (*Channel)(nil)
