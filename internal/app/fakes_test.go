package app

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

// fakeChannel implements ports.SerialChannel. Queued read errors are
// returned before queued lines; an empty queue means nothing pending.
type fakeChannel struct {
	mu       sync.Mutex
	lines    []string
	readErrs []error
	reads    int
	written  []string
	writeErr error
	closed   bool
}

func (f *fakeChannel) WriteLine(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, text)
	return nil
}

func (f *fakeChannel) ReadLine() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.closed {
		return "", false, fmt.Errorf("%w: %w", domain.ErrIO, domain.ErrClosed)
	}
	if len(f.readErrs) > 0 {
		err := f.readErrs[0]
		f.readErrs = f.readErrs[1:]
		return "", false, err
	}
	if len(f.lines) == 0 {
		return "", false, nil
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, true, nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.written...)
}

func (f *fakeChannel) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

type logEntry struct {
	level  string
	msg    string
	fields []ports.Field
}

// captureLogger records every entry for assertions.
type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level, msg, fields})
}

func (l *captureLogger) Debug(msg string, fields ...ports.Field) { l.add("debug", msg, fields) }
func (l *captureLogger) Info(msg string, fields ...ports.Field)  { l.add("info", msg, fields) }
func (l *captureLogger) Warn(msg string, fields ...ports.Field)  { l.add("warn", msg, fields) }
func (l *captureLogger) Error(msg string, fields ...ports.Field) { l.add("error", msg, fields) }

// Messages returns the messages logged at level.
func (l *captureLogger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

// Contains reports whether any message at level has the given prefix.
func (l *captureLogger) Contains(level, prefix string) bool {
	for _, m := range l.Messages(level) {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}
