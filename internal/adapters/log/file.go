package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the session log file.
const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

// NewRotatingFile returns a size-rotated log file writer for path.
func NewRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
	}
}

// NewLogger builds the CLI logger: human-readable console output on stderr
// and, when path is set, JSON lines in a rotating file. Close the returned
// io.Closer on exit.
func NewLogger(level, path string) (zerolog.Logger, io.Closer) {
	return newLogger(os.Stderr, level, path)
}

func newLogger(console io.Writer, level, path string) (zerolog.Logger, io.Closer) {
	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	var closer io.Closer = nopCloser{}

	if path != "" {
		file := NewRotatingFile(path)
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	logger := zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
