package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/atomic"

	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

// DefaultReaderIdle is the pause between reads when nothing is pending.
const DefaultReaderIdle = 10 * time.Millisecond

// ReaderConfig holds reader loop timing.
type ReaderConfig struct {
	Idle           time.Duration
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultReaderConfig returns the stock reader timing.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Idle:           DefaultReaderIdle,
		BackoffInitial: DefaultBackoffInitial,
		BackoffMax:     DefaultBackoffMax,
	}
}

// Reader drains inbound telemetry and logs each line as "< line".
// It is the only caller of ReadLine on its channel.
type Reader struct {
	channel ports.SerialChannel
	logger  ports.Logger
	cfg     ReaderConfig

	lines    atomic.Int64
	readErrs atomic.Int64
}

// NewReader creates a reader over ch.
func NewReader(ch ports.SerialChannel, logger ports.Logger, cfg ReaderConfig) *Reader {
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultReaderIdle
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = DefaultBackoffInitial
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = DefaultBackoffMax
	}
	return &Reader{channel: ch, logger: logger, cfg: cfg}
}

// Run reads until ctx is cancelled or the channel is closed.
// Read errors are logged and retried with backoff.
func (r *Reader) Run(ctx context.Context) {
	bo := newBackoff(r.cfg.BackoffInitial, r.cfg.BackoffMax)

	for ctx.Err() == nil {
		line, ok, err := r.channel.ReadLine()
		if err != nil {
			if errors.Is(err, domain.ErrClosed) {
				return
			}
			r.readErrs.Inc()
			r.logger.Warn("serial read error",
				ports.Err(err),
				ports.Duration("retry_in", bo.Current()),
			)
			if !bo.Wait(ctx) {
				return
			}
			continue
		}
		bo.Reset()

		if !ok {
			if !sleepCtx(ctx, r.cfg.Idle) {
				return
			}
			continue
		}
		if line == "" {
			continue
		}

		r.lines.Inc()
		r.logger.Info("< " + line)
	}
}

// Lines returns the number of non-empty lines logged so far.
func (r *Reader) Lines() int64 {
	return r.lines.Load()
}

// Errors returns the number of read errors seen so far.
func (r *Reader) Errors() int64 {
	return r.readErrs.Load()
}
