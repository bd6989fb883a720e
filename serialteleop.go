package serialteleop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	logAdapter "github.com/bft-labs/serialteleop/internal/adapters/log"
	"github.com/bft-labs/serialteleop/internal/app"
	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

// Session is one keyboard teleoperation session over a serial link.
// Use New() to create an instance, Start() to connect, Run() to drive the
// robot and Stop() to tear everything down.
type Session struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	logger    ports.Logger
	plugins   []Plugin

	// one-slot mailbox; the newest tuning wins
	tuning chan Tuning

	// velocity is published by the polling loop after every keystroke.
	velocity atomic.Pointer[VelocityState]

	// starting is set while Start holds mu.
	starting atomic.Bool

	// mu serializes Start and Stop.
	mu         sync.Mutex
	ctx        context.Context
	channel    ports.SerialChannel
	keys       ports.KeySource
	controller *app.VelocityController
	reader     *app.Reader
	started    []Plugin
}

// New creates a Session in StateCreated. Nothing is opened until Start.
// Returns an error wrapping ErrInvalidConfig if cfg is invalid.
func New(cfg Config, opts ...Option) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var logger ports.Logger
	if o.logger != nil {
		logger = o.logger
	} else {
		logger = logAdapter.NewNoopLogger()
	}

	keys := o.keySource
	if keys == nil {
		keys = defaultKeySource()
	}
	if o.openChannel == nil {
		o.openChannel = openSerialChannel
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	return &Session{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(logger, emitter),
		logger:    logger,
		plugins:   o.plugins,
		tuning:    make(chan Tuning, 1),
		keys:      keys,
	}, nil
}

// Start opens the serial link, waits for the controller to settle, switches
// the terminal to raw mode and starts the telemetry reader and plugins.
//
// On failure everything opened so far is torn down, the session ends in
// StateStopped and the error wraps ErrConnection or ErrTerminal. If ctx is
// cancelled during the settle delay, context.Canceled is returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting.Store(true)
	defer s.starting.Store(false)

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.lifecycle.SetCancel(cancel)

	ch, err := s.opts.openChannel(ChannelConfig{
		Port:        s.config.Port,
		BaudRate:    s.config.BaudRate,
		ReadTimeout: s.config.ReadTimeout,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrConnection) {
			err = fmt.Errorf("%w: %w", domain.ErrConnection, err)
		}
		s.logger.Error("failed to open serial port",
			ports.String("port", s.config.Port),
			ports.Int("baud", s.config.BaudRate),
			ports.Err(err))
		s.abortStart("open failed")
		return err
	}
	s.channel = ch

	if !s.settle(runCtx) {
		s.abortStart("cancelled while settling")
		return runCtx.Err()
	}

	s.logger.Info(fmt.Sprintf("Connected to %s @ %d", s.config.Port, s.config.BaudRate))
	s.controller = app.NewVelocityController(ch, s.logger, s.config.Tuning(), s.config.HelpText)
	s.controller.ShowHelp()
	s.publishVelocity()

	if err := s.keys.EnterRawMode(); err != nil {
		if !errors.Is(err, domain.ErrTerminal) {
			err = fmt.Errorf("%w: %w", domain.ErrTerminal, err)
		}
		s.logger.Error("failed to enter raw terminal mode", ports.Err(err))
		s.abortStart("raw mode failed")
		return err
	}

	s.reader = app.NewReader(ch, s.logger, app.ReaderConfig{
		Idle:           s.config.ReaderIdle,
		BackoffInitial: s.config.ReaderBackoff,
		BackoffMax:     s.config.ReaderBackoffMax,
	})
	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		s.reader.Run(runCtx)
	}()

	pluginCfg := PluginConfig{
		Port:     s.config.Port,
		BaudRate: s.config.BaudRate,
		Tuning:   s.config.Tuning(),
		Tuner:    s,
		Logger:   s.logger,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			s.abortStart("plugin init failed: " + p.Name())
			return err
		}
		s.started = append(s.started, p)
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	return s.lifecycle.TransitionTo(app.StateRunning, "session started")
}

// Run polls the keyboard every TickInterval and dispatches keystrokes until
// the quit key is pressed or ctx (or the session) is cancelled. Poll errors
// are logged and polling continues. Run must be called from one goroutine.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.lifecycle.State() != app.StateRunning {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	sessionCtx := s.ctx
	s.mu.Unlock()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sessionCtx.Done():
			return nil
		case <-ticker.C:
		}

		select {
		case t := <-s.tuning:
			s.controller.ApplyTuning(t)
		default:
		}

		key, ok, err := s.keys.PollKey(0)
		if err != nil {
			s.logger.Warn("keyboard poll failed", ports.Err(err))
			continue
		}
		if !ok {
			continue
		}

		action := s.controller.Handle(key)
		s.publishVelocity()
		if action == app.ActionQuit {
			s.logger.Info("quit requested")
			return nil
		}
	}
}

// Stop tears the session down: restore the terminal, stop the reader
// (waiting at most JoinTimeout), shut plugins down in reverse order and
// close the port. Every step runs even if an earlier one fails. Calling
// Stop again, or on a session that never started, is a no-op.
func (s *Session) Stop() error {
	// A Start blocked in its settle delay holds mu; cancel it first.
	if s.starting.Load() {
		s.lifecycle.Cancel()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStop() {
		return nil
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return nil
	}

	err := s.teardown()
	_ = s.lifecycle.TransitionTo(app.StateStopped, "session stopped")
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Session) Status() State {
	return convertState(s.lifecycle.State())
}

// UpdateTuning hands new speed tuning to the polling loop, which applies it
// before the next keystroke. Safe to call from any goroutine; if several
// updates arrive between ticks only the newest is applied.
func (s *Session) UpdateTuning(t Tuning) {
	for {
		select {
		case s.tuning <- t:
			return
		default:
		}
		select {
		case <-s.tuning:
		default:
		}
	}
}

// Velocity returns the velocity state after the last handled keystroke.
// Safe to call concurrently with Run.
func (s *Session) Velocity() VelocityState {
	if v := s.velocity.Load(); v != nil {
		return *v
	}
	return domain.NewVelocityState(s.config.BaseSpeed)
}

// publishVelocity snapshots the controller state. Called from the goroutine
// that owns the controller.
func (s *Session) publishVelocity() {
	v := s.controller.State()
	s.velocity.Store(&v)
}

// abortStart tears down a partially started session. Caller holds mu.
func (s *Session) abortStart(reason string) {
	_ = s.lifecycle.TransitionTo(app.StateStopping, reason)
	_ = s.teardown()
	_ = s.lifecycle.TransitionTo(app.StateStopped, reason)
}

// teardown releases everything Start acquired. Caller holds mu.
func (s *Session) teardown() error {
	var errs []error

	if err := s.keys.Restore(); err != nil {
		s.logger.Warn("failed to restore terminal", ports.Err(err))
		errs = append(errs, err)
	}

	s.lifecycle.Cancel()
	if err := s.lifecycle.WaitWithTimeout(s.config.JoinTimeout); err != nil {
		s.logger.Warn("continuing shutdown without reader", ports.Err(err))
	}
	if s.reader != nil {
		s.logger.Debug("reader stopped",
			ports.Any("lines", s.reader.Lines()),
			ports.Any("errors", s.reader.Errors()))
	}

	shutdownCtx := context.Background()
	for i := len(s.started) - 1; i >= 0; i-- {
		p := s.started[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			errs = append(errs, err)
		} else {
			s.logger.Debug("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
	s.started = nil

	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Warn("failed to close serial port", ports.Err(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// settle waits SettleDelay or until ctx is done.
func (s *Session) settle(ctx context.Context) bool {
	if s.config.SettleDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.config.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

var _ TuningUpdater = (*Session)(nil)
