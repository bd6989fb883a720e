package serialteleop

import (
	serialAdapter "github.com/bft-labs/serialteleop/internal/adapters/serial"
	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// SerialChannel is a line-oriented link to the robot controller.
type SerialChannel = ports.SerialChannel

// KeySource delivers single keystrokes from a terminal.
type KeySource = ports.KeySource

// Tuning holds the speed parameters applied to keystrokes.
type Tuning = domain.Tuning

// VelocityState is the commanded speed and the wheel values last sent.
type VelocityState = domain.VelocityState

// ChannelConfig is passed to a ChannelOpener.
type ChannelConfig = serialAdapter.Config

// ChannelOpener opens the serial link. Errors should wrap ErrConnection.
type ChannelOpener func(cfg ChannelConfig) (SerialChannel, error)

// Option configures optional behavior of a Session.
type Option func(*options)

// options holds the optional configuration for a Session.
type options struct {
	logger       ports.Logger
	eventHandler EventHandler
	plugins      []Plugin
	openChannel  ChannelOpener
	keySource    ports.KeySource
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		openChannel: openSerialChannel,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for session events.
// Events are called synchronously; implementations should return quickly.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the session starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithChannelOpener replaces the serial port opener. Useful for tests and
// for links that are not local serial devices.
func WithChannelOpener(open ChannelOpener) Option {
	return func(o *options) {
		o.openChannel = open
	}
}

// WithKeySource replaces the terminal key source (stdin by default).
func WithKeySource(keys KeySource) Option {
	return func(o *options) {
		o.keySource = keys
	}
}

func openSerialChannel(cfg ChannelConfig) (SerialChannel, error) {
	ch, err := serialAdapter.Open(cfg)
	if err != nil {
		return nil, err
	}
	return ch, nil
}
