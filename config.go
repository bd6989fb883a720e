package serialteleop

import (
	"fmt"
	"time"

	"github.com/bft-labs/serialteleop/internal/app"
	"github.com/bft-labs/serialteleop/internal/domain"
)

// Default connection settings.
const (
	DefaultPort        = "/dev/ttyACM0"
	DefaultBaudRate    = 57600
	DefaultReadTimeout = 100 * time.Millisecond
	DefaultSettleDelay = 2 * time.Second
	DefaultTick        = 20 * time.Millisecond
)

// Config holds the configuration for a teleoperation session.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Port is the serial device path.
	Port string

	// BaudRate is the serial line speed.
	BaudRate int

	// ReadTimeout bounds each serial read.
	ReadTimeout time.Duration

	// SettleDelay is how long Start waits after opening the port, giving
	// boards that reset on open time to boot. Zero disables the wait.
	SettleDelay time.Duration

	// TickInterval is the keyboard polling period.
	TickInterval time.Duration

	// ReaderIdle is the reader pause when no telemetry is pending.
	ReaderIdle time.Duration

	// ReaderBackoff is the first wait after a read error; it doubles up to
	// ReaderBackoffMax and resets after a successful read.
	ReaderBackoff    time.Duration
	ReaderBackoffMax time.Duration

	// JoinTimeout bounds how long Stop waits for the reader.
	JoinTimeout time.Duration

	// BaseSpeed is the starting speed and the speed restored by stop.
	BaseSpeed int

	// SpeedStep is added or removed by the faster/slower keys.
	SpeedStep int

	// HelpText replaces the default control list.
	HelpText string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Port:             DefaultPort,
		BaudRate:         DefaultBaudRate,
		ReadTimeout:      DefaultReadTimeout,
		SettleDelay:      DefaultSettleDelay,
		TickInterval:     DefaultTick,
		ReaderIdle:       app.DefaultReaderIdle,
		ReaderBackoff:    app.DefaultBackoffInitial,
		ReaderBackoffMax: app.DefaultBackoffMax,
		JoinTimeout:      app.DefaultJoinTimeout,
		BaseSpeed:        domain.DefaultBaseSpeed,
		SpeedStep:        domain.DefaultSpeedStep,
		HelpText:         domain.DefaultHelpText,
	}
}

// SetDefaults fills zero-valued fields. SettleDelay and BaseSpeed are left
// alone since zero is meaningful for both.
func (c *Config) SetDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTick
	}
	if c.ReaderIdle == 0 {
		c.ReaderIdle = app.DefaultReaderIdle
	}
	if c.ReaderBackoff == 0 {
		c.ReaderBackoff = app.DefaultBackoffInitial
	}
	if c.ReaderBackoffMax == 0 {
		c.ReaderBackoffMax = app.DefaultBackoffMax
	}
	if c.JoinTimeout == 0 {
		c.JoinTimeout = app.DefaultJoinTimeout
	}
	if c.SpeedStep == 0 {
		c.SpeedStep = domain.DefaultSpeedStep
	}
	if c.HelpText == "" {
		c.HelpText = domain.DefaultHelpText
	}
}

// Validate checks the configuration for errors.
// Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is required", domain.ErrInvalidConfig)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive, got %d", domain.ErrInvalidConfig, c.BaudRate)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("%w: settle delay must not be negative", domain.ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", domain.ErrInvalidConfig)
	}
	if c.ReaderIdle <= 0 || c.ReaderBackoff <= 0 {
		return fmt.Errorf("%w: reader intervals must be positive", domain.ErrInvalidConfig)
	}
	if c.ReaderBackoffMax < c.ReaderBackoff {
		return fmt.Errorf("%w: reader backoff max %v is below initial %v",
			domain.ErrInvalidConfig, c.ReaderBackoffMax, c.ReaderBackoff)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("%w: join timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.SpeedStep <= 0 {
		return fmt.Errorf("%w: speed step must be positive, got %d", domain.ErrInvalidConfig, c.SpeedStep)
	}
	return nil
}

// Tuning returns the speed tuning described by the config.
func (c Config) Tuning() Tuning {
	return Tuning{BaseSpeed: c.BaseSpeed, SpeedStep: c.SpeedStep}
}
