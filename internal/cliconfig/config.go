package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/serialteleop/internal/domain"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "SERIALTELEOP_"

// Config holds CLI configuration for serialteleop.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration

	SettleDelay      time.Duration
	TickInterval     time.Duration
	ReaderIdle       time.Duration
	ReaderBackoff    time.Duration
	ReaderBackoffMax time.Duration
	JoinTimeout      time.Duration

	BaseSpeed int
	SpeedStep int

	LogLevel    string
	LogFile     string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:             "/dev/ttyACM0",
		BaudRate:         57600,
		ReadTimeout:      100 * time.Millisecond,
		SettleDelay:      2 * time.Second,
		TickInterval:     20 * time.Millisecond,
		ReaderIdle:       10 * time.Millisecond,
		ReaderBackoff:    100 * time.Millisecond,
		ReaderBackoffMax: time.Second,
		JoinTimeout:      500 * time.Millisecond,
		BaseSpeed:        domain.DefaultBaseSpeed,
		SpeedStep:        domain.DefaultSpeedStep,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is required", domain.ErrInvalidConfig)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 || c.SettleDelay < 0 {
		return fmt.Errorf("%w: read timeout and settle delay must not be negative", domain.ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", domain.ErrInvalidConfig)
	}
	if c.ReaderIdle <= 0 || c.ReaderBackoff <= 0 || c.JoinTimeout <= 0 {
		return fmt.Errorf("%w: reader intervals and join timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ReaderBackoffMax < c.ReaderBackoff {
		return fmt.Errorf("%w: reader-backoff-max must be at least reader-backoff", domain.ErrInvalidConfig)
	}
	if c.SpeedStep <= 0 {
		return fmt.Errorf("%w: speed step must be positive", domain.ErrInvalidConfig)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: unknown log level %q", domain.ErrInvalidConfig, c.LogLevel)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int from a pointer, allowing zero and negative values.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// With positive set, zero and negative values are ignored.
func (s *configSetter) setIntFromString(flag, value string, dst *int, positive bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if positive && i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
