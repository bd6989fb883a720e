package cliconfig

import (
	"os"
	"strings"
	"time"
)

// ApplyEnvConfig applies configuration from environment variables (SERIALTELEOP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv(EnvPrefix+"PORT"), &cfg.Port)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-file", os.Getenv(EnvPrefix+"LOG_FILE"), &cfg.LogFile)

	if err := s.setIntFromString("baud", os.Getenv(EnvPrefix+"BAUD"), &cfg.BaudRate, true); err != nil {
		return err
	}
	if err := s.setIntFromString("speed-step", os.Getenv(EnvPrefix+"SPEED_STEP"), &cfg.SpeedStep, true); err != nil {
		return err
	}
	if err := s.setIntFromString("base-speed", os.Getenv(EnvPrefix+"BASE_SPEED"), &cfg.BaseSpeed, false); err != nil {
		return err
	}

	durations := []struct {
		flag string
		env  string
		dst  *time.Duration
	}{
		{"read-timeout", "READ_TIMEOUT", &cfg.ReadTimeout},
		{"settle-delay", "SETTLE_DELAY", &cfg.SettleDelay},
		{"tick", "TICK", &cfg.TickInterval},
		{"reader-idle", "READER_IDLE", &cfg.ReaderIdle},
		{"reader-backoff", "READER_BACKOFF", &cfg.ReaderBackoff},
		{"reader-backoff-max", "READER_BACKOFF_MAX", &cfg.ReaderBackoffMax},
		{"join-timeout", "JOIN_TIMEOUT", &cfg.JoinTimeout},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, os.Getenv(EnvPrefix+d.env), d.dst); err != nil {
			return err
		}
	}

	s.setBoolFromString("watch-config", os.Getenv(EnvPrefix+"WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}

// OverridesFile reports whether the setting behind flag was given on the
// command line or through its SERIALTELEOP_* variable. Either one outranks
// the config file.
func OverridesFile(changed map[string]bool, flag string) bool {
	if changed[flag] {
		return true
	}
	return os.Getenv(EnvPrefix+strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))) != ""
}
