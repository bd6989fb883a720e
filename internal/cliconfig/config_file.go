package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Port             string `toml:"port"`
	BaudRate         int    `toml:"baud"`
	ReadTimeout      string `toml:"read_timeout"`
	SettleDelay      string `toml:"settle_delay"`
	TickInterval     string `toml:"tick"`
	ReaderIdle       string `toml:"reader_idle"`
	ReaderBackoff    string `toml:"reader_backoff"`
	ReaderBackoffMax string `toml:"reader_backoff_max"`
	JoinTimeout      string `toml:"join_timeout"`
	BaseSpeed        *int   `toml:"base_speed"`
	SpeedStep        int    `toml:"speed_step"`
	LogLevel         string `toml:"log_level"`
	LogFile          string `toml:"log_file"`
	WatchConfig      *bool  `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.serialteleop/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".serialteleop", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)

	s.setInt("baud", fc.BaudRate, &cfg.BaudRate)
	s.setInt("speed-step", fc.SpeedStep, &cfg.SpeedStep)
	s.setIntPtr("base-speed", fc.BaseSpeed, &cfg.BaseSpeed)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"read-timeout", fc.ReadTimeout, &cfg.ReadTimeout},
		{"settle-delay", fc.SettleDelay, &cfg.SettleDelay},
		{"tick", fc.TickInterval, &cfg.TickInterval},
		{"reader-idle", fc.ReaderIdle, &cfg.ReaderIdle},
		{"reader-backoff", fc.ReaderBackoff, &cfg.ReaderBackoff},
		{"reader-backoff-max", fc.ReaderBackoffMax, &cfg.ReaderBackoffMax},
		{"join-timeout", fc.JoinTimeout, &cfg.JoinTimeout},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
