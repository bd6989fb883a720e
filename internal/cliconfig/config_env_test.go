package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SERIALTELEOP_PORT":               "/dev/ttyUSB3",
				"SERIALTELEOP_BAUD":               "9600",
				"SERIALTELEOP_READ_TIMEOUT":       "20ms",
				"SERIALTELEOP_SETTLE_DELAY":       "1s",
				"SERIALTELEOP_TICK":               "15ms",
				"SERIALTELEOP_READER_IDLE":        "2ms",
				"SERIALTELEOP_READER_BACKOFF":     "50ms",
				"SERIALTELEOP_READER_BACKOFF_MAX": "500ms",
				"SERIALTELEOP_JOIN_TIMEOUT":       "250ms",
				"SERIALTELEOP_BASE_SPEED":         "-5",
				"SERIALTELEOP_SPEED_STEP":         "3",
				"SERIALTELEOP_LOG_LEVEL":          "warn",
				"SERIALTELEOP_LOG_FILE":           "/tmp/teleop.log",
				"SERIALTELEOP_WATCH_CONFIG":       "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Port:             "/dev/ttyUSB3",
				BaudRate:         9600,
				ReadTimeout:      20 * time.Millisecond,
				SettleDelay:      time.Second,
				TickInterval:     15 * time.Millisecond,
				ReaderIdle:       2 * time.Millisecond,
				ReaderBackoff:    50 * time.Millisecond,
				ReaderBackoffMax: 500 * time.Millisecond,
				JoinTimeout:      250 * time.Millisecond,
				BaseSpeed:        -5,
				SpeedStep:        3,
				LogLevel:         "warn",
				LogFile:          "/tmp/teleop.log",
				WatchConfig:      true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SERIALTELEOP_PORT": "/dev/from-env",
				"SERIALTELEOP_BAUD": "9600",
			},
			changed:  map[string]bool{"port": true},
			initial:  Config{Port: "/dev/from-flag"},
			expected: Config{Port: "/dev/from-flag", BaudRate: 9600},
		},
		{
			name: "ignores non-positive baud",
			envVars: map[string]string{
				"SERIALTELEOP_BAUD": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{BaudRate: 57600},
			expected: Config{BaudRate: 57600},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"SERIALTELEOP_WATCH_CONFIG": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{WatchConfig: true},
			expected: Config{WatchConfig: false},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"SERIALTELEOP_TICK": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"SERIALTELEOP_BASE_SPEED": "fast",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v\nwant     %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	fileConf := FileConfig{
		Port:      "/dev/from-file",
		BaudRate:  9600,
		SpeedStep: 7,
	}

	t.Setenv("SERIALTELEOP_BAUD", "115200")
	t.Setenv("SERIALTELEOP_PORT", "/dev/from-env")

	changed := map[string]bool{
		"port": true,
	}

	cfg := DefaultConfig()
	cfg.Port = "/dev/from-flag"

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Port != "/dev/from-flag" {
		t.Errorf("Port = %v, want /dev/from-flag (CLI should win)", cfg.Port)
	}
	if cfg.BaudRate != 115200 {
		t.Errorf("BaudRate = %v, want 115200 (env should override file)", cfg.BaudRate)
	}
	if cfg.SpeedStep != 7 {
		t.Errorf("SpeedStep = %v, want 7 (file should set)", cfg.SpeedStep)
	}
	if cfg.ReadTimeout != 100*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want default 100ms", cfg.ReadTimeout)
	}
}

func TestOverridesFile(t *testing.T) {
	t.Setenv("SERIALTELEOP_SPEED_STEP", "12")
	t.Setenv("SERIALTELEOP_BASE_SPEED", "")

	changed := map[string]bool{"base-speed": true}

	tests := []struct {
		flag string
		want bool
	}{
		{"base-speed", true},
		{"speed-step", true},
		{"baud", false},
	}

	for _, tt := range tests {
		if got := OverridesFile(changed, tt.flag); got != tt.want {
			t.Errorf("OverridesFile(%q) = %v, want %v", tt.flag, got, tt.want)
		}
	}

	if OverridesFile(nil, "base-speed") {
		t.Error("OverridesFile(base-speed) with no flag and empty env = true")
	}
}
