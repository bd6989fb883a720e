package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	zero := 0
	negative := -15

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all field types",
			fileConfig: FileConfig{
				Port:             "/dev/ttyUSB1",
				BaudRate:         115200,
				ReadTimeout:      "50ms",
				SettleDelay:      "0s",
				TickInterval:     "10ms",
				ReaderIdle:       "5ms",
				ReaderBackoff:    "200ms",
				ReaderBackoffMax: "2s",
				JoinTimeout:      "1s",
				BaseSpeed:        &negative,
				SpeedStep:        10,
				LogLevel:         "debug",
				LogFile:          "/var/log/teleop.log",
				WatchConfig:      &trueVal,
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				Port:             "/dev/ttyUSB1",
				BaudRate:         115200,
				ReadTimeout:      50 * time.Millisecond,
				SettleDelay:      0,
				TickInterval:     10 * time.Millisecond,
				ReaderIdle:       5 * time.Millisecond,
				ReaderBackoff:    200 * time.Millisecond,
				ReaderBackoffMax: 2 * time.Second,
				JoinTimeout:      time.Second,
				BaseSpeed:        -15,
				SpeedStep:        10,
				LogLevel:         "debug",
				LogFile:          "/var/log/teleop.log",
				WatchConfig:      true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Port:      "/dev/from-file",
				BaudRate:  9600,
				BaseSpeed: &zero,
			},
			changed: map[string]bool{"port": true, "base-speed": true},
			initial: Config{Port: "/dev/from-flag", BaseSpeed: 30},
			expected: Config{
				Port:      "/dev/from-flag",
				BaudRate:  9600,
				BaseSpeed: 30,
			},
		},
		{
			name:       "empty file leaves config alone",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{TickInterval: "fast"},
			changed:    map[string]bool{},
			initial:    Config{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v\nwant     %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
port = "/dev/ttyUSB0"
baud = 115200
settle_delay = "500ms"
base_speed = 0
speed_step = 8
watch_config = true
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Port != "/dev/ttyUSB0" || fc.BaudRate != 115200 {
		t.Errorf("port settings = %s @ %d", fc.Port, fc.BaudRate)
	}
	if fc.SettleDelay != "500ms" {
		t.Errorf("SettleDelay = %v, want 500ms", fc.SettleDelay)
	}
	if fc.BaseSpeed == nil || *fc.BaseSpeed != 0 {
		t.Errorf("BaseSpeed = %v, want explicit 0", fc.BaseSpeed)
	}
	if fc.SpeedStep != 8 {
		t.Errorf("SpeedStep = %v, want 8", fc.SpeedStep)
	}
	if fc.WatchConfig == nil || !*fc.WatchConfig {
		t.Error("WatchConfig should be true")
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(tmpDir, "missing.toml")); err == nil {
		t.Error("LoadFileConfig() on missing file should fail")
	}

	bad := filepath.Join(tmpDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("port = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("LoadFileConfig() on malformed TOML should fail")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/operator")

	got := DefaultConfigPath()
	if !strings.HasSuffix(got, filepath.Join(".serialteleop", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	p := filepath.Join(tmpDir, "present.toml")
	if err := os.WriteFile(p, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(p) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "absent.toml")) {
		t.Error("FileExists() = true for missing file")
	}
}
