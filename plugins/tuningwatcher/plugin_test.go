package tuningwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/serialteleop"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...serialteleop.LogField) {}
func (nopLogger) Info(string, ...serialteleop.LogField)  {}
func (nopLogger) Warn(string, ...serialteleop.LogField)  {}
func (nopLogger) Error(string, ...serialteleop.LogField) {}

// recordingTuner captures tuning updates.
type recordingTuner struct {
	updates chan serialteleop.Tuning
}

func newRecordingTuner() *recordingTuner {
	return &recordingTuner{updates: make(chan serialteleop.Tuning, 16)}
}

func (r *recordingTuner) UpdateTuning(t serialteleop.Tuning) {
	r.updates <- t
}

func (r *recordingTuner) expect(t *testing.T, want serialteleop.Tuning) {
	t.Helper()
	select {
	case got := <-r.updates:
		if got != want {
			t.Errorf("tuning update = %+v, want %+v", got, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no tuning update, want %+v", want)
	}
}

func (r *recordingTuner) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case got := <-r.updates:
		t.Errorf("unexpected tuning update %+v", got)
	case <-time.After(wait):
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func startPlugin(t *testing.T, path string, tuner *recordingTuner) *Plugin {
	t.Helper()
	return startPluginWith(t, Config{Path: path}, serialteleop.Tuning{BaseSpeed: 0, SpeedStep: 5}, tuner)
}

func startPluginWith(t *testing.T, cfg Config, initial serialteleop.Tuning, tuner *recordingTuner) *Plugin {
	t.Helper()
	cfg.DebounceDelay = 10 * time.Millisecond
	p := New(cfg)
	err := p.Initialize(context.Background(), serialteleop.PluginConfig{
		Tuning: initial,
		Tuner:  tuner,
		Logger: nopLogger{},
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() {
		if err := p.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return p
}

func TestPlugin_Name(t *testing.T) {
	if got := New(Config{}).Name(); got != "tuningwatcher" {
		t.Errorf("Name() = %q", got)
	}
}

func TestPlugin_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "port = \"/dev/ttyACM0\"\nspeed_step = 5\n")

	tuner := newRecordingTuner()
	startPlugin(t, path, tuner)

	writeFile(t, path, "port = \"/dev/ttyACM0\"\nspeed_step = 10\nbase_speed = 20\n")
	tuner.expect(t, serialteleop.Tuning{BaseSpeed: 20, SpeedStep: 10})
}

func TestPlugin_KeepsPinnedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "speed_step = 5\n")

	tuner := newRecordingTuner()
	startPluginWith(t, Config{Path: path, PinSpeedStep: true}, serialteleop.Tuning{BaseSpeed: 0, SpeedStep: 15}, tuner)

	writeFile(t, path, "speed_step = 5\nbase_speed = 20\n")
	tuner.expect(t, serialteleop.Tuning{BaseSpeed: 20, SpeedStep: 15})
}

func TestPlugin_IgnoresInvalidAndUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "speed_step = 5\n")

	tuner := newRecordingTuner()
	startPlugin(t, path, tuner)

	writeFile(t, path, "speed_step = \n")
	tuner.expectNone(t, 200*time.Millisecond)

	writeFile(t, path, "speed_step = -3\n")
	tuner.expectNone(t, 200*time.Millisecond)

	writeFile(t, path, "speed_step = 5\nbase_speed = 0\n")
	tuner.expectNone(t, 200*time.Millisecond)

	writeFile(t, path, "speed_step = 7\n")
	tuner.expect(t, serialteleop.Tuning{BaseSpeed: 0, SpeedStep: 7})
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "speed_step = 5\n")

	tuner := newRecordingTuner()
	startPlugin(t, path, tuner)

	writeFile(t, filepath.Join(dir, "other.toml"), "speed_step = 9\n")
	tuner.expectNone(t, 200*time.Millisecond)
}

func TestPlugin_DisabledWithoutPath(t *testing.T) {
	p := New(Config{})
	err := p.Initialize(context.Background(), serialteleop.PluginConfig{
		Tuner:  newRecordingTuner(),
		Logger: nopLogger{},
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestPlugin_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")
	p := New(Config{Path: path})

	err := p.Initialize(context.Background(), serialteleop.PluginConfig{
		Tuner:  newRecordingTuner(),
		Logger: nopLogger{},
	})
	if err == nil {
		t.Error("Initialize() should fail when the directory does not exist")
	}
}

func TestReadTuning(t *testing.T) {
	dir := t.TempDir()
	fallback := serialteleop.Tuning{BaseSpeed: 3, SpeedStep: 5}

	tests := []struct {
		name    string
		content string
		pinned  pins
		want    serialteleop.Tuning
		wantErr bool
	}{
		{"both keys", "base_speed = -10\nspeed_step = 2\n", pins{}, serialteleop.Tuning{BaseSpeed: -10, SpeedStep: 2}, false},
		{"step only", "speed_step = 8\n", pins{}, serialteleop.Tuning{BaseSpeed: 3, SpeedStep: 8}, false},
		{"no tuning keys", "port = \"/dev/ttyUSB0\"\n", pins{}, fallback, false},
		{"zero step", "speed_step = 0\n", pins{}, fallback, true},
		{"malformed", "speed_step = [\n", pins{}, fallback, true},
		{"pinned step", "base_speed = 7\nspeed_step = 9\n", pins{speedStep: true}, serialteleop.Tuning{BaseSpeed: 7, SpeedStep: 5}, false},
		{"pinned base", "base_speed = 7\nspeed_step = 9\n", pins{baseSpeed: true}, serialteleop.Tuning{BaseSpeed: 3, SpeedStep: 9}, false},
		{"pinned invalid step", "speed_step = 0\n", pins{speedStep: true}, fallback, false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "c"+string(rune('a'+i))+".toml")
			writeFile(t, path, tt.content)

			got, err := readTuning(path, fallback, tt.pinned)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readTuning() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readTuning() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := readTuning(filepath.Join(dir, "absent.toml"), fallback, pins{}); err == nil {
		t.Error("readTuning() on missing file should fail")
	}
}
