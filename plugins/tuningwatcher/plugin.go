// Package tuningwatcher hot-reloads speed tuning for a running session.
// It watches the TOML config file and forwards base_speed and speed_step
// changes to the session, which applies them before the next keystroke.
package tuningwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/serialteleop"
)

// Plugin watches a config file for tuning changes.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration
	pins          pins

	// Runtime state
	logger   serialteleop.Logger
	tuner    serialteleop.TuningUpdater
	fallback serialteleop.Tuning
	last     serialteleop.Tuning
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the tuning watcher plugin.
type Config struct {
	// Path is the TOML file to watch.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// PinBaseSpeed and PinSpeedStep keep the session's starting value for
	// that key, for values set by a source that outranks the file.
	PinBaseSpeed bool
	PinSpeedStep bool
}

// pins selects tuning keys that reloads must leave alone.
type pins struct {
	baseSpeed bool
	speedStep bool
}

// fileTuning is the subset of the config file this plugin reads.
type fileTuning struct {
	BaseSpeed *int `toml:"base_speed"`
	SpeedStep *int `toml:"speed_step"`
}

// New creates a new tuning watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		pins:          pins{baseSpeed: cfg.PinBaseSpeed, speedStep: cfg.PinSpeedStep},
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "tuningwatcher"
}

// Initialize starts watching the config file. The watch is registered
// before Initialize returns.
func (p *Plugin) Initialize(ctx context.Context, cfg serialteleop.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.tuner = cfg.Tuner
	p.fallback = cfg.Tuning
	p.last = cfg.Tuning
	p.mu.Unlock()

	if p.path == "" || p.tuner == nil {
		p.logger.Warn("Tuning watcher disabled: no config file or session to update")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tuning watcher: create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("tuning watcher: watch %s: %w", filepath.Dir(p.path), err)
	}
	p.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("Tuning watcher plugin initialized")

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

// watchLoop forwards change events for the config file to the debouncer.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn(fmt.Sprintf("Tuning watcher: watcher error: %v", err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload reads the file and forwards the tuning if it changed.
func (p *Plugin) reload() {
	t, err := readTuning(p.path, p.fallback, p.pins)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("Tuning watcher: keeping current tuning: %v", err))
		return
	}

	p.mu.Lock()
	if t == p.last {
		p.mu.Unlock()
		return
	}
	p.last = t
	p.mu.Unlock()

	p.tuner.UpdateTuning(t)
	p.logger.Info(fmt.Sprintf("Tuning watcher: reloaded base_speed=%d speed_step=%d", t.BaseSpeed, t.SpeedStep))
}

// readTuning parses path; keys missing from the file or pinned keep their
// fallback value.
func readTuning(path string, fallback serialteleop.Tuning, pinned pins) (serialteleop.Tuning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fallback, err
	}

	var ft fileTuning
	if err := toml.Unmarshal(b, &ft); err != nil {
		return fallback, fmt.Errorf("parse %s: %w", path, err)
	}

	t := fallback
	if ft.BaseSpeed != nil && !pinned.baseSpeed {
		t.BaseSpeed = *ft.BaseSpeed
	}
	if ft.SpeedStep != nil && !pinned.speedStep {
		if *ft.SpeedStep <= 0 {
			return fallback, fmt.Errorf("speed_step must be positive, got %d", *ft.SpeedStep)
		}
		t.SpeedStep = *ft.SpeedStep
	}
	return t, nil
}
