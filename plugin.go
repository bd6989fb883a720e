package serialteleop

import "context"

// Plugin extends a Session with optional behavior.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize is called once the session is connected. ctx is cancelled
	// when the session stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown releases plugin resources.
	Shutdown(ctx context.Context) error
}

// TuningUpdater accepts replacement speed tuning from any goroutine.
type TuningUpdater interface {
	UpdateTuning(t Tuning)
}

// PluginConfig carries session details to plugins.
type PluginConfig struct {
	Port     string
	BaudRate int

	// Tuning is the tuning in effect when the session started.
	Tuning Tuning

	// Tuner forwards tuning changes to the polling loop.
	Tuner TuningUpdater

	Logger Logger
}
