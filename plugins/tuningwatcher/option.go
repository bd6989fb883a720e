package tuningwatcher

import "github.com/bft-labs/serialteleop"

// WithTuningWatcher returns a session Option that reloads speed tuning
// whenever the config file at cfg.Path changes.
//
// Usage:
//
//	s, err := serialteleop.New(cfg,
//	    tuningwatcher.WithTuningWatcher(tuningwatcher.Config{
//	        Path:          "/home/pi/.serialteleop/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithTuningWatcher(cfg Config) serialteleop.Option {
	return serialteleop.WithPlugin(New(cfg))
}
