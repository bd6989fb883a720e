// Package serialteleop drives a two-wheeled robot over a serial link from
// single keystrokes typed in an interactive terminal.
//
// Each recognized key updates the commanded speed and sends one ASCII
// velocity command, "V,<left>,<right>\n", to the controller. Telemetry
// lines coming back from the controller are drained by a background
// reader and logged as "< line".
//
// # Basic Usage
//
//	cfg := serialteleop.DefaultConfig()
//	cfg.Port = "/dev/ttyUSB0"
//
//	s, err := serialteleop.New(cfg, serialteleop.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Stop()
//
//	// Blocks until the quit key is pressed or ctx is cancelled.
//	_ = s.Run(ctx)
//
// # Controls
//
//	z / s   speed up / slow down by SpeedStep
//	q / d   spin left / right at the current speed
//	x       stop; speed returns to BaseSpeed
//	h / ?   show help
//	a       quit (Ctrl-C too)
//
// # Lifecycle States
//
// A Session moves through [StateCreated], [StateRunning], [StateStopping]
// and [StateStopped]. Stopped is terminal. [Session.Stop] restores the
// terminal, stops the reader, shuts plugins down and closes the port; it is
// safe to call more than once.
//
// # Plugins
//
// Plugins are initialized after the session is connected and shut down in
// reverse order:
//
//	import "github.com/bft-labs/serialteleop/plugins/tuningwatcher"
//
//	s, err := serialteleop.New(cfg,
//	    tuningwatcher.WithTuningWatcher(tuningwatcher.Config{Path: "config.toml"}),
//	)
package serialteleop
