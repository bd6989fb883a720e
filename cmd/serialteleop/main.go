package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/serialteleop"
	logAdapter "github.com/bft-labs/serialteleop/internal/adapters/log"
	serialAdapter "github.com/bft-labs/serialteleop/internal/adapters/serial"
	"github.com/bft-labs/serialteleop/internal/cliconfig"
	"github.com/bft-labs/serialteleop/plugins/tuningwatcher"
)

const helpDescription = `
Drive a two-wheeled robot from your keyboard over a serial link.

Each key sends one velocity command ("V,<left>,<right>") to the controller;
telemetry coming back is printed as "< line". Press h in a session for the
control list, a or Ctrl-C to quit.

Configure via file ($HOME/.serialteleop/config.toml), SERIALTELEOP_* env
variables, or flags. Flags win over env, env wins over the file.
`

var exampleUsage = strings.TrimSpace(`
  serialteleop --port /dev/ttyUSB0 --baud 115200
  serialteleop --speed-step 10 --watch-config
  serialteleop ports
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := logAdapter.NewConsoleLogger("info")

	root := &cobra.Command{
		Use:          "serialteleop",
		Short:        "Keyboard teleoperation for serial-connected robots",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			// Env overrides file; flags override env (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, closer := logAdapter.NewLogger(cfg.LogLevel, cfg.LogFile)
			defer closer.Close()
			log = logger
			log.Debug().Interface("config", cfg).Msg("configuration")

			opts := []serialteleop.Option{
				serialteleop.WithLogger(logAdapter.NewZerologAdapterWithLogger(logger)),
			}
			if cfg.WatchConfig {
				if haveFile {
					opts = append(opts, tuningwatcher.WithTuningWatcher(tuningwatcher.Config{
						Path:         cfgFile,
						PinBaseSpeed: cliconfig.OverridesFile(changed, "base-speed"),
						PinSpeedStep: cliconfig.OverridesFile(changed, "speed-step"),
					}))
				} else {
					log.Warn().Msg("--watch-config set but no config file found; tuning will not reload")
				}
			}

			return run(logger, sessionConfig(cfg), opts)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.serialteleop/config.toml)")
	root.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "serial device")
	root.Flags().IntVarP(&cfg.BaudRate, "baud", "b", cfg.BaudRate, "serial baud rate")
	root.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "serial read timeout")
	root.Flags().DurationVar(&cfg.SettleDelay, "settle-delay", cfg.SettleDelay, "wait after opening the port before driving")

	root.Flags().IntVar(&cfg.BaseSpeed, "base-speed", cfg.BaseSpeed, "starting speed, restored by x")
	root.Flags().IntVar(&cfg.SpeedStep, "speed-step", cfg.SpeedStep, "speed change per z/s press")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload base_speed/speed_step when the config file changes")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write JSON logs to this rotating file")

	// Timing knobs, rarely needed
	root.Flags().DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "keyboard polling interval")
	root.Flags().DurationVar(&cfg.ReaderIdle, "reader-idle", cfg.ReaderIdle, "reader pause when no telemetry is pending")
	root.Flags().DurationVar(&cfg.ReaderBackoff, "reader-backoff", cfg.ReaderBackoff, "first reader wait after a read error")
	root.Flags().DurationVar(&cfg.ReaderBackoffMax, "reader-backoff-max", cfg.ReaderBackoffMax, "longest reader wait after repeated errors")
	root.Flags().DurationVar(&cfg.JoinTimeout, "join-timeout", cfg.JoinTimeout, "how long shutdown waits for the reader")
	for _, name := range []string{"tick", "reader-idle", "reader-backoff", "reader-backoff-max", "join-timeout"} {
		if err := root.Flags().MarkHidden(name); err != nil {
			log.Info().Err(err).Str("flag", name).Msg("failed to hide flag")
		}
	}

	root.AddCommand(newPortsCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("serialteleop")
		os.Exit(1)
	}
}

// run drives one session until quit or signal. Only startup errors are returned.
func run(log zerolog.Logger, cfg serialteleop.Config, opts []serialteleop.Option) error {
	s, err := serialteleop.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("start session: %w", err)
	}

	if err := s.Run(ctx); err != nil {
		log.Error().Err(err).Msg("session")
	}
	if ctx.Err() != nil {
		log.Info().Msg("received signal, stopping...")
	}

	if err := s.Stop(); err != nil {
		log.Warn().Err(err).Msg("shutdown completed with errors")
	}
	return nil
}

func sessionConfig(c cliconfig.Config) serialteleop.Config {
	cfg := serialteleop.DefaultConfig()
	cfg.Port = c.Port
	cfg.BaudRate = c.BaudRate
	cfg.ReadTimeout = c.ReadTimeout
	cfg.SettleDelay = c.SettleDelay
	cfg.TickInterval = c.TickInterval
	cfg.ReaderIdle = c.ReaderIdle
	cfg.ReaderBackoff = c.ReaderBackoff
	cfg.ReaderBackoffMax = c.ReaderBackoffMax
	cfg.JoinTimeout = c.JoinTimeout
	cfg.BaseSpeed = c.BaseSpeed
	cfg.SpeedStep = c.SpeedStep
	return cfg
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports detected on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serialAdapter.ListPorts()
			if err != nil {
				return fmt.Errorf("list ports: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "no serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(out, p.String())
			}
			return nil
		},
	}
}
