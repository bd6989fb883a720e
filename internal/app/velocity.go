package app

import (
	"github.com/bft-labs/serialteleop/internal/domain"
	"github.com/bft-labs/serialteleop/internal/ports"
)

// Action reports what the session should do after a keystroke.
type Action int

const (
	ActionNone Action = iota
	ActionCommand
	ActionHelp
	ActionQuit
)

// String returns a human-readable representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCommand:
		return "command"
	case ActionHelp:
		return "help"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// VelocityController maps keystrokes to velocity commands.
// It owns the VelocityState and must only be used from the polling loop.
type VelocityController struct {
	channel  ports.SerialChannel
	logger   ports.Logger
	tuning   domain.Tuning
	state    domain.VelocityState
	helpText string
}

// NewVelocityController creates a controller starting at tuning.BaseSpeed.
// An empty helpText falls back to domain.DefaultHelpText.
func NewVelocityController(ch ports.SerialChannel, logger ports.Logger, tuning domain.Tuning, helpText string) *VelocityController {
	if helpText == "" {
		helpText = domain.DefaultHelpText
	}
	return &VelocityController{
		channel:  ch,
		logger:   logger,
		tuning:   tuning,
		state:    domain.NewVelocityState(tuning.BaseSpeed),
		helpText: helpText,
	}
}

// Handle applies one keystroke. The state is updated before the command is
// written and is kept even if the write fails.
func (c *VelocityController) Handle(key byte) Action {
	switch domain.Key(key) {
	case domain.KeyStop:
		var cmd domain.Command
		c.state, cmd = c.state.Stop(c.tuning)
		c.send(cmd)
	case domain.KeyFaster:
		var cmd domain.Command
		c.state, cmd = c.state.Accelerate(c.tuning.SpeedStep)
		c.send(cmd)
	case domain.KeySlower:
		var cmd domain.Command
		c.state, cmd = c.state.Accelerate(-c.tuning.SpeedStep)
		c.send(cmd)
	case domain.KeyLeft:
		c.send(c.state.TurnLeft())
	case domain.KeyRight:
		c.send(c.state.TurnRight())
	case domain.KeyHelp, domain.KeyHelpAlt:
		c.ShowHelp()
		return ActionHelp
	case domain.KeyQuit, domain.KeyInterrupt:
		return ActionQuit
	default:
		return ActionNone
	}
	return ActionCommand
}

// ShowHelp logs the control list.
func (c *VelocityController) ShowHelp() {
	c.logger.Info(c.helpText)
}

// ApplyTuning replaces base speed and step for subsequent keys.
// The current speed is left untouched.
func (c *VelocityController) ApplyTuning(t domain.Tuning) {
	if t == c.tuning {
		return
	}
	c.logger.Info("speed tuning updated",
		ports.Int("base_speed", t.BaseSpeed),
		ports.Int("speed_step", t.SpeedStep),
	)
	c.tuning = t
}

// State returns the current velocity state.
func (c *VelocityController) State() domain.VelocityState {
	return c.state
}

func (c *VelocityController) send(cmd domain.Command) {
	line := cmd.String()
	if err := c.channel.WriteLine(line); err != nil {
		c.logger.Error("serial write failed",
			ports.String("cmd", line),
			ports.Err(err),
		)
		return
	}
	c.logger.Info("> " + line)
}
