package domain

import "fmt"

// CommandPrefix starts every outbound velocity command.
const CommandPrefix = "V"

// Default tuning values.
const (
	DefaultBaseSpeed = 0
	DefaultSpeedStep = 5
)

// VelocityState is the commanded speed and the wheel values derived from it.
// Speed is deliberately unbounded.
type VelocityState struct {
	Speed int
	Left  int
	Right int
}

// NewVelocityState returns the state a session starts with.
func NewVelocityState(base int) VelocityState {
	return VelocityState{Speed: base, Left: base, Right: base}
}

// Command is a single differential-drive velocity command.
type Command struct {
	Left  int
	Right int
}

// String formats the command without the line terminator, e.g. "V,10,-10".
func (c Command) String() string {
	return fmt.Sprintf("%s,%d,%d", CommandPrefix, c.Left, c.Right)
}

// Tuning holds the speed parameters used by the velocity rules.
type Tuning struct {
	BaseSpeed int
	SpeedStep int
}

// DefaultTuning returns the stock tuning (base 0, step 5).
func DefaultTuning() Tuning {
	return Tuning{BaseSpeed: DefaultBaseSpeed, SpeedStep: DefaultSpeedStep}
}

// Stop resets speed to the base speed and both wheels to zero.
func (s VelocityState) Stop(t Tuning) (VelocityState, Command) {
	next := VelocityState{Speed: t.BaseSpeed}
	return next, Command{}
}

// Accelerate adds delta to the speed and drives both wheels at the new speed.
func (s VelocityState) Accelerate(delta int) (VelocityState, Command) {
	speed := s.Speed + delta
	next := VelocityState{Speed: speed, Left: speed, Right: speed}
	return next, Command{Left: speed, Right: speed}
}

// TurnLeft spins left at the current speed without changing the state.
func (s VelocityState) TurnLeft() Command {
	return Command{Left: -s.Speed, Right: s.Speed}
}

// TurnRight spins right at the current speed without changing the state.
func (s VelocityState) TurnRight() Command {
	return Command{Left: s.Speed, Right: -s.Speed}
}
