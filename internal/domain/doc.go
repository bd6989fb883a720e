// Package domain contains the core value types for serialteleop.
//
// This package has no dependencies on infrastructure concerns (serial ports,
// terminals, logging) and contains only the velocity rules of the bridge.
//
// # Types
//
//   - [VelocityState]: commanded speed plus the left/right wheel values last sent
//   - [Command]: a single `V,<left>,<right>` velocity command
//   - [Tuning]: base speed and per-key speed step
//   - [Key]: a single keystroke from the control surface
//
// # Design Principles
//
// Domain values are:
//   - Plain structs copied by value
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
