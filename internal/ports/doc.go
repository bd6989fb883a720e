// Package ports defines the interfaces (ports) that connect the session core
// to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the session needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [SerialChannel]: line-oriented duplex link to the robot controller
//   - [KeySource]: raw-mode keyboard input with guaranteed restore
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with
// go.bug.st/serial, golang.org/x/term and zerolog.
package ports
