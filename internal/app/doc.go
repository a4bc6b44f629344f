// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle that wires the channel,
// the explorer pool and headquarters together, decoupled from any specific
// entrypoint like a CLI.
package app
