// Package logger provides structured logging for remotekit using zerolog.
//
// Adapters accept a *Logger and default to Nop, so the library stays silent
// unless the caller wires one in.
//
// # Usage
//
//	log := logger.NewDefault("remotekit").WithComponent("ssh")
//	log.Debug("spawning", logger.Fields(logger.FieldCommand, "ssh root@host"))
package logger
