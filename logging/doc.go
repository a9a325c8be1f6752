// Package logging provides a minimal logging interface and adapters for agenthub.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the routing pipeline, handlers and capabilities use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NewLogger building a JSON or text slog logger from LoggerConfig
//   - With for attaching tenant / agent attributes to every entry
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json"})
//	hub, err := agenthub.New(func(o *agenthub.Options) { o.Logger = logger })
//
// Event names are dotted (capability.created, supervisor.route.classified).
// Credentials are never passed to a logger.
package logging
