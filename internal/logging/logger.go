// Package logging provides the shared logging interface for the gateway.
// Components receive a Logger and namespace themselves with a component
// field rather than importing a concrete logging backend directly.
package logging

// Logger is the logging interface used throughout the application.
// Arguments follow the slog convention of alternating key/value pairs.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, args ...any)

	// Info logs an info-level message.
	Info(msg string, args ...any)

	// Warn logs a warning-level message.
	Warn(msg string, args ...any)

	// Error logs an error-level message.
	Error(msg string, args ...any)

	// WithField returns a logger that attaches key=value to every record.
	WithField(key string, value any) Logger
}

// NoopLogger implements Logger and discards everything. It is the
// fallback used when a component is constructed without a logger.
type NoopLogger struct{}

// Debug implements Logger and performs no action.
func (l *NoopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger and performs no action.
func (l *NoopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger and performs no action.
func (l *NoopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger and performs no action.
func (l *NoopLogger) Error(_ string, _ ...any) {}

// WithField implements Logger, returning the NoopLogger itself.
func (l *NoopLogger) WithField(_ string, _ any) Logger { return l }

var noop = &NoopLogger{}

// GetNoopLogger returns the shared no-op logger instance.
func GetNoopLogger() Logger {
	return noop
}
