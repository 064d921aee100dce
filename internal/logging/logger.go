// Package logging defines the structured-logging interface used across the
// back-office. Implementations wrap slog or zap.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "record updated", "entity", "blog", "id", id)
type Logger interface {
	// Debug logs diagnostic detail that is off in production.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// New builds the process logger for the given format: "text" writes slog
// text records to stdout, anything else uses zap's production JSON encoder.
func New(format string) (Logger, error) {
	if format == "text" {
		return NewTextSlogLogger(), nil
	}
	return NewProductionZapLogger()
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() Logger {
	return NewZapLogger(zapNop())
}
