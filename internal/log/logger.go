// Package log provides a thin slog wrapper that tags every record with the
// emitting component.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Field names shared across components.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldExpenseID = "expense_id"
)

// Logger wraps slog.Logger with a fixed component attribute.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger construction options.
type Config struct {
	Level   slog.Level
	Output  io.Writer
	Handler slog.Handler // overrides Level/Output when set
}

// New creates a logger for the given component. Output defaults to stderr so
// log lines never interleave with rendered tables on stdout.
func New(component string, cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level})
	}
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// WithComponent returns a logger that reports a different component while
// sharing the underlying handler.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// Discard returns a logger that drops everything. Used as the default in
// packages where logging is optional.
func Discard() *Logger {
	return &Logger{
		Logger:    slog.New(slog.DiscardHandler),
		component: "discard",
	}
}
