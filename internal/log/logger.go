package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and stamps every record with a component field.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
}

// New creates a new logger with the given configuration.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return &Logger{
		Logger:    slog.New(handler),
		component: config.Component,
	}
}

// With returns a new logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a new logger scoped to a specific component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{FieldComponent, l.component}, args...)...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Logger.DebugContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

// SetDefault installs this logger as the process-wide slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
