package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the shared structured logger. Init must run before use.
var Logger *slog.Logger

// Init configures the global JSON logger. The level comes from the
// LOG_LEVEL environment variable (debug, info, warn, error) and defaults
// to info.
func Init() {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(Logger)

	Logger.Debug("logger initialized", "level", level.String())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs at debug level with optional key/value pairs.
func Debug(msg string, args ...any) {
	if Logger != nil {
		Logger.Debug(msg, args...)
	}
}

// Info logs at info level with optional key/value pairs.
func Info(msg string, args ...any) {
	if Logger != nil {
		Logger.Info(msg, args...)
	}
}

// Warn logs at warn level with optional key/value pairs.
func Warn(msg string, args ...any) {
	if Logger != nil {
		Logger.Warn(msg, args...)
	}
}

// Error logs at error level with optional key/value pairs.
func Error(msg string, args ...any) {
	if Logger != nil {
		Logger.Error(msg, args...)
	}
}
