// Package logger holds the process-wide slog logger. Services log through
// the package-level helpers so call sites stay one line; request handlers
// use the *Context variants.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

var root *slog.Logger

// Initialize builds the shared logger from the config's log section and
// installs it as the slog default. Format "json" is for deployments that
// ship logs; anything else renders human-readable text for development.
func Initialize(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	root = slog.New(handler)
	slog.SetDefault(root)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// base returns the shared logger, initializing it with development defaults
// when a test or helper logs before main wired the config.
func base() *slog.Logger {
	if root == nil {
		Initialize("info", "text")
	}
	return root
}

func Debug(msg string, args ...any) { base().Debug(msg, args...) }
func Info(msg string, args ...any)  { base().Info(msg, args...) }
func Warn(msg string, args ...any)  { base().Warn(msg, args...) }
func Error(msg string, args ...any) { base().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	base().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	base().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	base().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	base().ErrorContext(ctx, msg, args...)
}
