package client

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// envLogger builds a logger from the IRRD_LOG_LEVEL and IRRD_DEBUG
// environment variables when the Config does not supply one. Returns nil
// when neither variable enables logging.
func envLogger() *slog.Logger {
	var level slog.Level
	envLevel := os.Getenv("IRRD_LOG_LEVEL")
	envDebug := os.Getenv("IRRD_DEBUG")

	switch {
	case envLevel != "":
		switch strings.ToLower(envLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			if envDebug == "" {
				return nil
			}
			level = slog.LevelDebug
		}
	case envDebug != "":
		level = slog.LevelDebug
	default:
		return nil
	}

	// Use the default logger if it is already configured for the level;
	// otherwise fall back to a minimal stderr handler for library
	// consumers without their own logging setup.
	if slog.Default().Enabled(context.Background(), level) {
		return slog.Default()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// nopIfNil returns a logger that discards everything when l is nil, so
// call sites do not need nil checks.
func nopIfNil(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
