// Package logging builds the slog loggers used by the engine and the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Silent is above every standard level; a logger at this level writes
// nothing.
const Silent = slog.Level(100)

// NewLogger returns a logger writing one line per record to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(w, level))
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewHandler(io.Discard, Silent))
}

// LevelFromString maps debug, info, warn (or warning), and error to their
// slog levels, case-insensitively. Anything else is info.
func LevelFromString(s string) slog.Level {
	level, err := ParseLevel(s)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel is LevelFromString with an error for unknown names. An empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "none", "silent":
		return Silent, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}
