package logging

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	h := NewHandler(buf, level)
	h.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	return slog.New(h)
}

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf, slog.LevelInfo)

	logger.Info("analyzed archive", "archive", "a.jar", "issues", 2, "took", 1500*time.Millisecond)
	assert.Equal(t, "2026-01-02T15:04:05Z [info] analyzed archive | archive=a.jar issues=2 took=1.5s\n", buf.String())
}

func TestHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer
	fixedLogger(&buf, slog.LevelDebug).Warn("no classes")
	assert.Equal(t, "2026-01-02T15:04:05Z [warn] no classes\n", buf.String())
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf, slog.LevelWarn)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Error("shown")
	assert.Equal(t, "2026-01-02T15:04:05Z [error] shown\n", buf.String())
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf, slog.LevelDebug).With("run", "r1").WithGroup("cp")
	logger.Debug("assembled", "archives", 3)
	assert.Equal(t, "2026-01-02T15:04:05Z [debug] assembled | run=r1 cp.archives=3\n", buf.String())
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"off", Silent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, slog.LevelInfo, LevelFromString("verbose"))
	assert.Equal(t, slog.LevelDebug, LevelFromString("debug"))
}
