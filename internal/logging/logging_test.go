package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Format: format, Output: &buf, Prefix: "test"})
	return l, &buf
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newTestLogger(LevelWarn, FormatText)

	l.Debug("debug message")
	l.Info("info message")
	assert.Empty(t, buf.String())

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")
	assert.Contains(t, buf.String(), "level=warning")
}

func TestLogger_FormatArgs(t *testing.T) {
	l, buf := newTestLogger(LevelDebug, FormatText)

	l.Info("attached %d handlers to %q", 3, "boot")

	assert.Contains(t, buf.String(), `attached 3 handlers to \"boot\"`)
}

func TestLogger_Fields(t *testing.T) {
	l, buf := newTestLogger(LevelDebug, FormatJSON)

	l.WithComponent("manager").
		WithFields(map[string]any{"event": "boot"}).
		WithError(errors.New("boom")).
		Info("triggered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "triggered", entry["msg"])
	assert.Equal(t, "manager", entry["component"])
	assert.Equal(t, "boot", entry["event"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "test", entry["app"])
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	l, buf := newTestLogger(LevelDebug, FormatJSON)

	_ = l.WithField("child", true)
	l.Info("parent")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "child")
}

func TestLogger_SetLevel(t *testing.T) {
	l, buf := newTestLogger(LevelError, FormatText)
	child := l.WithComponent("x")

	assert.False(t, child.Enabled(LevelDebug))
	l.SetLevel(LevelDebug)
	assert.True(t, child.Enabled(LevelDebug))

	child.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNop(t *testing.T) {
	l := Nop()

	assert.False(t, l.Enabled(LevelError))
	assert.NotPanics(t, func() {
		l.WithComponent("x").Error("discarded %s", "message")
	})
}
