package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestTextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", FormatText, false)

	log.Debug("hidden")
	log.With("chart", "grafana").WithGroup("source").Info("updated targetRevision", "from", "8.5.1", "to", "8.6.0")
	log.Warn("could not resolve latest version", slog.Group("err", "kind", "timeout"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	// Drop the timestamp.
	first := lines[0][len("2006-01-02 15:04:05 "):]
	assert.Equal(t, "INFO  updated targetRevision chart=grafana source.from=8.5.1 source.to=8.6.0", first)
	second := lines[1][len("2006-01-02 15:04:05 "):]
	assert.Equal(t, "WARN  could not resolve latest version err.kind=timeout", second)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTextHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", FormatText, true).Error("patch failed", "path", "a.yaml")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "patch failed")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "JSON", true).Debug("resolved latest version", "chart", "grafana", "version", "8.6.0")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "resolved latest version", rec["msg"])
	assert.Equal(t, "grafana", rec["chart"])
}

func TestUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("LOG_COLOR", "")
	assert.True(t, UseColor())

	t.Setenv("LOG_COLOR", "false")
	assert.False(t, UseColor())

	t.Setenv("LOG_COLOR", "")
	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor())
}
