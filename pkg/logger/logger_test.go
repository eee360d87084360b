package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, config Config) *bytes.Buffer {
	t.Helper()
	require.NoError(t, Initialize(config))
	var buf bytes.Buffer
	SetOutput(&buf)
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"ERROR", ErrorLevel},
		{" info ", InfoLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, Config{Level: WarnLevel, Component: "agentmd"})

	Debug("not shown")
	Info("not shown either")
	Warn("shown")
	Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "also shown")
}

func TestJSONOutput(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel, JSON: true, Component: "agentmd"})

	Info("scaffold complete", Int("files", 7), Bool("forced", false))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "scaffold complete", entry.Message)
	assert.Equal(t, "agentmd", entry.Component)
	assert.Equal(t, float64(7), entry.Fields["files"])
	assert.Equal(t, false, entry.Fields["forced"])
}

func TestPrettyOutput(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel, Component: "agentmd"})

	Warn("move failed", String("from", "agents/tools"), Err(errors.New("permission denied")))

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "agentmd:")
	assert.Contains(t, out, "move failed")
	assert.Contains(t, out, "from=agents/tools")
	assert.Contains(t, out, "error=permission denied")
	assert.NotContains(t, out, "\033[")
}

func TestColorOutput(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel, UseColor: true})
	Error("boom")
	assert.Contains(t, buf.String(), "\033[31mERROR\033[0m")
}

func TestDryRunMarker(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel, DryRun: true})
	Info("would create AGENTS.md")
	assert.Contains(t, buf.String(), "[DRY-RUN]")
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 3}, Int("n", 3))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "error", Value: "x"}, Err(errors.New("x")))
}

func TestUninitializedLoggerDoesNotPanic(t *testing.T) {
	saved := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = saved }()

	assert.NotPanics(t, func() {
		Debug("d")
		Warn("w")
		Error("e")
	})
}

func TestTimestampPrefix(t *testing.T) {
	buf := capture(t, Config{Level: InfoLevel})
	Info("hello")
	line := strings.TrimSpace(buf.String())
	// "2006-01-02 15:04:05" prefix
	require.GreaterOrEqual(t, len(line), 19)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`, line)
}
