package debuglog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"WARNING", LevelWarn},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"INVALID", LevelInfo},
		{"", LevelInfo},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ParseLogLevel(test.input), "input %q", test.input)
	}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, Close())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestSetupFiltersByLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, Setup(LevelInfo, logPath))
	assert.Equal(t, LevelInfo, GetLevel())

	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error message")

	content := readLog(t, logPath)
	assert.NotContains(t, content, "debug message")
	assert.Contains(t, content, "info message")
	assert.Contains(t, content, "warn message")
	assert.Contains(t, content, "error message")
	assert.Contains(t, content, "plx")
}

func TestSetupOffDisablesLogging(t *testing.T) {
	require.NoError(t, Setup(LevelOff))
	assert.Equal(t, LevelOff, GetLevel())

	// Must not panic without a logger.
	Debugf("debug message")
	Errorf("error message")
	WithFields(map[string]interface{}{"k": "v"}).Errorf("field message")
}

func TestFieldLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "field.log")
	require.NoError(t, Setup(LevelDebug, logPath))

	WithFields(map[string]interface{}{
		"component": "layout",
		"first":     3,
		"count":     42,
	}).Infof("window updated")

	content := readLog(t, logPath)
	assert.Contains(t, content, "window updated")
	assert.Contains(t, content, "component=layout")
	assert.Contains(t, content, "first=3")
	assert.Contains(t, content, "count=42")
}

func TestSetLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	require.NoError(t, Setup(LevelDebug, logPath))

	SetLevel(LevelError)
	assert.Equal(t, LevelError, GetLevel())
	Warnf("quiet warning")
	Errorf("loud error")

	content := readLog(t, logPath)
	assert.NotContains(t, content, "quiet warning")
	assert.Contains(t, content, "loud error")
}
