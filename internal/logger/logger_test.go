package logger

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	defaultLogger = nil
	once = sync.Once{}

	Init(level)
	var buf bytes.Buffer
	SetOutput(&buf)
	SetColorEnable(false)
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("Warning"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	buf := resetLogger(t, "warn")

	Debug("test debug message")
	Info("test info message")
	Warn("test warn message %d", 1)
	Error("test error message")

	out := buf.String()
	assert.NotContains(t, out, "test debug message")
	assert.NotContains(t, out, "test info message")
	assert.Contains(t, out, "test warn message 1")
	assert.Contains(t, out, "test error message")
	assert.NotContains(t, out, "\033[", "colors should be disabled")
}

func TestSetLevel(t *testing.T) {
	buf := resetLogger(t, "info")

	Debugf("hidden")
	SetLevel("debug")
	Debugf("shown %s", "now")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown now")
}

func TestWithField(t *testing.T) {
	buf := resetLogger(t, "info")

	WithField("source", "lcov.info").Info("parsed")
	assert.Contains(t, buf.String(), "source=lcov.info")
}
