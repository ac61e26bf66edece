package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelToCharmlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected int
	}{
		{DebugLevel, -4},
		{InfoLevel, 0},
		{WarnLevel, 4},
		{ErrorLevel, 8},
		{DisabledLevel, 1000},
		{LogLevel("unknown"), 0},
	}

	for _, tc := range tests {
		if got := int(tc.level.ToCharmlogLevel()); got != tc.expected {
			t.Errorf("LogLevel %s: got %d, want %d", tc.level, got, tc.expected)
		}
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})

	log.Info("document written", "id", "doc-1")
	log.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "document written") || !strings.Contains(out, "doc-1") {
		t.Errorf("Expected message and keyvals, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("Debug message should be filtered at info level")
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true})

	log.Warn("rotated", "file", "entities_00000001.xml")

	out := buf.String()
	if !strings.Contains(out, `"msg":"rotated"`) {
		t.Errorf("Expected JSON message field, got %q", out)
	}
	if !strings.Contains(out, `"file":"entities_00000001.xml"`) {
		t.Errorf("Expected JSON keyval, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing happens")
}
