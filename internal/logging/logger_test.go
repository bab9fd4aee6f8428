package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "nil config uses defaults", config: nil},
		{name: "explicit debug level", config: &Config{Level: LevelDebug, Output: &bytes.Buffer{}}},
		{name: "explicit trace level", config: &Config{Level: LevelTrace, Output: &bytes.Buffer{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)
			if logger == nil {
				t.Fatal("NewLogger() returned nil")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Trace("should not appear")
	logger.Debug("should not appear")
	logger.Info("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}

	logger.Warn("visible warning")
	if !strings.Contains(buf.String(), "visible warning") {
		t.Fatalf("expected warning to be logged, got %q", buf.String())
	}

	buf.Reset()
	logger.Error("visible error")
	if !strings.Contains(buf.String(), "[ERROR]") {
		t.Fatalf("expected [ERROR] prefix, got %q", buf.String())
	}
}

func TestLogger_FormatArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelTrace, Output: &buf})

	logger.Info("coroutine event", "id", 3, "status", "SUSPEND")
	out := buf.String()
	if !strings.Contains(out, "id=3") || !strings.Contains(out, "status=SUSPEND") {
		t.Fatalf("expected key=value pairs in output, got %q", out)
	}
}

func TestDefaultAndSetDefault(t *testing.T) {
	var buf bytes.Buffer
	custom := NewLogger(&Config{Level: LevelTrace, Output: &buf})
	SetDefault(custom)
	defer SetDefault(NewLogger(nil))

	Info("via package function")
	if !strings.Contains(buf.String(), "via package function") {
		t.Fatalf("expected package-level Info to use the default logger, got %q", buf.String())
	}
}

func TestLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelTrace, Output: &buf})
	logger.Printf("timer %d fired after %dms", 7, 50)
	if !strings.Contains(buf.String(), "timer 7 fired after 50ms") {
		t.Fatalf("expected formatted message, got %q", buf.String())
	}
}
