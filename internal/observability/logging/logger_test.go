package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		if got := parseLevel(raw); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestTextLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "file_id", "f-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message must be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "file_id=f-1") {
		t.Fatalf("unexpected output: %s", out)
	}
}
