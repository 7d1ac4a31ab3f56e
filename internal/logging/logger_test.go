package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger = logger.With(String(FieldComponent, "worker"))
	logger.Info("file ingested", String(FieldPath, "/watch/a.txt"), Int(FieldAttempt, 2))

	line := buf.String()
	if !strings.Contains(line, "INFO worker: file ingested") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "path=/watch/a.txt") {
		t.Fatalf("missing path attr: %q", line)
	}
	if !strings.Contains(line, "attempt=2") {
		t.Fatalf("missing attempt attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Warn("probe failed", Error(errors.New("sharing violation on open")))

	if !strings.Contains(buf.String(), `error="sharing violation on open"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}

	logger.Error("should appear")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Fatalf("expected error output, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Info("dropped")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
