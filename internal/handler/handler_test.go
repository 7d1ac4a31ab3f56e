package handler_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"hopper/internal/handler"
	"hopper/internal/logging"
)

func nopLogger() *slog.Logger {
	return logging.NewNop()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCopyHandlerArchivesFile(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "archive")

	h, err := handler.NewCopyHandler(dest, nopLogger())
	if err != nil {
		t.Fatalf("NewCopyHandler: %v", err)
	}

	path := writeFile(t, src, "report.txt", "payload")
	if err := h.Process(context.Background(), path); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "report.txt"))
	if err != nil {
		t.Fatalf("read archived copy: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("archived content = %q, want %q", got, "payload")
	}
}

func TestCopyHandlerDoesNotOverwriteExisting(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	writeFile(t, dest, "report.txt", "first")

	h, err := handler.NewCopyHandler(dest, nopLogger())
	if err != nil {
		t.Fatalf("NewCopyHandler: %v", err)
	}
	path := writeFile(t, src, "report.txt", "second")
	if err := h.Process(context.Background(), path); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "report.txt"))
	if err != nil {
		t.Fatalf("read original: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("original overwritten: %q", got)
	}
	suffixed, err := os.ReadFile(filepath.Join(dest, "report.1.txt"))
	if err != nil {
		t.Fatalf("read suffixed copy: %v", err)
	}
	if string(suffixed) != "second" {
		t.Fatalf("suffixed content = %q, want %q", suffixed, "second")
	}
}

func TestCopyHandlerRequiresDestination(t *testing.T) {
	if _, err := handler.NewCopyHandler("", nopLogger()); err == nil {
		t.Fatal("expected error for empty destination")
	}
}

func TestCommandHandlerRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	h, err := handler.NewCommandHandler([]string{"sh", "-c", `cp "$0" ` + marker}, nopLogger())
	if err != nil {
		t.Fatalf("NewCommandHandler: %v", err)
	}

	path := writeFile(t, dir, "input.txt", "data")
	if err := h.Process(context.Background(), path); err != nil {
		t.Fatalf("Process: %v", err)
	}
	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("command did not run: %v", err)
	}
	if string(got) != "data" {
		t.Fatalf("marker content = %q, want %q", got, "data")
	}
}

func TestCommandHandlerReportsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	h, err := handler.NewCommandHandler([]string{"sh", "-c", "echo boom >&2; exit 3"}, nopLogger())
	if err != nil {
		t.Fatalf("NewCommandHandler: %v", err)
	}

	path := writeFile(t, t.TempDir(), "input.txt", "data")
	err = h.Process(context.Background(), path)
	if err == nil {
		t.Fatal("expected failure from non-zero exit")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error should carry stderr, got %v", err)
	}
}

func TestCommandHandlerRequiresCommand(t *testing.T) {
	if _, err := handler.NewCommandHandler(nil, nopLogger()); err == nil {
		t.Fatal("expected error for empty command")
	}
}
