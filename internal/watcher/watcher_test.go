package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hopper/internal/watcher"
)

type collectingSink struct {
	mu    sync.Mutex
	paths []string
}

func (s *collectingSink) Ingest(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
}

func (s *collectingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

func (s *collectingSink) waitFor(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, got := range s.snapshot() {
			if got == path {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("path %s never ingested; have %v", path, s.snapshot())
}

func startWatcher(t *testing.T, cfg watcher.Config, sink watcher.Sink) *watcher.Watcher {
	t.Helper()
	w, err := watcher.New(cfg, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherIngestsMatchingCreations(t *testing.T) {
	dir := t.TempDir()
	sink := &collectingSink{}
	startWatcher(t, watcher.Config{Dir: dir, Pattern: "*.txt"}, sink)

	match := filepath.Join(dir, "drop.txt")
	if err := os.WriteFile(match, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sink.waitFor(t, match)
}

func TestWatcherFiltersNonMatchingNames(t *testing.T) {
	dir := t.TempDir()
	sink := &collectingSink{}
	startWatcher(t, watcher.Config{Dir: dir, Pattern: "*.txt"}, sink)

	other := filepath.Join(dir, "skip.tmp")
	match := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(match, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sink.waitFor(t, match)
	for _, got := range sink.snapshot() {
		if got == other {
			t.Fatalf("non-matching file was ingested: %v", sink.snapshot())
		}
	}
}

func TestWatcherIngestsRenamedInFiles(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	sink := &collectingSink{}
	startWatcher(t, watcher.Config{Dir: dir, Pattern: "*.txt"}, sink)

	staged := filepath.Join(outside, "staged.txt")
	if err := os.WriteFile(staged, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	final := filepath.Join(dir, "staged.txt")
	if err := os.Rename(staged, final); err != nil {
		t.Fatalf("rename: %v", err)
	}
	sink.waitFor(t, final)
}

func TestWatcherScanOnStartFindsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	preexisting := filepath.Join(dir, "already-there.txt")
	if err := os.WriteFile(preexisting, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sink := &collectingSink{}
	startWatcher(t, watcher.Config{Dir: dir, Pattern: "*.txt", ScanOnStart: true}, sink)
	sink.waitFor(t, preexisting)
}

func TestWatcherRecursivePicksUpNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sink := &collectingSink{}
	startWatcher(t, watcher.Config{Dir: dir, Pattern: "*.txt", Recursive: true}, sink)

	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the loop a moment to register the new directory watch.
	time.Sleep(50 * time.Millisecond)

	inner := filepath.Join(sub, "deep.txt")
	if err := os.WriteFile(inner, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sink.waitFor(t, inner)
}

func TestWatcherStartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	sink := &collectingSink{}
	w, err := watcher.New(watcher.Config{Dir: dir, Pattern: "*.txt"}, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second Start must be a no-op, got %v", err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcherRejectsBadPattern(t *testing.T) {
	if _, err := watcher.New(watcher.Config{Dir: t.TempDir(), Pattern: "["}, &collectingSink{}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestWatcherIgnoresMatchingDirectories(t *testing.T) {
	dir := t.TempDir()
	sink := &collectingSink{}
	startWatcher(t, watcher.Config{Dir: dir, Pattern: "*.txt"}, sink)

	// A directory whose name matches the pattern must not be ingested.
	decoy := filepath.Join(dir, "folder.txt")
	if err := os.Mkdir(decoy, 0o755); err != nil {
		t.Fatalf("mkdir decoy: %v", err)
	}
	match := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(match, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sink.waitFor(t, match)
	for _, got := range sink.snapshot() {
		if got == decoy {
			t.Fatalf("directory %s was ingested", decoy)
		}
	}
}
