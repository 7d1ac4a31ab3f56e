package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hopper/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWatch := filepath.Join(tempHome, ".local", "share", "hopper", "incoming")
	if cfg.Paths.WatchDir != wantWatch {
		t.Fatalf("unexpected watch dir: got %q want %q", cfg.Paths.WatchDir, wantWatch)
	}
	if cfg.Watch.Pattern != "*.txt" {
		t.Fatalf("unexpected default pattern: %q", cfg.Watch.Pattern)
	}
	if cfg.Watch.Recursive {
		t.Fatal("expected recursive watch disabled by default")
	}
	if cfg.Stability.MaxAttempts != 5 {
		t.Fatalf("unexpected default max attempts: %d", cfg.Stability.MaxAttempts)
	}
	if cfg.RetryDelay() != 5*time.Second {
		t.Fatalf("unexpected default retry delay: %s", cfg.RetryDelay())
	}
	if cfg.Processing.Mode != config.ProcessingModeCopy {
		t.Fatalf("unexpected default processing mode: %q", cfg.Processing.Mode)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hopper.toml")
	content := `
[paths]
watch_dir = "` + filepath.Join(dir, "in") + `"
archive_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[watch]
pattern = "*.csv"
recursive = true

[stability]
max_attempts = 3
retry_delay_ms = 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be found, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Watch.Pattern != "*.csv" {
		t.Fatalf("unexpected pattern: %q", cfg.Watch.Pattern)
	}
	if !cfg.Watch.Recursive {
		t.Fatal("expected recursive watch enabled")
	}
	if cfg.Stability.MaxAttempts != 3 {
		t.Fatalf("unexpected max attempts: %d", cfg.Stability.MaxAttempts)
	}
	if cfg.RetryDelay() != 50*time.Millisecond {
		t.Fatalf("unexpected retry delay: %s", cfg.RetryDelay())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero attempts", func(c *config.Config) { c.Stability.MaxAttempts = 0 }},
		{"negative delay", func(c *config.Config) { c.Stability.RetryDelayMS = -1 }},
		{"bad pattern", func(c *config.Config) { c.Watch.Pattern = "[" }},
		{"unknown mode", func(c *config.Config) { c.Processing.Mode = "stream" }},
		{"command mode without command", func(c *config.Config) {
			c.Processing.Mode = config.ProcessingModeCommand
			c.Processing.Command = nil
		}},
		{"archive equals watch", func(c *config.Config) { c.Paths.ArchiveDir = c.Paths.WatchDir }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.WatchDir = "/tmp/hopper-in"
			cfg.Paths.ArchiveDir = "/tmp/hopper-out"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}
