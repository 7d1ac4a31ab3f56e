package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hopper/internal/config"
	"hopper/internal/daemon"
	"hopper/internal/handler"
	"hopper/internal/ingest"
	"hopper/internal/ipc"
	"hopper/internal/ledger"
	"hopper/internal/logging"
	"hopper/internal/stability"
	"hopper/internal/testsupport"
	"hopper/internal/watcher"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *ledger.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	logPath    string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	logPath := filepath.Join(cfg.Paths.LogDir, "hopper.log")
	if err := os.WriteFile(logPath, nil, 0o644); err != nil {
		t.Fatalf("create log file: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "hopper", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenLedger(t, cfg)

	logger := logging.NewNop()
	archiver, err := handler.NewCopyHandler(cfg.Paths.ArchiveDir, logger)
	if err != nil {
		t.Fatalf("handler.NewCopyHandler: %v", err)
	}
	worker, err := ingest.NewWorker(ingest.WorkerConfig{
		Queue:       ingest.NewQueue(),
		Prober:      stability.FlockProber{},
		Handler:     archiver,
		MaxAttempts: cfg.Stability.MaxAttempts,
		RetryDelay:  cfg.RetryDelay(),
		Logger:      logger,
		Reporter:    daemon.NewReporter(store, nil, logger),
	})
	if err != nil {
		t.Fatalf("ingest.NewWorker: %v", err)
	}
	w, err := watcher.New(watcher.Config{
		Dir:     cfg.Paths.WatchDir,
		Pattern: cfg.Watch.Pattern,
		Logger:  logger,
	}, worker)
	if err != nil {
		t.Fatalf("watcher.New: %v", err)
	}

	d, err := daemon.New(cfg, store, logger, worker, w)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		logPath:    logPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nwatch_dir = %q\narchive_dir = %q\nlog_dir = %q\n\n[stability]\nmax_attempts = %d\nretry_delay_ms = %d\n",
		cfg.Paths.WatchDir,
		cfg.Paths.ArchiveDir,
		cfg.Paths.LogDir,
		cfg.Stability.MaxAttempts,
		cfg.Stability.RetryDelayMS,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
