package main

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStatusCommandShowsRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := env.daemon.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	defer env.daemon.Stop()

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "Running")
	requireContains(t, out, "Ledger is empty")
}

func TestStatusCommandOfflineFallsBackToLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	recordCompleted(t, env, "report.txt")

	bogusSocket := filepath.Join(t.TempDir(), "missing.sock")
	out, _, err := runCLI(t, []string{"status"}, bogusSocket, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "Completed")
}

func TestStopCommandWhenDaemonNotRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	bogusSocket := filepath.Join(t.TempDir(), "missing.sock")
	out, _, err := runCLI(t, []string{"stop"}, bogusSocket, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}
