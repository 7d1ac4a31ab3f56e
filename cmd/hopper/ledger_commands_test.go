package main

import (
	"path/filepath"
	"strings"
	"testing"

	"hopper/internal/ledger"
	"hopper/internal/testsupport"
)

func recordCompleted(t *testing.T, env *cliTestEnv, name string) {
	t.Helper()
	testsupport.RecordEntry(t, env.store, ledger.Entry{
		Path:     filepath.Join(env.cfg.Paths.WatchDir, name),
		Outcome:  ledger.OutcomeCompleted,
		Attempts: 1,
	})
}

func TestLedgerListShowsEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	recordCompleted(t, env, "report.txt")
	testsupport.RecordEntry(t, env.store, ledger.Entry{
		Path:     filepath.Join(env.cfg.Paths.WatchDir, "stuck.txt"),
		Outcome:  ledger.OutcomeAbandoned,
		Attempts: 3,
		Detail:   "file still locked",
	})

	out, _, err := runCLI(t, []string{"ledger", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	requireContains(t, out, "report.txt")
	requireContains(t, out, "Completed")
	requireContains(t, out, "stuck.txt")
	requireContains(t, out, "Abandoned")
	requireContains(t, out, "file still locked")
}

func TestLedgerListFiltersByOutcome(t *testing.T) {
	env := setupCLITestEnv(t)
	recordCompleted(t, env, "report.txt")
	testsupport.RecordEntry(t, env.store, ledger.Entry{
		Path:     filepath.Join(env.cfg.Paths.WatchDir, "broken.txt"),
		Outcome:  ledger.OutcomeFailed,
		Attempts: 1,
		Detail:   "handler exited 1",
	})

	out, _, err := runCLI(t, []string{"ledger", "list", "--outcome", "failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("ledger list --outcome failed: %v", err)
	}
	requireContains(t, out, "broken.txt")
	if strings.Contains(out, "report.txt") {
		t.Fatalf("expected filtered output to omit report.txt, got %q", out)
	}
}

func TestLedgerListRejectsUnknownOutcome(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"ledger", "list", "--outcome", "bogus"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown outcome")
	}
	requireContains(t, err.Error(), "unknown outcome")
}

func TestLedgerListFallsBackWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	recordCompleted(t, env, "offline.txt")

	bogusSocket := filepath.Join(t.TempDir(), "missing.sock")
	out, _, err := runCLI(t, []string{"ledger", "list"}, bogusSocket, env.configPath)
	if err != nil {
		t.Fatalf("ledger list offline: %v", err)
	}
	requireContains(t, out, "offline.txt")
}

func TestLedgerClearRemovesEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	recordCompleted(t, env, "report.txt")

	out, _, err := runCLI(t, []string{"ledger", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("ledger clear: %v", err)
	}
	requireContains(t, out, "Removed 1 ledger entries")

	out, _, err = runCLI(t, []string{"ledger", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	requireContains(t, out, "Ledger is empty")
}
