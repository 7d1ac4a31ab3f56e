package ledger_test

import (
	"context"
	"fmt"
	"testing"

	"hopper/internal/ledger"
	"hopper/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	ctx := context.Background()
	entry, err := store.Record(ctx, ledger.Entry{
		Path:     "/incoming/report.txt",
		Outcome:  ledger.OutcomeCompleted,
		Attempts: 1,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected entry ID to be assigned")
	}
	if entry.CreatedAt == "" {
		t.Fatal("expected created_at to be populated")
	}

	entries, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/incoming/report.txt" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
}

func TestRecordValidatesInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	ctx := context.Background()
	if _, err := store.Record(ctx, ledger.Entry{Outcome: ledger.OutcomeCompleted}); err == nil {
		t.Fatal("expected error when path missing")
	}
	if _, err := store.Record(ctx, ledger.Entry{Path: "/x", Outcome: "vanished"}); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestListFiltersAndLimits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	outcomes := []ledger.Outcome{
		ledger.OutcomeCompleted,
		ledger.OutcomeAbandoned,
		ledger.OutcomeCompleted,
		ledger.OutcomeFailed,
	}
	for i, outcome := range outcomes {
		testsupport.RecordEntry(t, store, ledger.Entry{
			Path:     fmt.Sprintf("/incoming/file-%d.txt", i),
			Outcome:  outcome,
			Attempts: 1,
		})
	}

	ctx := context.Background()
	completed, err := store.List(ctx, ledger.OutcomeCompleted, 0)
	if err != nil {
		t.Fatalf("List completed: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed entries, got %d", len(completed))
	}
	if completed[0].Path != "/incoming/file-2.txt" {
		t.Fatalf("expected newest entry first, got %s", completed[0].Path)
	}

	limited, err := store.List(ctx, "", 3)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(limited))
	}

	if _, err := store.List(ctx, "vanished", 0); err == nil {
		t.Fatal("expected error for unknown outcome filter")
	}
}

func TestStatsGroupsByOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	for i := 0; i < 3; i++ {
		testsupport.RecordEntry(t, store, ledger.Entry{
			Path:    fmt.Sprintf("/incoming/done-%d.txt", i),
			Outcome: ledger.OutcomeCompleted,
		})
	}
	testsupport.RecordEntry(t, store, ledger.Entry{
		Path:    "/incoming/stuck.txt",
		Outcome: ledger.OutcomeAbandoned,
	})

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[ledger.OutcomeCompleted] != 3 {
		t.Fatalf("completed count = %d, want 3", stats[ledger.OutcomeCompleted])
	}
	if stats[ledger.OutcomeAbandoned] != 1 {
		t.Fatalf("abandoned count = %d, want 1", stats[ledger.OutcomeAbandoned])
	}
	if stats[ledger.OutcomeFailed] != 0 {
		t.Fatalf("failed count = %d, want 0", stats[ledger.OutcomeFailed])
	}
}

func TestClearRemovesEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	for i := 0; i < 2; i++ {
		testsupport.RecordEntry(t, store, ledger.Entry{
			Path:    fmt.Sprintf("/incoming/file-%d.txt", i),
			Outcome: ledger.OutcomeFailed,
			Detail:  "handler exited 1",
		})
	}

	ctx := context.Background()
	deleted, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}

	entries, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	testsupport.RecordEntry(t, first, ledger.Entry{
		Path:    "/incoming/keep.txt",
		Outcome: ledger.OutcomeCompleted,
	})
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenLedger(t, cfg)
	entries, err := second.List(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/incoming/keep.txt" {
		t.Fatalf("unexpected entries after reopen: %#v", entries)
	}
}
