package testsupport

import (
	"context"
	"testing"

	"hopper/internal/config"
	"hopper/internal/ledger"
)

// MustOpenLedger opens a ledger.Store for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordEntry appends a ledger entry for tests using the provided store.
func RecordEntry(t testing.TB, store *ledger.Store, entry ledger.Entry) *ledger.Entry {
	t.Helper()

	recorded, err := store.Record(context.Background(), entry)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return recorded
}
