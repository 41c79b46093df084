// Package testutil provides fixtures shared by the ledger tests: a migrated in-memory
// journal and a fluent builder for source workbooks.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/lessons-ledger/internal/storage"
)

// SetupJournal creates a migrated in-memory journal that is closed when the test ends.
func SetupJournal(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	journal, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test journal: %v", err)
	}
	if err := journal.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = journal.Close()
	})
	return journal
}
