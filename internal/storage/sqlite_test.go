package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.True(t, errors.Is(err, ErrEmptyString))
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	for _, table := range []string{"run_log", "run_audit", "run_locks"} {
		var n int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestInMemoryStorage(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.AppendAudit(ctx, service.AuditRecord{RunID: "RUN-1", MonthLabel: "אוגוסט 2024", Outcome: "הצלחה"}))

	records, err := store.ListAudits(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestJournal_Logs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendLog(ctx, []service.LogEntry{
		{RunID: "RUN-a", Timestamp: base, Level: "INFO", Message: "start"},
		{RunID: "RUN-a", Timestamp: base.Add(time.Second), Level: "SUCCESS", Message: "done", Data: map[string]any{"inserted": 3}},
		{RunID: "RUN-b", Timestamp: base.Add(time.Minute), Level: "ERROR", Message: "boom"},
	}))
	require.NoError(t, store.AppendLog(ctx, nil))

	t.Run("by run", func(t *testing.T) {
		entries, err := store.ListLogs(ctx, "RUN-a", 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "start", entries[0].Message)
		assert.True(t, base.Equal(entries[0].Timestamp))
		assert.Nil(t, entries[0].Data)
		assert.Equal(t, float64(3), entries[1].Data["inserted"])
	})

	t.Run("latest across runs", func(t *testing.T) {
		entries, err := store.ListLogs(ctx, "", 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "done", entries[0].Message)
		assert.Equal(t, "boom", entries[1].Message)
	})
}

func TestJournal_Audits(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.AppendAudit(ctx, service.AuditRecord{RunID: "RUN-1", Timestamp: time.Now(), MonthLabel: "יולי 2024", Outcome: "הצלחה"}))
	require.NoError(t, store.AppendAudit(ctx, service.AuditRecord{RunID: "RUN-2", Timestamp: time.Now(), MonthLabel: "אוגוסט 2024", Outcome: "שגיאה", Detail: "missing sheet"}))

	err := store.AppendAudit(ctx, service.AuditRecord{})
	assert.True(t, errors.Is(err, ErrEmptyString))

	records, err := store.ListAudits(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "RUN-2", records[0].RunID)
	assert.Equal(t, "missing sheet", records[0].Detail)
	assert.Equal(t, "", records[1].Detail)
}

func TestLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("exclusive until released", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		require.NoError(t, store.Acquire(ctx, "ledger", "RUN-1"))
		require.NoError(t, store.Acquire(ctx, "ledger", "RUN-1"), "re-entrant for the same owner")

		err := store.Acquire(ctx, "ledger", "RUN-2")
		assert.True(t, errors.Is(err, common.ErrLocked))

		require.NoError(t, store.Acquire(ctx, "other", "RUN-2"))

		require.NoError(t, store.Release(ctx, "ledger", "RUN-2"), "foreign release is a no-op")
		assert.True(t, errors.Is(store.Acquire(ctx, "ledger", "RUN-2"), common.ErrLocked))

		require.NoError(t, store.Release(ctx, "ledger", "RUN-1"))
		require.NoError(t, store.Acquire(ctx, "ledger", "RUN-2"))
	})

	t.Run("stale lock from another process is taken over", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		store.SetStaleLock(10 * time.Minute)

		past := time.Now().Add(-time.Hour)
		_, err := store.db.Exec(`INSERT INTO run_locks (resource, owner, acquired_at) VALUES (?, ?, ?)`, "ledger", "RUN-dead", past)
		require.NoError(t, err)

		require.NoError(t, store.Acquire(ctx, "ledger", "RUN-new"))

		var owner string
		require.NoError(t, store.db.QueryRow(`SELECT owner FROM run_locks WHERE resource = ?`, "ledger").Scan(&owner))
		assert.Equal(t, "RUN-new", owner)
	})

	t.Run("fresh lock from another process blocks", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.db.Exec(`INSERT INTO run_locks (resource, owner, acquired_at) VALUES (?, ?, ?)`, "ledger", "RUN-live", time.Now())
		require.NoError(t, err)

		err = store.Acquire(ctx, "ledger", "RUN-new")
		assert.True(t, errors.Is(err, common.ErrLocked))
	})
}
