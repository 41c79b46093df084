package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
)

// Acquire implements service.Locker. It fails with common.ErrLocked while another owner
// holds resource, unless that lock is older than the stale-lock age.
func (s *SQLiteStorage) Acquire(ctx context.Context, resource, owner string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(resource, "resource"); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if holder, ok := s.held[resource]; ok && holder != owner {
		return fmt.Errorf("%w: %s held by %s", common.ErrLocked, resource, holder)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	var (
		holder   string
		acquired time.Time
	)
	err = tx.QueryRowContext(ctx, `SELECT owner, acquired_at FROM run_locks WHERE resource = ?`, resource).Scan(&holder, &acquired)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `INSERT INTO run_locks (resource, owner, acquired_at) VALUES (?, ?, ?)`, resource, owner, now)
	case err != nil:
		return fmt.Errorf("failed to read run lock: %w", err)
	case holder != owner && now.Sub(acquired) < s.staleLock:
		return fmt.Errorf("%w: %s held by %s since %s", common.ErrLocked, resource, holder, acquired.Format(time.RFC3339))
	default:
		if holder != owner {
			slog.Warn("Taking over stale run lock", "resource", resource, "previous_owner", holder, "acquired_at", acquired)
		}
		_, err = tx.ExecContext(ctx, `UPDATE run_locks SET owner = ?, acquired_at = ? WHERE resource = ?`, owner, now, resource)
	}
	if err != nil {
		return fmt.Errorf("failed to write run lock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run lock: %w", err)
	}
	s.held[resource] = owner
	return nil
}

// Release implements service.Locker. Releasing a lock held by someone else is a no-op.
func (s *SQLiteStorage) Release(ctx context.Context, resource, owner string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held[resource] == owner {
		delete(s.held, resource)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_locks WHERE resource = ? AND owner = ?`, resource, owner); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
