package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Veraticus/lessons-ledger/internal/service"
)

// AppendLog implements service.Journal. All entries are written in one transaction.
func (s *SQLiteStorage) AppendLog(ctx context.Context, entries []service.LogEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for i, e := range entries {
		if err := validateEntry(i, e); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_log (run_id, ts, level, message, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		var data sql.NullString
		if len(e.Data) > 0 {
			raw, marshalErr := json.Marshal(e.Data)
			if marshalErr != nil {
				return fmt.Errorf("failed to encode log data: %w", marshalErr)
			}
			data = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, e.RunID, e.Timestamp, e.Level, e.Message, data); err != nil {
			return fmt.Errorf("failed to insert log entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit log entries: %w", err)
	}
	return nil
}

// AppendAudit implements service.Journal.
func (s *SQLiteStorage) AppendAudit(ctx context.Context, record service.AuditRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(record.RunID, "runID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_audit (run_id, ts, month_label, outcome, detail) VALUES (?, ?, ?, ?, ?)`,
		record.RunID, record.Timestamp, record.MonthLabel, record.Outcome, record.Detail)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// ListLogs returns the log entries of one run in insertion order, or the latest limit
// entries across runs when runID is empty. A non-positive limit means no limit.
func (s *SQLiteStorage) ListLogs(ctx context.Context, runID string, limit int) ([]service.LogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT run_id, ts, level, message, data FROM run_log`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []service.LogEntry
	for rows.Next() {
		var (
			e    service.LogEntry
			data sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.Timestamp, &e.Level, &e.Message, &data); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
				return nil, fmt.Errorf("failed to decode log data: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

// ListAudits returns the latest audit records, newest first.
func (s *SQLiteStorage) ListAudits(ctx context.Context, limit int) ([]service.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT run_id, ts, month_label, outcome, COALESCE(detail, '') FROM run_audit ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []service.AuditRecord
	for rows.Next() {
		var r service.AuditRecord
		if err := rows.Scan(&r.RunID, &r.Timestamp, &r.MonthLabel, &r.Outcome, &r.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
