package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/config"
	"github.com/Veraticus/lessons-ledger/internal/memtable"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/Veraticus/lessons-ledger/internal/sheets"
	"github.com/Veraticus/lessons-ledger/internal/storage"
	"github.com/Veraticus/lessons-ledger/internal/tabular"
	"github.com/Veraticus/lessons-ledger/internal/xlsx"
	"github.com/spf13/viper"
)

// session bundles the workbook, the journal and the report service of one command.
type session struct {
	store    service.TabularStore
	journal  *storage.SQLiteStorage
	svc      *report.Service
	closers  []func() error
	settings config.Settings
	dryRun   bool
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
}

// openSession wires the configured backend into a report service. A dry run works on an
// in-memory copy of the workbook and leaves the journal alone.
func openSession(ctx context.Context, dryRun bool) (*session, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}

	s := &session{settings: settings, dryRun: dryRun}

	store, closeStore, err := openWorkbook(ctx, settings)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		s.closers = append(s.closers, closeStore)
	}

	if dryRun {
		snapshot, err := memtable.Snapshot(ctx, store, settings.SheetNames()...)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to snapshot workbook: %w", err)
		}
		s.store = snapshot
		s.svc = report.NewWithConfig(snapshot, nil, nil, settings.ReportConfig())
		return s, nil
	}

	journal, err := openJournal(ctx, settings)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, journal.Close)
	s.journal = journal
	s.store = store
	s.svc = report.NewWithConfig(store, journal, journal, settings.ReportConfig())
	return s, nil
}

func openWorkbook(ctx context.Context, settings config.Settings) (service.TabularStore, func() error, error) {
	switch settings.Backend {
	case config.BackendXLSX:
		store, err := xlsx.Open(settings.XLSXPath, slog.Default())
		if err != nil {
			return nil, nil, common.NewUserError("Could not open the workbook file", err)
		}
		slog.Debug("Using xlsx workbook", "path", store.Path())
		return store, store.Close, nil
	case config.BackendMemory:
		slog.Warn("Using an empty in-memory workbook; nothing is persisted")
		return memtable.New(), nil, nil
	default:
		useSavedToken()
		cfg, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return nil, nil, common.NewUserError("Google Sheets is not configured, run 'lessons auth sheets'", err)
		}
		store, err := sheets.NewStore(ctx, *cfg, slog.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		return store, nil, nil
	}
}

// useSavedToken falls back to the refresh token written by 'lessons auth sheets' when the
// config carries none.
func useSavedToken() {
	if viper.GetString("sheets.refresh_token") != "" || viper.GetString("sheets.service_account_path") != "" {
		return
	}
	path, err := tokenPath()
	if err != nil {
		return
	}
	token, err := sheets.LoadToken(path)
	if err != nil {
		slog.Debug("No saved Google Sheets token", "file", path, "error", err)
		return
	}
	if token.RefreshToken != "" {
		viper.Set("sheets.refresh_token", token.RefreshToken)
	}
}

func openJournal(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	journal, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := journal.Migrate(ctx); err != nil {
		_ = journal.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	journal.SetStaleLock(settings.StaleLock)
	return journal, nil
}

// monthFlag parses the --month value; blank means the current month in loc.
func monthFlag(value string, now func() model.Month) (model.Month, error) {
	if strings.TrimSpace(value) == "" {
		return now(), nil
	}
	m, err := model.ParseMonth(value)
	if err != nil {
		return model.Month{}, fmt.Errorf("%w: %w", common.ErrInvalidMonth, err)
	}
	return m, nil
}

// resolveColumn turns a column reference into a 0-based index. It accepts a 1-based number,
// a header name of the ledger sheet, or a column letter such as "J". Header names win over
// letters, so a short Latin header like "Qty" resolves by name.
func resolveColumn(ctx context.Context, store service.TabularStore, sheet, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("column is required")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("column %d out of range", n)
		}
		return n - 1, nil
	}

	letter, isLetter := letterIndex(ref)
	rows, err := store.ReadAll(ctx, sheet)
	if err != nil {
		return 0, err
	}
	if len(rows) > 0 {
		if idx := tabular.NewHeaderMap(sheet, rows[0]).Index(ref); idx >= 0 {
			return idx, nil
		}
	}
	if isLetter {
		return letter, nil
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("sheet %q has no header", sheet)
	}
	return 0, fmt.Errorf("%w: column %q in sheet %q", common.ErrNotFound, ref, sheet)
}

func letterIndex(ref string) (int, bool) {
	if len(ref) > 3 {
		return 0, false
	}
	n := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, true
}

// cellValue keeps numbers numeric so quantities and dates land typed in the sheet.
func cellValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func userMessage(err error) string {
	var ue *common.UserError
	if errors.As(err, &ue) {
		slog.Debug("Command failed", "error", err)
		return ue.UserMessage
	}
	return err.Error()
}
