package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/exceptions"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/roster"
	"github.com/Veraticus/lessons-ledger/internal/runlog"
	"github.com/Veraticus/lessons-ledger/internal/tabular"
)

// sources are the read-only inputs of a run.
type sources struct {
	filter          *exceptions.State
	activeDates     map[string][]time.Time
	exceptionHeader tabular.HeaderMap
	courses         []model.GroupCourse
	// assignments is nil when the private roster is absent.
	assignments []model.PrivateAssignment
}

func (s *Service) loadSources(ctx context.Context, month model.Month, rec *runlog.Recorder) (sources, error) {
	names := s.cfg.Sheets
	var src sources

	courses, err := s.loadCourses(ctx)
	if err != nil {
		return src, err
	}
	src.courses = courses

	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		return src, err
	}
	src.assignments = assignments

	// The group exception table is created after sources load; absent means empty.
	rows, err := s.store.ReadAll(ctx, names.GroupExceptions)
	if err != nil && !errors.Is(err, common.ErrSheetNotFound) {
		return src, fmt.Errorf("failed to read %q: %w", names.GroupExceptions, err)
	}
	entries, err := roster.Exceptions(names.GroupExceptions, rows, s.cfg.Exceptions)
	if err != nil {
		return src, err
	}
	if len(rows) > 0 {
		src.exceptionHeader = tabular.NewHeaderMap(names.GroupExceptions, rows[0])
	}
	src.filter = exceptions.Parse(entries)
	rec.Debug("Parsed exception filter", src.filter.Stats())

	src.activeDates, err = s.loadActiveDates(ctx, month, rec)
	if err != nil {
		return src, err
	}

	rec.Info("Loaded sources", common.Fields{
		"courses":     len(src.courses),
		"assignments": len(src.assignments),
		"exceptions":  len(entries),
	})
	return src, nil
}

// loadCourses reads the course roster, which every run requires.
func (s *Service) loadCourses(ctx context.Context) ([]model.GroupCourse, error) {
	name := s.cfg.Sheets.Courses
	rows, err := s.store.ReadAll(ctx, name)
	if errors.Is(err, common.ErrSheetNotFound) {
		return nil, &common.ConfigError{Sheet: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return roster.Courses(name, rows, s.cfg.Courses)
}

// loadAssignments reads the private roster. A missing sheet yields nil without error.
func (s *Service) loadAssignments(ctx context.Context) ([]model.PrivateAssignment, error) {
	name := s.cfg.Sheets.Private
	rows, err := s.store.ReadAll(ctx, name)
	if errors.Is(err, common.ErrSheetNotFound) {
		s.logger.Warn("Private roster not found", "sheet", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	assignments, err := roster.Assignments(name, rows, s.cfg.Private)
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []model.PrivateAssignment{}
	}
	return assignments, nil
}

// loadActiveDates reads the per-teacher active dates of the private exception table.
// The table is optional.
func (s *Service) loadActiveDates(ctx context.Context, month model.Month, rec *runlog.Recorder) (map[string][]time.Time, error) {
	name := s.cfg.Sheets.PrivateExceptions
	rows, err := s.store.ReadAll(ctx, name)
	if errors.Is(err, common.ErrSheetNotFound) {
		rec.Debug("Private exception table not found", common.Fields{"sheet": name})
		return map[string][]time.Time{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	entries, err := roster.Exceptions(name, rows, s.cfg.Exceptions)
	if err != nil {
		return nil, err
	}
	return exceptions.ActiveDates(entries, month), nil
}

// ledgerSnapshot is one read of the ledger sheet.
type ledgerSnapshot struct {
	layout ledger.Layout
	rows   []ledger.Row
	// last is the last sheet row read, including blank rows.
	last int
}

func (s *Service) readLedger(ctx context.Context) (ledgerSnapshot, error) {
	name := s.cfg.Sheets.Ledger
	values, err := s.store.ReadAll(ctx, name)
	if errors.Is(err, common.ErrSheetNotFound) {
		return ledgerSnapshot{}, &common.ConfigError{Sheet: name}
	}
	if err != nil {
		return ledgerSnapshot{}, fmt.Errorf("failed to read ledger: %w", err)
	}

	var header []any
	if len(values) > 0 {
		header = values[0]
	}
	layout, err := ledger.NewLayout(name, header, s.cfg.Ledger)
	if err != nil {
		return ledgerSnapshot{}, err
	}
	return ledgerSnapshot{layout: layout, rows: layout.Rows(values), last: len(values)}, nil
}
