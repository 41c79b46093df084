package report

import (
	"context"
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/rowlock"
	"github.com/Veraticus/lessons-ledger/internal/runlog"
	"github.com/Veraticus/lessons-ledger/internal/schedule"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/Veraticus/lessons-ledger/internal/tabular"
)

func (s *Service) overwrite(ctx context.Context, layout ledger.Layout, updates []ledger.Row) error {
	if len(updates) == 0 {
		return nil
	}
	batch := make([]service.RowUpdate, len(updates))
	for i, u := range updates {
		batch[i] = service.RowUpdate{Row: u.Position, Values: layout.Encode(u.Lesson)}
	}
	if err := s.store.UpdateRows(ctx, s.cfg.Sheets.Ledger, batch); err != nil {
		return fmt.Errorf("failed to overwrite ledger rows: %w", err)
	}
	return nil
}

// insert appends the queued lessons in ledger order and formats the new rows.
func (s *Service) insert(ctx context.Context, layout ledger.Layout, pending []model.Lesson, rec *runlog.Recorder) (int, error) {
	if len(pending) == 0 {
		return 0, nil
	}
	ledger.SortForInsert(pending)

	rows := make([][]any, len(pending))
	for i, l := range pending {
		rows[i] = layout.Encode(l)
	}
	first, err := s.store.Append(ctx, s.cfg.Sheets.Ledger, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to append ledger rows: %w", err)
	}
	rec.Info("INSERT", common.Fields{"inserted": len(rows), "first_row": first})

	c := layout.Cols
	var (
		paints []service.RowPaint
		locked []int
	)
	for i, l := range pending {
		row := first + i
		if l.IsPlaceholder() {
			for _, col := range []string{c.Date, c.Message, c.Remaining} {
				paints = append(paints, service.RowPaint{Row: row, Col: layout.Index(col), Color: ColorFollowUp})
			}
		}
		if rowlock.Classify(string(l.Status)).Locked {
			locked = append(locked, row)
		}
	}
	s.paint(ctx, s.cfg.Sheets.Ledger, paints)
	s.protect(ctx, locked, nil, layout.Index(c.Status))
	return len(rows), nil
}

// annotate writes the suppression message into the exception rows whose override fell on
// a filtered date.
func (s *Service) annotate(ctx context.Context, header tabular.HeaderMap, suppressed []schedule.Suppression, rec *runlog.Recorder) {
	if len(suppressed) == 0 {
		return
	}
	name := s.cfg.Sheets.GroupExceptions
	col := header.Index(s.cfg.Exceptions.SystemMessage)

	seen := make(map[int]bool)
	var paints []service.RowPaint
	for _, sup := range suppressed {
		rec.Info("Override suppressed", common.Fields{
			"teacher": sup.Override.Teacher,
			"date":    dates.Key(sup.Override.Date),
			"reason":  sup.Reason.String(),
			"row":     sup.Override.Row,
		})
		if col < 0 || seen[sup.Override.Row] {
			continue
		}
		seen[sup.Override.Row] = true
		if err := s.store.UpdateCell(ctx, name, sup.Override.Row, col, model.MessageOverrideFiltered); err != nil {
			s.logger.Warn("Failed to annotate exception row", "sheet", name, "row", sup.Override.Row, "error", err)
			continue
		}
		paints = append(paints, service.RowPaint{Row: sup.Override.Row, Col: col, Color: ColorFollowUp})
	}
	s.paint(ctx, name, paints)
}

// paint colours cells when the store supports it. Formatting failures are logged, not returned.
func (s *Service) paint(ctx context.Context, sheet string, paints []service.RowPaint) {
	if len(paints) == 0 {
		return
	}
	painter, ok := s.store.(service.Painter)
	if !ok {
		return
	}
	if err := painter.PaintRows(ctx, sheet, paints); err != nil {
		s.logger.Warn("Failed to paint rows", "sheet", sheet, "rows", len(paints), "error", err)
	}
}

// protect locks and unlocks ledger rows when the store supports it.
func (s *Service) protect(ctx context.Context, lock, unlock []int, statusCol int) {
	protector, ok := s.store.(service.Protector)
	if !ok {
		return
	}
	sheet := s.cfg.Sheets.Ledger
	if len(unlock) > 0 {
		if err := protector.UnprotectRows(ctx, sheet, unlock); err != nil {
			s.logger.Warn("Failed to unprotect rows", "rows", len(unlock), "error", err)
		}
	}
	if len(lock) > 0 {
		if err := protector.ProtectRows(ctx, sheet, lock, statusCol); err != nil {
			s.logger.Warn("Failed to protect rows", "rows", len(lock), "error", err)
		}
	}
}
