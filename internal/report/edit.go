package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/rowlock"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// EditResult describes the row after an accepted edit.
type EditResult struct {
	Message string
	Row     int
	Locked  bool
}

// EditCell applies one edit to a ledger cell. col is 0-based. Edits to a paid or transferred
// row are refused with common.ErrRowLocked unless they target the status column. Changing the
// status toggles the row protection; changing the lesson date sets or clears the missing-date
// warning.
func (s *Service) EditCell(ctx context.Context, row, col int, value any) (EditResult, error) {
	res := EditResult{Row: row}
	if row < 2 {
		return res, fmt.Errorf("row %d: the header row cannot be edited", row)
	}

	lg, err := s.readLedger(ctx)
	if err != nil {
		return res, err
	}
	if col < 0 || col >= lg.layout.Header.Width() {
		return res, fmt.Errorf("column %d is outside the ledger", col)
	}

	var current model.Lesson
	for _, r := range lg.rows {
		if r.Position == row {
			current = r.Lesson
			break
		}
	}

	c := lg.layout.Cols
	statusCol := lg.layout.Index(c.Status)
	dateCol := lg.layout.Index(c.Date)
	msgCol := lg.layout.Index(c.Message)

	_, reverted := rowlock.Review(string(current.Status), statusCol, []rowlock.CellEdit{{Row: row, Col: col, New: value}})
	if len(reverted) > 0 {
		res.Locked = true
		res.Message = current.Message
		return res, fmt.Errorf("%w: row %d (%s)", common.ErrRowLocked, row, current.Status)
	}

	name := s.cfg.Sheets.Ledger
	res.Message = current.Message
	res.Locked = rowlock.Classify(string(current.Status)).Locked

	switch col {
	case statusCol:
		st := strings.TrimSpace(fmt.Sprint(value))
		if value == nil {
			st = ""
		}
		if err := s.store.UpdateCell(ctx, name, row, col, st); err != nil {
			return res, fmt.Errorf("failed to write status: %w", err)
		}
		decision := rowlock.Classify(st)
		res.Locked = decision.Locked
		msg := current.Message
		if decision.Locked {
			msg = rowlock.Message(decision.Status)
		} else if msg == model.MessageLockedPaid || msg == model.MessageLockedTransferred {
			msg = ""
		}
		if err := s.setMessage(ctx, row, msgCol, current.Message, msg); err != nil {
			return res, err
		}
		res.Message = msg

		color := ColorOpen
		if decision.Locked {
			color = ColorLocked
			s.protect(ctx, []int{row}, nil, statusCol)
		} else {
			s.protect(ctx, nil, []int{row}, statusCol)
		}
		s.paint(ctx, name, []service.RowPaint{{Row: row, Col: -1, Color: color}})
		s.logger.Info("Status edited", "row", row, "status", st, "locked", decision.Locked)

	case dateCol:
		t, ok := dates.ParseFlexible(value)
		cell := any("")
		if ok {
			cell = dates.Key(t)
		}
		if err := s.store.UpdateCell(ctx, name, row, col, cell); err != nil {
			return res, fmt.Errorf("failed to write lesson date: %w", err)
		}
		msg := current.Message
		switch {
		case ok && msg == model.MessageDateRequired:
			msg = ""
		case !ok && msg != model.MessageDateRequired:
			msg = model.MessageDateRequired
		}
		if err := s.setMessage(ctx, row, msgCol, current.Message, msg); err != nil {
			return res, err
		}
		res.Message = msg

	default:
		if err := s.store.UpdateCell(ctx, name, row, col, value); err != nil {
			return res, fmt.Errorf("failed to write cell: %w", err)
		}
	}
	return res, nil
}

func (s *Service) setMessage(ctx context.Context, row, col int, old, msg string) error {
	if old == msg {
		return nil
	}
	if err := s.store.UpdateCell(ctx, s.cfg.Sheets.Ledger, row, col, msg); err != nil {
		return fmt.Errorf("failed to write system message: %w", err)
	}
	return nil
}
