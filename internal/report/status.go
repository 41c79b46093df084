package report

import (
	"context"
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/rowlock"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Progress is called after each batch with the number of ledger rows processed so far.
type Progress func(done, total int)

// ApplyStatusForMonth sets status on every ledger row whose payment month is month, rewrites
// the lock message, and locks or unlocks the rows. It returns the number of rows updated.
func (s *Service) ApplyStatusForMonth(ctx context.Context, month model.Month, status string, progress Progress) (int, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}
	if month.IsZero() {
		return 0, common.ErrInvalidMonth
	}

	runID := s.cfg.NewRunID()
	rec := s.recorder(runID)
	defer s.flush(ctx, rec)

	if err := s.acquire(ctx, runID); err != nil {
		return 0, err
	}
	defer s.release(ctx, runID)

	lg, err := s.readLedger(ctx)
	if err != nil {
		rec.Error(err.Error()+" (ApplyStatusForMonth)", nil)
		return 0, err
	}

	total := len(lg.rows)
	rec.Info("Starting bulk status update", common.Fields{
		"month":      month.String(),
		"status":     string(st),
		"rows":       total,
		"batch_size": StatusBatchSize,
	})

	updated := 0
	for start := 0; start < total; start += StatusBatchSize {
		end := min(start+StatusBatchSize, total)
		n, err := s.applyStatusBatch(ctx, lg.layout, lg.rows[start:end], month, st)
		if err != nil {
			rec.Error(err.Error()+" (ApplyStatusForMonth)", common.Fields{"updated": updated})
			return updated, err
		}
		updated += n
		if progress != nil {
			progress(end, total)
		}
	}

	rec.Success("Bulk update completed", common.Fields{"updated": updated})
	return updated, nil
}

// applyStatusBatch writes the status and message columns over the sheet span of batch.
// Rows of other months keep their values.
func (s *Service) applyStatusBatch(ctx context.Context, layout ledger.Layout, batch []ledger.Row, month model.Month, st model.Status) (int, error) {
	first, last := batch[0].Position, batch[len(batch)-1].Position
	statuses := make([]any, last-first+1)
	messages := make([]any, last-first+1)
	for i := range statuses {
		statuses[i] = ""
		messages[i] = ""
	}

	var matched []int
	for _, r := range batch {
		i := r.Position - first
		statuses[i] = string(r.Lesson.Status)
		messages[i] = r.Lesson.Message
		if r.Lesson.PaymentMonth != month {
			continue
		}
		statuses[i] = string(st)
		messages[i] = rowlock.Message(st)
		matched = append(matched, r.Position)
	}
	if len(matched) == 0 {
		return 0, nil
	}

	name := s.cfg.Sheets.Ledger
	c := layout.Cols
	if err := s.store.WriteColumn(ctx, name, layout.Index(c.Status), first, statuses); err != nil {
		return 0, fmt.Errorf("failed to write statuses: %w", err)
	}
	if err := s.store.WriteColumn(ctx, name, layout.Index(c.Message), first, messages); err != nil {
		return 0, fmt.Errorf("failed to write status messages: %w", err)
	}

	color := ColorOpen
	if rowlock.Classify(string(st)).Locked {
		color = ColorLocked
		s.protect(ctx, matched, nil, layout.Index(c.Status))
	} else {
		s.protect(ctx, nil, matched, layout.Index(c.Status))
	}
	paints := make([]service.RowPaint, len(matched))
	for i, row := range matched {
		paints[i] = service.RowPaint{Row: row, Col: -1, Color: color}
	}
	s.paint(ctx, name, paints)
	return len(matched), nil
}
