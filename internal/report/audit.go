package report

import (
	"context"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/runlog"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Audit outcomes.
const (
	OutcomeSuccess = "הצלחה"
	OutcomeError   = "שגיאה"
)

// StatusHeader is the header of the status sheet.
var StatusHeader = []string{"Run ID", "תאריך", "חודש/שנה", "סטטוס", "שגיאה"}

func (s *Service) recorder(runID string) *runlog.Recorder {
	rec := runlog.New(runID, s.logger)
	rec.SetClock(s.now)
	return rec
}

// flush persists the run log to the journal and the log sheet. It runs deferred, so a failed
// run still leaves its log behind.
func (s *Service) flush(ctx context.Context, rec *runlog.Recorder) {
	sinks := []runlog.Sink{runlog.SheetSink{Store: s.store, Sheet: s.cfg.Sheets.Log, Location: s.cfg.Location}}
	if s.journal != nil {
		sinks = append(sinks, s.journal)
	}
	if err := rec.Flush(context.WithoutCancel(ctx), sinks...); err != nil {
		s.logger.Warn("Failed to persist run log", "run_id", rec.RunID(), "error", err)
	}
}

// audit records the outcome of a run in the status sheet and the journal.
func (s *Service) audit(ctx context.Context, runID string, at time.Time, month model.Month, runErr error) {
	ctx = context.WithoutCancel(ctx)
	record := service.AuditRecord{
		RunID:      runID,
		Timestamp:  at,
		MonthLabel: month.Label(),
		Outcome:    OutcomeSuccess,
	}
	if runErr != nil {
		record.Outcome = OutcomeError
		record.Detail = runErr.Error()
	}

	name := s.cfg.Sheets.Status
	if err := s.store.EnsureSheet(ctx, name, StatusHeader); err != nil {
		s.logger.Warn("Failed to prepare status sheet", "sheet", name, "error", err)
	} else {
		row := []any{record.RunID, at.In(s.cfg.Location).Format(runlog.TimeLayout), record.MonthLabel, record.Outcome, record.Detail}
		if _, err := s.store.Append(ctx, name, [][]any{row}); err != nil {
			s.logger.Warn("Failed to append status row", "sheet", name, "error", err)
		}
	}

	if s.journal != nil {
		if err := s.journal.AppendAudit(ctx, record); err != nil {
			s.logger.Warn("Failed to record audit", "run_id", runID, "error", err)
		}
	}
}
