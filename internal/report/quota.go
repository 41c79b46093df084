package report

import (
	"context"
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/quota"
	"github.com/Veraticus/lessons-ledger/internal/rowlock"
	"github.com/Veraticus/lessons-ledger/internal/runlog"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// QuotaSummary is the outcome of a quota pass.
type QuotaSummary struct {
	RunID   string
	Rows    int
	Changed int
	Over    int
}

type quotaOutcome struct {
	rows    int
	changed int
	over    int
}

// RecomputeQuotas reruns only the quota pass over the whole ledger.
func (s *Service) RecomputeQuotas(ctx context.Context) (QuotaSummary, error) {
	sum := QuotaSummary{RunID: s.cfg.NewRunID()}
	rec := s.recorder(sum.RunID)
	defer s.flush(ctx, rec)

	if err := s.acquire(ctx, sum.RunID); err != nil {
		return sum, err
	}
	defer s.release(ctx, sum.RunID)

	courses, err := s.loadCourses(ctx)
	if err != nil {
		rec.Error(err.Error()+" (RecomputeQuotas)", nil)
		return sum, err
	}
	assignments, err := s.loadAssignments(ctx)
	if err != nil {
		rec.Error(err.Error()+" (RecomputeQuotas)", nil)
		return sum, err
	}

	q, err := s.recompute(ctx, courses, assignments, rec)
	if err != nil {
		rec.Error(err.Error()+" (RecomputeQuotas)", nil)
		return sum, err
	}
	sum.Rows, sum.Changed, sum.Over = q.rows, q.changed, q.over
	rec.Success("Quota recompute completed", common.Fields{"rows": q.rows, "changed": q.changed, "over": q.over})
	return sum, nil
}

// recompute reads the ledger, recomputes every remaining counter and writes back the two
// quota columns when anything differs.
func (s *Service) recompute(ctx context.Context, courses []model.GroupCourse, assignments []model.PrivateAssignment, rec *runlog.Recorder) (quotaOutcome, error) {
	rec.StartTimer("quota")
	defer rec.EndTimer("quota")

	lg, err := s.readLedger(ctx)
	if err != nil {
		return quotaOutcome{}, err
	}

	lessons := make([]model.Lesson, len(lg.rows))
	for i, r := range lg.rows {
		lessons[i] = r.Lesson
	}
	targets := quota.NewTargets(courses, assignments)
	res := quota.Recompute(lessons, targets)

	out := quotaOutcome{rows: len(lessons), over: res.OverCount()}
	var paints []service.RowPaint
	for i, r := range lg.rows {
		if !res.Changed(i, r.Lesson) {
			continue
		}
		out.changed++
		switch {
		case res.Over[i]:
			paints = append(paints, service.RowPaint{Row: r.Position, Col: -1, Color: ColorOver})
		case quota.IsOverMessage(r.Lesson.Message):
			paints = append(paints, service.RowPaint{Row: r.Position, Col: -1, Color: restColor(r.Lesson)})
		}
	}

	rec.Debug("UPDATE_REMAIN_COMPLETE", common.Fields{"rows": out.rows, "changed": out.changed, "over": out.over, "targets": targets.Len()})
	if out.changed == 0 {
		return out, nil
	}

	// Both columns are rewritten in full so the write is one range per column.
	height := lg.last - 1
	remaining := make([]any, height)
	messages := make([]any, height)
	for i := range remaining {
		remaining[i] = ""
		messages[i] = ""
	}
	for i, r := range lg.rows {
		remaining[r.Position-2] = ledger.RemainingCell(res.Remaining[i])
		messages[r.Position-2] = res.Messages[i]
	}

	name := s.cfg.Sheets.Ledger
	c := lg.layout.Cols
	if err := s.store.WriteColumn(ctx, name, lg.layout.Index(c.Remaining), 2, remaining); err != nil {
		return out, fmt.Errorf("failed to write remaining counters: %w", err)
	}
	if err := s.store.WriteColumn(ctx, name, lg.layout.Index(c.Message), 2, messages); err != nil {
		return out, fmt.Errorf("failed to write quota messages: %w", err)
	}
	s.paint(ctx, name, paints)
	return out, nil
}

// restColor is the background of a row that carries no quota warning.
func restColor(l model.Lesson) string {
	if rowlock.Classify(string(l.Status)).Locked {
		return ColorLocked
	}
	return ColorOpen
}
