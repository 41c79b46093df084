package runlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/service"
)

// TimeLayout is the timestamp layout of the log and status sheets.
const TimeLayout = "02/01/2006 15:04:05"

// SheetHeader is the header of the run-log sheet.
var SheetHeader = []string{"Run ID", "זמן", "רמה", "הודעה", "נתונים"}

// SheetSink appends entries to a run-log sheet.
type SheetSink struct {
	Store    service.TabularStore
	Location *time.Location
	Sheet    string
}

// AppendLog implements Sink.
func (s SheetSink) AppendLog(ctx context.Context, entries []service.LogEntry) error {
	if err := s.Store.EnsureSheet(ctx, s.Sheet, SheetHeader); err != nil {
		return err
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		data := "{}"
		if len(e.Data) > 0 {
			if raw, err := json.Marshal(e.Data); err == nil {
				data = string(raw)
			}
		}
		rows = append(rows, []any{e.RunID, e.Timestamp.In(loc).Format(TimeLayout), e.Level, e.Message, data})
	}
	_, err := s.Store.Append(ctx, s.Sheet, rows)
	return err
}
