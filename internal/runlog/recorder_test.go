package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/memtable"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

type captureSink struct {
	err     error
	entries []service.LogEntry
}

func (s *captureSink) AppendLog(_ context.Context, entries []service.LogEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func TestRecorder_Levels(t *testing.T) {
	r := New("RUN-1", nil)
	r.Info("START", common.Fields{"mode": "skip"})
	r.Debug("parsed filter", nil)
	r.Success("COMPLETE", common.Fields{"inserted": 4})
	r.Error("boom", nil)

	entries := r.Entries()
	require.Len(t, entries, 4)

	levels := make([]string, len(entries))
	for i, e := range entries {
		levels[i] = e.Level
		assert.Equal(t, "RUN-1", e.RunID)
	}
	assert.Equal(t, []string{"INFO", "DEBUG", "SUCCESS", "ERROR"}, levels)
	assert.Equal(t, "skip", entries[0].Data["mode"])
	assert.Nil(t, entries[1].Data)
}

func TestRecorder_Timers(t *testing.T) {
	clock := &stepClock{t: time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC), step: 250 * time.Millisecond}
	r := New("RUN-1", nil)
	r.SetClock(clock.now)

	r.StartTimer("group")
	elapsed := r.EndTimer("group")
	assert.Equal(t, 500*time.Millisecond, elapsed)

	assert.Equal(t, time.Duration(0), r.EndTimer("never-started"))

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, string(LevelTimerStart), entries[0].Level)
	assert.Equal(t, "End timer: group", entries[1].Message)
	assert.Equal(t, int64(500), entries[1].Data["elapsed_ms"])
}

func TestRecorder_Flush(t *testing.T) {
	ctx := context.Background()
	r := New("RUN-1", nil)
	r.Info("START", nil)

	good := &captureSink{}
	bad := &captureSink{err: errors.New("disk full")}

	err := r.Flush(ctx, bad, nil, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, good.entries, 1, "a failing sink does not stop the others")

	assert.Empty(t, r.Entries())
	assert.NoError(t, r.Flush(ctx, good), "empty buffer is a no-op")
	assert.Len(t, good.entries, 1)
}

func TestSheetSink(t *testing.T) {
	ctx := context.Background()
	store := memtable.New()
	sink := SheetSink{Store: store, Sheet: "לוג ריצות", Location: time.UTC}

	err := sink.AppendLog(ctx, []service.LogEntry{
		{RunID: "RUN-1", Timestamp: time.Date(2024, 8, 1, 9, 5, 7, 0, time.UTC), Level: "INFO", Message: "START", Data: map[string]any{"mode": "skip"}},
		{RunID: "RUN-1", Timestamp: time.Date(2024, 8, 1, 9, 5, 8, 0, time.UTC), Level: "SUCCESS", Message: "COMPLETE"},
	})
	require.NoError(t, err)

	rows := store.Rows("לוג ריצות")
	require.Len(t, rows, 3)
	assert.Equal(t, "Run ID", rows[0][0])
	assert.Equal(t, []any{"RUN-1", "01/08/2024 09:05:07", "INFO", "START", `{"mode":"skip"}`}, rows[1])
	assert.Equal(t, "{}", rows[2][4])
}
