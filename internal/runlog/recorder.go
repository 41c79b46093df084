// Package runlog buffers the structured event log of one run and flushes it to the
// configured sinks when the run ends.
package runlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Level is the level column of a run-log row.
type Level string

// Run-log levels.
const (
	LevelInfo       Level = "INFO"
	LevelDebug      Level = "DEBUG"
	LevelSuccess    Level = "SUCCESS"
	LevelError      Level = "ERROR"
	LevelTimerStart Level = "TIMER-START"
	LevelTimerEnd   Level = "TIMER-END"
)

// Sink receives flushed entries. service.Journal satisfies it.
type Sink interface {
	AppendLog(ctx context.Context, entries []service.LogEntry) error
}

// Recorder collects the entries of one run. It is safe for concurrent use.
type Recorder struct {
	now     func() time.Time
	logger  *slog.Logger
	timers  map[string]time.Time
	runID   string
	entries []service.LogEntry
	mu      sync.Mutex
}

// New returns a recorder for runID. Every entry is mirrored to logger.
func New(runID string, logger *slog.Logger) *Recorder {
	return &Recorder{
		runID:  runID,
		logger: common.OrDefault(logger).With("run_id", runID),
		now:    time.Now,
		timers: make(map[string]time.Time),
	}
}

// SetClock replaces the time source.
func (r *Recorder) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// RunID is the run the recorder belongs to.
func (r *Recorder) RunID() string {
	return r.runID
}

// Info records an INFO event.
func (r *Recorder) Info(message string, data common.Fields) {
	r.add(LevelInfo, message, data)
}

// Debug records a DEBUG event.
func (r *Recorder) Debug(message string, data common.Fields) {
	r.add(LevelDebug, message, data)
}

// Success records a SUCCESS event.
func (r *Recorder) Success(message string, data common.Fields) {
	r.add(LevelSuccess, message, data)
}

// Error records an ERROR event.
func (r *Recorder) Error(message string, data common.Fields) {
	r.add(LevelError, message, data)
}

// StartTimer records the start of a labelled phase.
func (r *Recorder) StartTimer(label string) {
	r.mu.Lock()
	r.timers[label] = r.now()
	r.mu.Unlock()
	r.add(LevelTimerStart, "Start timer: "+label, common.Fields{"label": label})
}

// EndTimer records the end of a labelled phase and returns its duration.
// Ending a timer that was never started records a zero duration.
func (r *Recorder) EndTimer(label string) time.Duration {
	r.mu.Lock()
	var elapsed time.Duration
	if start, ok := r.timers[label]; ok {
		elapsed = r.now().Sub(start)
		delete(r.timers, label)
	}
	r.mu.Unlock()
	r.add(LevelTimerEnd, "End timer: "+label, common.Fields{"label": label, "elapsed_ms": elapsed.Milliseconds()})
	return elapsed
}

func (r *Recorder) add(level Level, message string, data common.Fields) {
	r.mu.Lock()
	entry := service.LogEntry{
		RunID:     r.runID,
		Timestamp: r.now(),
		Level:     string(level),
		Message:   message,
	}
	if len(data) > 0 {
		entry.Data = make(map[string]any, len(data))
		for k, v := range data {
			entry.Data[k] = v
		}
	}
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	attrs := make([]any, 0, 2*len(data)+2)
	attrs = append(attrs, "level_tag", string(level))
	for k, v := range data {
		attrs = append(attrs, k, v)
	}
	switch level {
	case LevelError:
		r.logger.Error(message, attrs...)
	case LevelDebug, LevelTimerStart, LevelTimerEnd:
		r.logger.Debug(message, attrs...)
	default:
		r.logger.Info(message, attrs...)
	}
}

// Entries returns a copy of the buffered entries.
func (r *Recorder) Entries() []service.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]service.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Flush writes the buffered entries to every sink and empties the buffer. A failing sink
// does not stop the others; their errors are joined.
func (r *Recorder) Flush(ctx context.Context, sinks ...Sink) error {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}

	var errs []error
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if err := sink.AppendLog(ctx, entries); err != nil {
			errs = append(errs, fmt.Errorf("flush run log: %w", err))
		}
	}
	return errors.Join(errs...)
}
