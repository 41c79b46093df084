// Package service defines the interfaces shared by the ledger engine and its collaborators.
package service

import (
	"context"
	"time"
)

// RowUpdate replaces the values of one existing sheet row.
// Row is the 1-based sheet row; row 1 holds the header.
type RowUpdate struct {
	Values []any
	Row    int
}

// TabularStore is the spreadsheet persistence layer seen by the engine.
// Cells come back as string, float64, bool, time.Time or nil.
type TabularStore interface {
	// EnsureSheet creates the sheet when absent and writes header into an empty header row.
	EnsureSheet(ctx context.Context, name string, header []string) error
	// ReadAll returns every row including the header. A missing sheet yields common.ErrSheetNotFound.
	ReadAll(ctx context.Context, name string) ([][]any, error)
	// Append adds rows after the last used row and returns the sheet row of the first one.
	Append(ctx context.Context, name string, rows [][]any) (int, error)
	UpdateRows(ctx context.Context, name string, updates []RowUpdate) error
	// WriteColumn writes values into column col (0-based) starting at sheet row startRow.
	WriteColumn(ctx context.Context, name string, col, startRow int, values []any) error
	UpdateCell(ctx context.Context, name string, row, col int, value any) error
	// DeleteRows removes the given sheet rows; order of the argument does not matter.
	DeleteRows(ctx context.Context, name string, rows []int) error
}

// RowPaint sets the background of a whole row, or of one column when Col >= 0.
type RowPaint struct {
	Color string
	Row   int
	Col   int
}

// Painter is implemented by stores that can colour cells.
type Painter interface {
	PaintRows(ctx context.Context, name string, paints []RowPaint) error
}

// Protector is implemented by stores that can protect rows against edits.
// A protected row keeps editableCol writable.
type Protector interface {
	ProtectRows(ctx context.Context, name string, rows []int, editableCol int) error
	UnprotectRows(ctx context.Context, name string, rows []int) error
}

// LogEntry is one run-log event.
type LogEntry struct {
	Timestamp time.Time
	Data      map[string]any
	RunID     string
	Level     string
	Message   string
}

// AuditRecord is the outcome of one run.
type AuditRecord struct {
	Timestamp  time.Time
	RunID      string
	MonthLabel string
	Outcome    string
	Detail     string
}

// Journal persists run logs and audit records. Entries are append-only.
type Journal interface {
	AppendLog(ctx context.Context, entries []LogEntry) error
	AppendAudit(ctx context.Context, record AuditRecord) error
}

// Locker provides the advisory exclusive section around a run.
type Locker interface {
	Acquire(ctx context.Context, resource, owner string) error
	Release(ctx context.Context, resource, owner string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
