// Package memtable is an in-memory TabularStore used by tests and dry runs.
package memtable

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Store keeps every sheet as a slice of rows. It also records paints and protections
// so callers can inspect what a run would have formatted.
type Store struct {
	errs      map[string]error
	sheets    map[string][][]any
	colors    map[string]map[cell]string
	protected map[string]map[int]int
	calls     []Call
	mu        sync.Mutex
}

type cell struct {
	row int
	col int
}

// Call records one mutating operation.
type Call struct {
	Op    string
	Sheet string
	Rows  int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		errs:      make(map[string]error),
		sheets:    make(map[string][][]any),
		colors:    make(map[string]map[cell]string),
		protected: make(map[string]map[int]int),
	}
}

// Seed replaces a sheet with a copy of rows.
func (s *Store) Seed(name string, rows [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[name] = copyRows(rows)
}

// SetError makes every later call of op ("Append", "ReadAll", ...) fail with err.
// A nil err clears the failure.
func (s *Store) SetError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, op)
		return
	}
	s.errs[op] = err
}

// Calls returns a copy of the recorded mutations.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Rows returns a copy of a sheet, or nil when it does not exist.
func (s *Store) Rows(name string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[name]
	if !ok {
		return nil
	}
	return copyRows(rows)
}

// Color returns the background of a cell, falling back to the whole-row paint.
func (s *Store) Color(name string, row, col int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.colors[name][cell{row, col}]; ok {
		return c
	}
	return s.colors[name][cell{row, -1}]
}

// Protected reports whether row is protected and which column stays editable.
func (s *Store) Protected(name string, row int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.protected[name][row]
	return col, ok
}

func (s *Store) begin(op, name string, n int) error {
	if err := s.errs[op]; err != nil {
		return err
	}
	if op != "ReadAll" && op != "EnsureSheet" {
		s.calls = append(s.calls, Call{Op: op, Sheet: name, Rows: n})
	}
	return nil
}

func (s *Store) sheet(name string) ([][]any, error) {
	rows, ok := s.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q: %w", name, common.ErrSheetNotFound)
	}
	return rows, nil
}

// EnsureSheet implements service.TabularStore.
func (s *Store) EnsureSheet(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("EnsureSheet", name, 0); err != nil {
		return err
	}

	rows := s.sheets[name]
	if len(rows) > 0 && !blank(rows[0]) {
		return nil
	}
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if len(rows) == 0 {
		s.sheets[name] = [][]any{head}
		return nil
	}
	rows[0] = head
	return nil
}

// ReadAll implements service.TabularStore.
func (s *Store) ReadAll(_ context.Context, name string) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("ReadAll", name, 0); err != nil {
		return nil, err
	}
	rows, err := s.sheet(name)
	if err != nil {
		return nil, err
	}
	return copyRows(rows), nil
}

// Append implements service.TabularStore.
func (s *Store) Append(_ context.Context, name string, rows [][]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Append", name, len(rows)); err != nil {
		return 0, err
	}
	existing, err := s.sheet(name)
	if err != nil {
		return 0, err
	}
	first := len(existing) + 1
	s.sheets[name] = append(existing, copyRows(rows)...)
	return first, nil
}

// UpdateRows implements service.TabularStore.
func (s *Store) UpdateRows(_ context.Context, name string, updates []service.RowUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateRows", name, len(updates)); err != nil {
		return err
	}
	rows, err := s.sheet(name)
	if err != nil {
		return err
	}
	for _, u := range updates {
		rows = grow(rows, u.Row)
		rows[u.Row-1] = append([]any(nil), u.Values...)
	}
	s.sheets[name] = rows
	return nil
}

// WriteColumn implements service.TabularStore.
func (s *Store) WriteColumn(_ context.Context, name string, col, startRow int, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("WriteColumn", name, len(values)); err != nil {
		return err
	}
	rows, err := s.sheet(name)
	if err != nil {
		return err
	}
	for i, v := range values {
		rows = setCell(rows, startRow+i, col, v)
	}
	s.sheets[name] = rows
	return nil
}

// UpdateCell implements service.TabularStore.
func (s *Store) UpdateCell(_ context.Context, name string, row, col int, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateCell", name, 1); err != nil {
		return err
	}
	rows, err := s.sheet(name)
	if err != nil {
		return err
	}
	s.sheets[name] = setCell(rows, row, col, value)
	return nil
}

// DeleteRows implements service.TabularStore.
func (s *Store) DeleteRows(_ context.Context, name string, del []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("DeleteRows", name, len(del)); err != nil {
		return err
	}
	rows, err := s.sheet(name)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), del...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	last := 0
	for _, r := range sorted {
		if r == last || r < 2 || r > len(rows) {
			continue
		}
		rows = append(rows[:r-1], rows[r:]...)
		last = r
	}
	s.sheets[name] = rows
	return nil
}

// PaintRows implements service.Painter.
func (s *Store) PaintRows(_ context.Context, name string, paints []service.RowPaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("PaintRows", name, len(paints)); err != nil {
		return err
	}
	if s.colors[name] == nil {
		s.colors[name] = make(map[cell]string)
	}
	for _, p := range paints {
		col := p.Col
		if col < 0 {
			col = -1
			// A whole-row paint replaces earlier cell paints of that row.
			for c := range s.colors[name] {
				if c.row == p.Row {
					delete(s.colors[name], c)
				}
			}
		}
		s.colors[name][cell{p.Row, col}] = p.Color
	}
	return nil
}

// ProtectRows implements service.Protector.
func (s *Store) ProtectRows(_ context.Context, name string, rows []int, editableCol int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("ProtectRows", name, len(rows)); err != nil {
		return err
	}
	if s.protected[name] == nil {
		s.protected[name] = make(map[int]int)
	}
	for _, r := range rows {
		s.protected[name][r] = editableCol
	}
	return nil
}

// UnprotectRows implements service.Protector.
func (s *Store) UnprotectRows(_ context.Context, name string, rows []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UnprotectRows", name, len(rows)); err != nil {
		return err
	}
	for _, r := range rows {
		delete(s.protected[name], r)
	}
	return nil
}

func grow(rows [][]any, row int) [][]any {
	for len(rows) < row {
		rows = append(rows, nil)
	}
	return rows
}

func setCell(rows [][]any, row, col int, v any) [][]any {
	rows = grow(rows, row)
	r := rows[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = v
	rows[row-1] = r
	return rows
}

func blank(row []any) bool {
	for _, v := range row {
		if v != nil && v != "" {
			return false
		}
	}
	return true
}

func copyRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
