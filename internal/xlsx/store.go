// Package xlsx keeps the ledger workbook in a local .xlsx file.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"
)

// Store implements service.TabularStore and service.Painter on an excelize workbook.
// Every mutation is saved with an atomic rename, so a crash never leaves a torn file.
type Store struct {
	file   *excelize.File
	logger *slog.Logger
	styles map[string]int
	path   string
	mu     sync.Mutex
}

// Open loads the workbook at path, or starts an empty one when the file does not exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	var (
		f   *excelize.File
		err error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
	} else if os.IsNotExist(statErr) {
		f = excelize.NewFile()
	} else {
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, statErr)
	}

	return &Store{
		file:   f,
		logger: common.OrDefault(logger),
		styles: make(map[string]int),
		path:   path,
	}, nil
}

// Close releases the workbook.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Path is the workbook file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create workbook directory: %w", err)
	}
	buf, err := s.file.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	if err := atomic.WriteFile(s.path, buf); err != nil {
		return fmt.Errorf("failed to write workbook %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) exists(name string) bool {
	idx, err := s.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func (s *Store) require(name string) error {
	if !s.exists(name) {
		return fmt.Errorf("sheet %q: %w", name, common.ErrSheetNotFound)
	}
	return nil
}

// EnsureSheet implements service.TabularStore.
func (s *Store) EnsureSheet(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(name) {
		if _, err := s.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		s.logger.Info("created sheet", "sheet", name, "path", s.path)
	}

	rows, err := s.file.GetRows(name)
	if err != nil {
		return err
	}
	if len(rows) > 0 && !blank(rows[0]) {
		return nil
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := s.file.SetSheetRow(name, "A1", &row); err != nil {
		return err
	}
	return s.save()
}

// ReadAll implements service.TabularStore. Cells holding canonical numbers come back as float64.
func (s *Store) ReadAll(_ context.Context, name string) ([][]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return nil, err
	}
	raw, err := s.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	out := make([][]any, len(raw))
	for i, r := range raw {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = typed(v)
		}
		out[i] = row
	}
	return out, nil
}

// typed turns a raw cell string back into a number when it is one.
func typed(v string) any {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != v {
		return v
	}
	return f
}

func (s *Store) rowCount(name string) (int, error) {
	rows, err := s.file.GetRows(name)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Append implements service.TabularStore.
func (s *Store) Append(_ context.Context, name string, rows [][]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return 0, err
	}
	n, err := s.rowCount(name)
	if err != nil {
		return 0, err
	}
	first := n + 1
	for i, r := range rows {
		if err := s.setRow(name, first+i, r); err != nil {
			return 0, err
		}
	}
	return first, s.save()
}

func (s *Store) setRow(name string, row int, values []any) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := append([]any(nil), values...)
	return s.file.SetSheetRow(name, addr, &vals)
}

// UpdateRows implements service.TabularStore.
func (s *Store) UpdateRows(_ context.Context, name string, updates []service.RowUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return err
	}
	for _, u := range updates {
		if err := s.setRow(name, u.Row, u.Values); err != nil {
			return err
		}
	}
	return s.save()
}

// WriteColumn implements service.TabularStore.
func (s *Store) WriteColumn(_ context.Context, name string, col, startRow int, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return err
	}
	for i, v := range values {
		if err := s.setCell(name, startRow+i, col, v); err != nil {
			return err
		}
	}
	return s.save()
}

// UpdateCell implements service.TabularStore.
func (s *Store) UpdateCell(_ context.Context, name string, row, col int, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return err
	}
	if err := s.setCell(name, row, col, value); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) setCell(name string, row, col int, value any) error {
	addr, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	if value == nil {
		value = ""
	}
	return s.file.SetCellValue(name, addr, value)
}

// DeleteRows implements service.TabularStore.
func (s *Store) DeleteRows(_ context.Context, name string, rows []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return err
	}
	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	last := 0
	for _, r := range sorted {
		if r == last || r < 2 {
			continue
		}
		last = r
		if err := s.file.RemoveRow(name, r); err != nil {
			return fmt.Errorf("failed to remove row %d: %w", r, err)
		}
	}
	return s.save()
}

// PaintRows implements service.Painter.
func (s *Store) PaintRows(_ context.Context, name string, paints []service.RowPaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(name); err != nil {
		return err
	}
	for _, p := range paints {
		style, err := s.fill(p.Color)
		if err != nil {
			return err
		}
		if p.Col < 0 {
			if err := s.file.SetRowStyle(name, p.Row, p.Row, style); err != nil {
				return err
			}
			continue
		}
		addr, err := excelize.CoordinatesToCellName(p.Col+1, p.Row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellStyle(name, addr, addr, style); err != nil {
			return err
		}
	}
	return s.save()
}

// fill returns a cached solid-fill style for color.
func (s *Store) fill(color string) (int, error) {
	if id, ok := s.styles[color]; ok {
		return id, nil
	}
	id, err := s.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("invalid fill %q: %w", color, err)
	}
	s.styles[color] = id
	return id, nil
}

// CellColor returns the fill colour of a cell, or "" when it has none.
func (s *Store) CellColor(name string, row, col int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return "", err
	}
	id, err := s.file.GetCellStyle(name, addr)
	if err != nil {
		return "", err
	}
	style, err := s.file.GetStyle(id)
	if err != nil || style == nil || len(style.Fill.Color) == 0 {
		return "", err
	}
	return style.Fill.Color[0], nil
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
