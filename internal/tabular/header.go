// Package tabular maps live header rows to column positions and coerces raw cells.
package tabular

import (
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/common"
)

// HeaderMap resolves column names to 0-based positions of one sheet's header row.
type HeaderMap struct {
	index map[string]int
	sheet string
	width int
}

// NewHeaderMap builds the map from a live header row. Names are trimmed;
// the first occurrence of a duplicated name wins.
func NewHeaderMap(sheet string, header []any) HeaderMap {
	hm := HeaderMap{
		sheet: sheet,
		index: make(map[string]int, len(header)),
		width: len(header),
	}
	for i, cell := range header {
		name := strings.TrimSpace(String(cell))
		if name == "" {
			continue
		}
		if _, dup := hm.index[name]; !dup {
			hm.index[name] = i
		}
	}
	return hm
}

// Sheet is the name of the sheet the header belongs to.
func (h HeaderMap) Sheet() string {
	return h.sheet
}

// Width is the number of cells in the header row.
func (h HeaderMap) Width() int {
	return h.width
}

// Index returns the column of name, or -1.
func (h HeaderMap) Index(name string) int {
	if i, ok := h.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the header contains name.
func (h HeaderMap) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Require returns a *common.ConfigError naming the first missing column.
func (h HeaderMap) Require(names ...string) error {
	for _, name := range names {
		if !h.Has(name) {
			return &common.ConfigError{Sheet: h.sheet, Column: name}
		}
	}
	return nil
}

// Cell returns the value of column name in row, or nil when the column or cell is absent.
func (h HeaderMap) Cell(row []any, name string) any {
	i := h.Index(name)
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

// Text returns the trimmed string form of column name in row.
func (h HeaderMap) Text(row []any, name string) string {
	return String(h.Cell(row, name))
}

// Names returns the header names in column order; blank header cells are "".
func (h HeaderMap) Names() []string {
	names := make([]string, h.width)
	for name, i := range h.index {
		names[i] = name
	}
	return names
}
