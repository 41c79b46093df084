package ledger

import (
	"sort"

	"github.com/Veraticus/lessons-ledger/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Rows decodes every data row of a sheet read (rows[0] is the header).
// Blank rows are skipped; positions are 1-based sheet rows.
func (l Layout) Rows(values [][]any) []Row {
	if len(values) < 2 {
		return nil
	}
	out := make([]Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		if blank(raw) {
			continue
		}
		out = append(out, Row{Position: i + 2, Lesson: l.Decode(raw)})
	}
	return out
}

func blank(row []any) bool {
	for _, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return false
	}
	return true
}

// InMonth returns the sheet rows whose lesson date falls in m.
func InMonth(rows []Row, m model.Month) []int {
	var out []int
	for _, r := range rows {
		if m.Contains(r.Lesson.Date) {
			out = append(out, r.Position)
		}
	}
	return out
}

// NewCollator returns the comparator used for teacher, course and student names.
func NewCollator() *collate.Collator {
	return collate.New(language.Hebrew, collate.Loose)
}

// SortForInsert orders new rows by payment month, teacher, report type (descending)
// and lesson date, with undated rows after dated ones.
func SortForInsert(lessons []model.Lesson) {
	col := NewCollator()
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if a.PaymentMonth != b.PaymentMonth {
			return a.PaymentMonth.Before(b.PaymentMonth)
		}
		if c := col.CompareString(a.Teacher, b.Teacher); c != 0 {
			return c < 0
		}
		if a.Type != b.Type {
			return a.Type > b.Type
		}
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		return a.Date.Before(b.Date)
	})
}
