package ledger

import (
	"time"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/tabular"
	"github.com/shopspring/decimal"
)

// StampLayout is the layout of the last-update cell.
const StampLayout = "2006-01-02 15:04:05"

// Columns names the ledger headers.
type Columns struct {
	Teacher      string `mapstructure:"teacher"`
	Type         string `mapstructure:"type"`
	Course       string `mapstructure:"course"`
	Student      string `mapstructure:"student"`
	Year         string `mapstructure:"year"`
	PaymentMonth string `mapstructure:"payment_month"`
	Date         string `mapstructure:"date"`
	Quantity     string `mapstructure:"quantity"`
	Status       string `mapstructure:"status"`
	Notes        string `mapstructure:"notes"`
	Remaining    string `mapstructure:"remaining"`
	UpdatedAt    string `mapstructure:"updated_at"`
	Message      string `mapstructure:"message"`
}

// DefaultColumns returns the ledger headers of the workbook.
func DefaultColumns() Columns {
	return Columns{
		Teacher:      "שם המורה",
		Type:         "סוג הדיווח",
		Course:       "שם הקורס",
		Student:      "שם התלמיד",
		Year:         "שנה",
		PaymentMonth: "חודש תשלום",
		Date:         "תאריך השיעור",
		Quantity:     "כמות",
		Status:       "סטטוס",
		Notes:        "הערות",
		Remaining:    "סך השיעורים שנותרו",
		UpdatedAt:    "מועד עדכון",
		Message:      "הודעת מערכת",
	}
}

// Header returns the canonical column order of a new ledger sheet.
func (c Columns) Header() []string {
	return []string{
		c.Teacher, c.Type, c.Course, c.Student, c.Year, c.PaymentMonth, c.Date,
		c.Quantity, c.Status, c.Notes, c.Remaining, c.UpdatedAt, c.Message,
	}
}

// Layout binds Columns to a live header row.
type Layout struct {
	Header tabular.HeaderMap
	Cols   Columns
}

// NewLayout checks that every ledger column is present in header.
func NewLayout(sheet string, header []any, cols Columns) (Layout, error) {
	hm := tabular.NewHeaderMap(sheet, header)
	if err := hm.Require(cols.Header()...); err != nil {
		return Layout{}, err
	}
	return Layout{Header: hm, Cols: cols}, nil
}

// Index returns the column position of a ledger column name.
func (l Layout) Index(name string) int {
	return l.Header.Index(name)
}

// Decode reads a ledger row. Bad cells degrade to blank values.
func (l Layout) Decode(row []any) model.Lesson {
	h, c := l.Header, l.Cols
	lesson := model.Lesson{
		Teacher:  h.Text(row, c.Teacher),
		Type:     model.ReportType(h.Text(row, c.Type)),
		Course:   h.Text(row, c.Course),
		Student:  h.Text(row, c.Student),
		Year:     h.Text(row, c.Year),
		Date:     tabular.Date(h.Cell(row, c.Date)),
		Quantity: tabular.NumberOr(h.Cell(row, c.Quantity), decimal.Zero),
		Status:   model.Status(h.Text(row, c.Status)),
		Notes:    h.Text(row, c.Notes),
		Message:  h.Text(row, c.Message),
	}
	lesson.PaymentMonth = decodeMonth(h.Cell(row, c.PaymentMonth))
	if d, ok := tabular.Number(h.Cell(row, c.Remaining)); ok {
		lesson.Remaining = decimal.NewNullDecimal(d)
	}
	lesson.UpdatedAt = decodeStamp(h.Cell(row, c.UpdatedAt))
	return lesson
}

func decodeStamp(v any) time.Time {
	if s, ok := v.(string); ok {
		if t, err := time.Parse(StampLayout, s); err == nil {
			return t
		}
	}
	if t, ok := v.(time.Time); ok {
		return t
	}
	return tabular.Date(v)
}

// decodeMonth accepts "MM-YYYY" text or a date that the store converted the text into.
func decodeMonth(v any) model.Month {
	if s, ok := v.(string); ok {
		if m, err := model.ParseMonth(s); err == nil {
			return m
		}
	}
	if t, ok := dates.ParseFlexible(v); ok {
		return model.MonthOf(t)
	}
	return model.Month{}
}

// Encode writes a lesson into a row as wide as the live header.
func (l Layout) Encode(lesson model.Lesson) []any {
	row := make([]any, l.Header.Width())
	for i := range row {
		row[i] = ""
	}
	set := func(name string, v any) {
		if i := l.Header.Index(name); i >= 0 {
			row[i] = v
		}
	}

	c := l.Cols
	set(c.Teacher, lesson.Teacher)
	set(c.Type, string(lesson.Type))
	set(c.Course, lesson.Course)
	set(c.Student, lesson.Student)
	set(c.Year, lesson.Year)
	set(c.PaymentMonth, lesson.PaymentMonth.String())
	set(c.Date, dates.Key(lesson.Date))
	set(c.Quantity, tabular.Float(lesson.Quantity))
	set(c.Status, string(lesson.Status))
	set(c.Notes, lesson.Notes)
	set(c.Remaining, RemainingCell(lesson.Remaining))
	if !lesson.UpdatedAt.IsZero() {
		set(c.UpdatedAt, lesson.UpdatedAt.Format(StampLayout))
	}
	set(c.Message, lesson.Message)
	return row
}

// RemainingCell renders a remaining counter; an invalid counter is a blank cell.
func RemainingCell(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return tabular.Float(d.Decimal)
}
