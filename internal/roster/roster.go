// Package roster decodes the read-only source tables: the group course roster, the
// private-lesson roster and the exception tables. Columns are located by header name.
package roster

import (
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/tabular"
	"github.com/shopspring/decimal"
)

// CourseColumns names the course roster headers.
type CourseColumns struct {
	Teacher     string `mapstructure:"teacher"`
	Course      string `mapstructure:"course"`
	Day         string `mapstructure:"day"`
	WeeklyHours string `mapstructure:"weekly_hours"`
	Year        string `mapstructure:"year"`
	TargetWeeks string `mapstructure:"target_weeks"`
}

// DefaultCourseColumns returns the headers of the course roster sheet.
func DefaultCourseColumns() CourseColumns {
	return CourseColumns{
		Teacher:     "שם המורה",
		Course:      "שם הקורס",
		Day:         "יום",
		WeeklyHours: `מס ש"ש`,
		Year:        "שנה",
		TargetWeeks: "מס' שבועות",
	}
}

// PrivateColumns names the private roster headers.
type PrivateColumns struct {
	Teacher      string `mapstructure:"teacher"`
	Student      string `mapstructure:"student"`
	Year         string `mapstructure:"year"`
	Day          string `mapstructure:"day"`
	Quantity     string `mapstructure:"quantity"`
	Frequency    string `mapstructure:"frequency"`
	Travel       string `mapstructure:"travel"`
	AnnualTarget string `mapstructure:"annual_target"`
	Notes        string `mapstructure:"notes"`
	Exceptional  string `mapstructure:"exceptional"`
}

// DefaultPrivateColumns returns the headers of the private roster sheet.
func DefaultPrivateColumns() PrivateColumns {
	return PrivateColumns{
		Teacher:      "שם המורה",
		Student:      "שם התלמיד",
		Year:         "שנה",
		Day:          "יום בשבוע",
		Quantity:     "כמות שיעורים",
		Frequency:    "תדירות",
		Travel:       "תשלום נסיעות למורה",
		AnnualTarget: "מספר שיעורים בשנה",
		Notes:        "הערות",
		Exceptional:  "חריג",
	}
}

// ExceptionalFlag is the cell value marking an assignment as exceptional.
const ExceptionalFlag = "חריג"

// Courses decodes the course roster. rows[0] is the header; teacher, course and day are required.
func Courses(sheet string, rows [][]any, cols CourseColumns) ([]model.GroupCourse, error) {
	if len(rows) == 0 {
		return nil, tabular.NewHeaderMap(sheet, nil).Require(cols.Teacher)
	}
	hm := tabular.NewHeaderMap(sheet, rows[0])
	if err := hm.Require(cols.Teacher, cols.Course, cols.Day); err != nil {
		return nil, err
	}

	out := make([]model.GroupCourse, 0, len(rows)-1)
	for i, row := range rows[1:] {
		c := model.GroupCourse{
			Row:         i + 2,
			Teacher:     hm.Text(row, cols.Teacher),
			Course:      hm.Text(row, cols.Course),
			Day:         hm.Text(row, cols.Day),
			Year:        hm.Text(row, cols.Year),
			WeeklyHours: tabular.NumberOr(hm.Cell(row, cols.WeeklyHours), decimal.NewFromInt(1)),
		}
		if c.Teacher == "" && c.Course == "" {
			continue
		}
		if d, ok := tabular.Number(hm.Cell(row, cols.TargetWeeks)); ok {
			c.TargetWeeks = decimal.NewNullDecimal(d)
		}
		out = append(out, c)
	}
	return out, nil
}

// Assignments decodes the private roster. rows[0] is the header; teacher and student are required.
func Assignments(sheet string, rows [][]any, cols PrivateColumns) ([]model.PrivateAssignment, error) {
	if len(rows) == 0 {
		return nil, tabular.NewHeaderMap(sheet, nil).Require(cols.Teacher)
	}
	hm := tabular.NewHeaderMap(sheet, rows[0])
	if err := hm.Require(cols.Teacher, cols.Student); err != nil {
		return nil, err
	}

	out := make([]model.PrivateAssignment, 0, len(rows)-1)
	for i, row := range rows[1:] {
		a := model.PrivateAssignment{
			Row:         i + 2,
			Teacher:     hm.Text(row, cols.Teacher),
			Student:     hm.Text(row, cols.Student),
			Year:        hm.Text(row, cols.Year),
			Day:         hm.Text(row, cols.Day),
			Notes:       hm.Text(row, cols.Notes),
			Frequency:   model.ParseFrequency(hm.Text(row, cols.Frequency)),
			Quantity:    tabular.NumberOr(hm.Cell(row, cols.Quantity), decimal.NewFromInt(1)),
			Travel:      model.IsYes(hm.Text(row, cols.Travel), ""),
			Exceptional: hm.Text(row, cols.Exceptional) == ExceptionalFlag,
		}
		if a.Teacher == "" && a.Student == "" {
			continue
		}
		if d, ok := tabular.Number(hm.Cell(row, cols.AnnualTarget)); ok {
			a.AnnualTarget = decimal.NewNullDecimal(d)
		}
		out = append(out, a)
	}
	return out, nil
}
