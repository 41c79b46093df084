package roster

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(names ...string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func TestCourses(t *testing.T) {
	cols := DefaultCourseColumns()
	rows := [][]any{
		header(cols.Teacher, cols.Course, cols.Day, cols.WeeklyHours, cols.Year, cols.TargetWeeks),
		{" Dana ", "Math", "ה", 2.0, "2024-25", 30.0},
		{"", "", "", "", "", ""},
		{"Avi", "Art", "ב", "", "", "n/a"},
	}

	courses, err := Courses("courses", rows, cols)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	dana := courses[0]
	assert.Equal(t, "Dana", dana.Teacher)
	assert.Equal(t, 2, dana.Row)
	assert.True(t, dana.WeeklyHours.Equal(decimal.NewFromInt(2)))
	require.True(t, dana.TargetWeeks.Valid)
	assert.True(t, dana.TargetWeeks.Decimal.Equal(decimal.NewFromInt(30)))

	avi := courses[1]
	assert.Equal(t, 4, avi.Row, "blank rows keep sheet positions")
	assert.True(t, avi.WeeklyHours.Equal(decimal.NewFromInt(1)), "blank hours default to one")
	assert.False(t, avi.TargetWeeks.Valid)
}

func TestCourses_MissingColumn(t *testing.T) {
	_, err := Courses("courses", [][]any{header("שם המורה", "שם הקורס")}, DefaultCourseColumns())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMissingConfig))

	var cfgErr *common.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "יום", cfgErr.Column)
}

func TestCourses_EmptySheet(t *testing.T) {
	_, err := Courses("courses", nil, DefaultCourseColumns())
	assert.True(t, errors.Is(err, common.ErrMissingConfig))
}

func TestAssignments(t *testing.T) {
	cols := DefaultPrivateColumns()
	rows := [][]any{
		header(cols.Teacher, cols.Student, cols.Year, cols.Day, cols.Quantity, cols.Frequency, cols.Travel, cols.AnnualTarget, cols.Notes, cols.Exceptional),
		{"Avi", "Noa", "2024-25", "ג", 1.5, "שבועי", "כן", 20.0, "online", ""},
		{"Avi", "Tal", "", "", "", "כל שבועיים", "", "", "", "חריג"},
		{"", "", "", "", "", "", "", "", "", ""},
	}

	got, err := Assignments("private", rows, cols)
	require.NoError(t, err)
	require.Len(t, got, 2)

	noa := got[0]
	assert.Equal(t, "ג", noa.Day)
	assert.True(t, noa.Quantity.Equal(decimal.NewFromFloat(1.5)))
	assert.Equal(t, model.FrequencyWeekly, noa.Frequency)
	assert.True(t, noa.Travel)
	assert.False(t, noa.Exceptional)
	assert.Equal(t, "online", noa.Notes)
	require.True(t, noa.AnnualTarget.Valid)

	tal := got[1]
	assert.Equal(t, model.FrequencyBiweekly, tal.Frequency)
	assert.True(t, tal.Exceptional)
	assert.False(t, tal.Travel)
	assert.True(t, tal.Quantity.Equal(decimal.NewFromInt(1)))
	assert.False(t, tal.AnnualTarget.Valid)
}

func TestAssignments_MissingStudentColumn(t *testing.T) {
	_, err := Assignments("private", [][]any{header("שם המורה")}, DefaultPrivateColumns())
	assert.True(t, errors.Is(err, common.ErrMissingConfig))
}

func TestExceptions(t *testing.T) {
	cols := DefaultExceptionColumns()
	rows := [][]any{
		header(cols.Header()...),
		{"", "", "2024-08-01", "10/08/2024", ""},
		{"", "", "", "", "note only"},
		{"Dana", "2024-08-05", "", "", ""},
		{"Avi", "garbage", "", "", ""},
	}

	entries, err := Exceptions("exceptions", rows, cols)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 2, entries[0].Row)
	assert.Equal(t, time.Date(2024, time.August, 10, 12, 0, 0, 0, time.UTC), entries[0].To)

	assert.Equal(t, 4, entries[1].Row)
	assert.Equal(t, "Dana", entries[1].Teacher)
	assert.Equal(t, time.Date(2024, time.August, 5, 12, 0, 0, 0, time.UTC), entries[1].Active)

	assert.True(t, entries[2].Active.IsZero(), "unparseable dates read as absent")
}

func TestExceptions_Empty(t *testing.T) {
	entries, err := Exceptions("exceptions", nil, DefaultExceptionColumns())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
