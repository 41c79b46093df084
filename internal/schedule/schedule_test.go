package schedule

import (
	"testing"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/exceptions"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aug = model.Month{Year: 2024, Month: time.August}

func day(d int) time.Time {
	return time.Date(2024, time.August, d, 12, 0, 0, 0, time.UTC)
}

func plan(entries ...exceptions.Entry) Plan {
	return Plan{Month: aug, Filter: exceptions.Parse(entries), Stamp: day(31)}
}

func course(teacher, name, dayLetter string) model.GroupCourse {
	return model.GroupCourse{Teacher: teacher, Course: name, Day: dayLetter, WeeklyHours: decimal.NewFromInt(2)}
}

func keysOf(lessons []model.Lesson, typ model.ReportType) []string {
	var out []string
	for _, l := range lessons {
		if l.Type == typ {
			out = append(out, dates.Key(l.Date))
		}
	}
	return out
}

type fixedCounter map[string]int

func (c fixedCounter) Placeholders(teacher, student string, _ model.Month) int {
	return c[teacher+"/"+student]
}

func TestGroupRecurring_Thursdays(t *testing.T) {
	got := plan().GroupRecurring([]model.GroupCourse{course("Dana", "Piano", "ה")}, NewTravelSet())

	want := []string{"2024-08-01", "2024-08-08", "2024-08-15", "2024-08-22", "2024-08-29"}
	assert.Equal(t, want, keysOf(got, model.ReportGroup))
	assert.Equal(t, want, keysOf(got, model.ReportTravel))

	for _, l := range got {
		assert.Equal(t, aug, l.PaymentMonth)
		assert.Equal(t, model.StatusOpen, l.Status)
		if l.Type == model.ReportGroup {
			assert.True(t, l.Quantity.Equal(decimal.NewFromInt(2)))
			assert.Equal(t, "2024", l.Year, "blank roster year falls back to the run year")
		}
	}
}

func TestGroupRecurring_TravelOncePerTeacherDate(t *testing.T) {
	courses := []model.GroupCourse{
		course("Dana", "Piano", "ה"),
		course("Dana", "Guitar", "ה"),
		course("Avi", "Drums", "ה"),
	}
	got := plan().GroupRecurring(courses, NewTravelSet())

	assert.Len(t, keysOf(got, model.ReportGroup), 15)
	assert.Len(t, keysOf(got, model.ReportTravel), 10, "one stipend per teacher per date")

	seen := make(map[ledger.Key]bool)
	for _, l := range got {
		k := ledger.KeyOf(l)
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestGroupRecurring_Skips(t *testing.T) {
	p := plan(
		exceptions.Entry{Teacher: "Avi"},
		exceptions.Entry{From: day(8)},
		exceptions.Entry{Teacher: "Dana", From: day(20), To: day(25)},
	)
	courses := []model.GroupCourse{
		course("Dana", "Piano", "ה"),
		course("Avi", "Drums", "ה"),
		course("", "Orphan", "ה"),
		course("Noa", "Harp", "?"),
	}

	got := p.GroupRecurring(courses, NewTravelSet())
	assert.Equal(t, []string{"2024-08-01", "2024-08-15", "2024-08-29"}, keysOf(got, model.ReportGroup))
}

func TestGroupOverrides(t *testing.T) {
	p := plan(
		exceptions.Entry{Teacher: "Dana", Active: day(4), Row: 2},
		exceptions.Entry{Teacher: "Dana", Active: time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC), Row: 3},
		exceptions.Entry{Teacher: "Noa", Active: day(6), Row: 4},
	)
	courses := []model.GroupCourse{course("Dana", "Piano", "ה"), course("Dana", "Guitar", "א")}

	got, suppressed := p.GroupOverrides(courses, NewTravelSet())
	assert.Empty(t, suppressed)
	assert.Equal(t, []string{"2024-08-04", "2024-08-04"}, keysOf(got, model.ReportGroup), "cross join with the teacher's courses")
	assert.Equal(t, []string{"2024-08-04", "2024-08-06"}, keysOf(got, model.ReportTravel))
}

func TestGroupOverrides_GlobalBlackoutDominates(t *testing.T) {
	p := plan(
		exceptions.Entry{From: day(1), To: day(10)},
		exceptions.Entry{Teacher: "A", Active: day(5), Row: 7},
	)

	got, suppressed := p.GroupOverrides([]model.GroupCourse{course("A", "Piano", "ה")}, NewTravelSet())
	assert.Empty(t, got)
	require.Len(t, suppressed, 1)
	assert.Equal(t, 7, suppressed[0].Override.Row)
	assert.Equal(t, exceptions.ReasonGlobalRange, suppressed[0].Reason)
}

func TestGroupAndOverride_ShareTravel(t *testing.T) {
	travel := NewTravelSet()
	courses := []model.GroupCourse{course("Dana", "Piano", "ה")}

	// An override row also excludes its teacher from weekly generation, so the
	// recurring pass runs against an empty filter.
	recurring := plan().GroupRecurring(courses, travel)
	overrides, _ := plan(exceptions.Entry{Teacher: "Dana", Active: day(1)}).GroupOverrides(courses, travel)

	assert.Len(t, keysOf(recurring, model.ReportTravel), 5)
	assert.Empty(t, keysOf(overrides, model.ReportTravel), "2024-08-01 already has a stipend")
	assert.Equal(t, 5, travel.Len())
}

func assignment(teacher, student string) model.PrivateAssignment {
	return model.PrivateAssignment{Teacher: teacher, Student: student, Quantity: decimal.NewFromInt(1)}
}

func TestClassify(t *testing.T) {
	active := map[string][]time.Time{"Dana": {day(4)}}

	weekly := assignment("Dana", "Yoni")
	weekly.Day = "ב"

	biweekly := weekly
	biweekly.Frequency = model.FrequencyBiweekly

	exceptional := weekly
	exceptional.Exceptional = true

	fallsThrough := assignment("Avi", "Yoni")
	fallsThrough.Day = "ב"
	fallsThrough.Exceptional = true

	weeklyNoDay := assignment("Dana", "Yoni")
	weeklyNoDay.Frequency = model.FrequencyWeekly

	tests := []struct {
		name string
		a    model.PrivateAssignment
		want Policy
	}{
		{name: "weekly", a: weekly, want: PolicyWeekly},
		{name: "biweekly beats weekday", a: biweekly, want: PolicyBiweekly},
		{name: "exceptional with active dates", a: exceptional, want: PolicyException},
		{name: "exceptional without active dates falls through", a: fallsThrough, want: PolicyWeekly},
		{name: "no day no frequency", a: assignment("Dana", "Yoni"), want: PolicyFlexible},
		{name: "frequency without day", a: weeklyNoDay, want: PolicyNone},
		{name: "missing student", a: assignment("Dana", ""), want: PolicyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.a, active))
		})
	}
}

func TestPrivate_BiweeklyTopUp(t *testing.T) {
	a := assignment("Dana", "Yoni")
	a.Frequency = model.FrequencyBiweekly

	tests := []struct {
		name     string
		existing int
		want     int
	}{
		{name: "none existing", existing: 0, want: 2},
		{name: "one existing", existing: 1, want: 1},
		{name: "two existing", existing: 2, want: 0},
		{name: "three existing", existing: 3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := fixedCounter{"Dana/Yoni": tt.existing}
			got, stats := plan().Private([]model.PrivateAssignment{a, a}, nil, counter, NewTravelSet())

			require.Len(t, got, tt.want)
			assert.Equal(t, tt.want, stats.Placeholders)
			for _, l := range got {
				assert.True(t, l.IsPlaceholder())
				assert.Equal(t, model.MessageDateRequired, l.Message)
			}
		})
	}
}

func TestPrivate_FlexibleTopUpCountsLedger(t *testing.T) {
	existing := model.Lesson{Teacher: "Dana", Type: model.ReportPrivate, Student: "Yoni", PaymentMonth: aug}
	ix := ledger.Build([]ledger.Row{{Position: 2, Lesson: existing}})

	got, _ := plan().Private([]model.PrivateAssignment{assignment("Dana", "Yoni")}, nil, ix, NewTravelSet())
	assert.Len(t, got, 3)
}

func TestPrivate_WeeklyWithTravel(t *testing.T) {
	a := assignment("Dana", "Yoni")
	a.Day = "ה"
	a.Travel = true

	travel := NewTravelSet()
	_ = plan().GroupRecurring([]model.GroupCourse{course("Dana", "Piano", "ה")}, travel)

	got, stats := plan(exceptions.Entry{Teacher: "Dana", From: day(15)}).Private([]model.PrivateAssignment{a}, nil, nil, travel)
	assert.Equal(t, []string{"2024-08-01", "2024-08-08", "2024-08-22", "2024-08-29"}, keysOf(got, model.ReportPrivate))
	assert.Empty(t, keysOf(got, model.ReportTravel), "group pass already paid travel on these dates")
	assert.Equal(t, 4, stats.Dated)
}

func TestPrivate_ExceptionalUsesActiveDates(t *testing.T) {
	a := assignment("Dana", "Yoni")
	a.Day = "ה"
	a.Exceptional = true
	a.Notes = "first"

	last := a
	last.Notes = "last"

	active := map[string][]time.Time{"Dana": {day(4), day(11)}}
	p := plan(exceptions.Entry{From: day(11)})

	got, stats := p.Private([]model.PrivateAssignment{a, last}, active, nil, NewTravelSet())
	require.Len(t, got, 1)
	assert.Equal(t, "2024-08-04", dates.Key(got[0].Date))
	assert.Equal(t, "last", got[0].Notes)
	assert.Equal(t, 1, stats.Exceptional)
}
