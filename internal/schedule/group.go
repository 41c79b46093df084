package schedule

import (
	"strconv"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/exceptions"
	"github.com/Veraticus/lessons-ledger/internal/model"
)

// Suppression records an active override that was not emitted because its date is blacked out.
type Suppression struct {
	Override exceptions.Override
	Reason   exceptions.Reason
}

// GroupRecurring expands every course meeting on a weekday of the month. Courses without a
// teacher, course name or known day letter are skipped, as are teachers excluded from weekly
// generation. Each dated lesson is followed by the teacher's travel stipend for that date
// when it has not been claimed yet.
func (p Plan) GroupRecurring(courses []model.GroupCourse, travel *TravelSet) []model.Lesson {
	var out []model.Lesson
	for _, c := range courses {
		if c.Teacher == "" || c.Course == "" {
			continue
		}
		if p.Filter != nil && p.Filter.IgnoresWeekly(c.Teacher) {
			continue
		}
		days, ok := p.weekdayDates(c.Day)
		if !ok {
			continue
		}

		for _, d := range days {
			if p.filtered(c.Teacher, d) {
				continue
			}
			l := p.lesson(c.Teacher, model.ReportGroup, d, c.WeeklyHours)
			l.Course = c.Course
			l.Year = p.year(c.Year)
			out = append(out, l)

			if t, ok := p.travel(c.Teacher, d, travel); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// GroupOverrides expands the active overrides of the month. An override emits one group
// lesson for every course its teacher has on the roster, plus the shared travel stipend.
// Blacked-out overrides emit nothing and are returned as suppressions.
func (p Plan) GroupOverrides(courses []model.GroupCourse, travel *TravelSet) ([]model.Lesson, []Suppression) {
	if p.Filter == nil {
		return nil, nil
	}

	byTeacher := make(map[string][]model.GroupCourse)
	for _, c := range courses {
		if c.Teacher != "" {
			byTeacher[c.Teacher] = append(byTeacher[c.Teacher], c)
		}
	}

	var (
		out        []model.Lesson
		suppressed []Suppression
	)
	for _, o := range p.Filter.OverridesIn(p.Month) {
		if reason := p.Filter.Suppression(o.Teacher, dates.Key(o.Date)); reason.Suppressed() {
			suppressed = append(suppressed, Suppression{Override: o, Reason: reason})
			continue
		}

		for _, c := range byTeacher[o.Teacher] {
			l := p.lesson(o.Teacher, model.ReportGroup, o.Date, c.WeeklyHours)
			l.Course = c.Course
			l.Year = p.year(c.Year)
			out = append(out, l)
		}
		if t, ok := p.travel(o.Teacher, o.Date, travel); ok {
			out = append(out, t)
		}
	}
	return out, suppressed
}

// year falls back to the run year when the roster leaves the year label blank.
func (p Plan) year(label string) string {
	if label != "" {
		return label
	}
	return strconv.Itoa(p.Month.Year)
}
