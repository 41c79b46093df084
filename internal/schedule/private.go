package schedule

import (
	"time"

	"github.com/Veraticus/lessons-ledger/internal/model"
)

// PlaceholderCounter reports how many undated private rows already exist (or are queued)
// for a teacher and student in a payment month. *ledger.Index satisfies it.
type PlaceholderCounter interface {
	Placeholders(teacher, student string, m model.Month) int
}

// PrivateStats counts what the private expander emitted.
type PrivateStats struct {
	Exceptional  int
	Placeholders int
	Dated        int
	Travel       int
}

type pair struct {
	teacher string
	student string
}

// Private expands the private roster. Each assignment is processed by exactly one policy.
// Placeholder rows are topped up against counter, so undated rows already in the ledger for
// the month count toward the target. Exceptional assignments collapse per (teacher, student)
// with the last roster row winning.
func (p Plan) Private(
	assignments []model.PrivateAssignment,
	activeDates map[string][]time.Time,
	counter PlaceholderCounter,
	travel *TravelSet,
) ([]model.Lesson, PrivateStats) {
	var (
		out   []model.Lesson
		stats PrivateStats
	)

	tagged := Tag(assignments, activeDates)

	// Exception overrides first so their dates claim travel before recurring rows do.
	var order []pair
	latest := make(map[pair]model.PrivateAssignment)
	for _, t := range tagged {
		if t.Policy != PolicyException {
			continue
		}
		k := pair{t.Assignment.Teacher, t.Assignment.Student}
		if _, ok := latest[k]; !ok {
			order = append(order, k)
		}
		latest[k] = t.Assignment
	}
	for _, k := range order {
		a := latest[k]
		for _, d := range activeDates[a.Teacher] {
			if p.filtered(a.Teacher, d) {
				continue
			}
			out = append(out, p.privateLesson(a, d))
			stats.Exceptional++
		}
	}

	handled := make(map[Policy]map[pair]struct{})
	for _, t := range tagged {
		a := t.Assignment
		switch t.Policy {
		case PolicyBiweekly, PolicyFlexible:
			k := pair{a.Teacher, a.Student}
			if handled[t.Policy] == nil {
				handled[t.Policy] = make(map[pair]struct{})
			}
			if _, done := handled[t.Policy][k]; done {
				continue
			}
			handled[t.Policy][k] = struct{}{}

			existing := 0
			if counter != nil {
				existing = counter.Placeholders(a.Teacher, a.Student, p.Month)
			}
			existing += countPlaceholders(out, a.Teacher, a.Student)
			for i := existing; i < t.Policy.placeholderTarget(); i++ {
				out = append(out, p.placeholder(a))
				stats.Placeholders++
			}

		case PolicyWeekly:
			days, _ := p.weekdayDates(a.Day)
			for _, d := range days {
				if p.filtered(a.Teacher, d) {
					continue
				}
				out = append(out, p.privateLesson(a, d))
				stats.Dated++

				if !a.Travel {
					continue
				}
				if tr, ok := p.travel(a.Teacher, d, travel); ok {
					out = append(out, tr)
					stats.Travel++
				}
			}

		case PolicyNone, PolicyException:
		}
	}
	return out, stats
}

func (p Plan) privateLesson(a model.PrivateAssignment, date time.Time) model.Lesson {
	l := p.lesson(a.Teacher, model.ReportPrivate, date, a.Quantity)
	l.Student = a.Student
	l.Year = p.year(a.Year)
	l.Notes = a.Notes
	return l
}

func (p Plan) placeholder(a model.PrivateAssignment) model.Lesson {
	l := p.privateLesson(a, time.Time{})
	l.Message = model.MessageDateRequired
	return l
}

func countPlaceholders(lessons []model.Lesson, teacher, student string) int {
	n := 0
	for _, l := range lessons {
		if l.IsPlaceholder() && l.Teacher == teacher && l.Student == student {
			n++
		}
	}
	return n
}
