// Package schedule expands the group and private rosters into dated lessons for a month.
//
// Expanders are pure apart from the explicit TravelSet accumulator, which is shared by
// every expansion of one run so that a teacher earns at most one travel stipend per date.
package schedule

import (
	"time"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/exceptions"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// Plan carries the inputs shared by every expansion of a run.
type Plan struct {
	Stamp  time.Time
	Filter *exceptions.State
	Month  model.Month
}

// TravelSet records the (teacher, date) pairs that already have a travel stipend.
type TravelSet struct {
	seen map[string]struct{}
}

// NewTravelSet returns an empty accumulator.
func NewTravelSet() *TravelSet {
	return &TravelSet{seen: make(map[string]struct{})}
}

// Claim marks (teacher, dateKey) and reports whether it was unclaimed.
func (s *TravelSet) Claim(teacher, dateKey string) bool {
	k := teacher + "\x00" + dateKey
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// Len is the number of stipends claimed.
func (s *TravelSet) Len() int {
	return len(s.seen)
}

func (p Plan) lesson(teacher string, typ model.ReportType, date time.Time, qty decimal.Decimal) model.Lesson {
	return model.Lesson{
		Teacher:      teacher,
		Type:         typ,
		Date:         date,
		Quantity:     qty,
		Status:       model.StatusOpen,
		PaymentMonth: p.Month,
		UpdatedAt:    p.Stamp,
	}
}

// travel returns a stipend row for teacher on date unless one was already claimed.
func (p Plan) travel(teacher string, date time.Time, travel *TravelSet) (model.Lesson, bool) {
	if !travel.Claim(teacher, dates.Key(date)) {
		return model.Lesson{}, false
	}
	return p.lesson(teacher, model.ReportTravel, date, decimal.NewFromInt(1)), true
}

// filtered reports whether date is blacked out for teacher.
func (p Plan) filtered(teacher string, date time.Time) bool {
	if p.Filter == nil {
		return false
	}
	return p.Filter.IsFiltered(teacher, dates.Key(date))
}

// weekdayDates resolves a roster day letter into the month's dates.
func (p Plan) weekdayDates(day string) ([]time.Time, bool) {
	wd, ok := dates.WeekdayFromLetter(day)
	if !ok {
		return nil, false
	}
	return dates.WeekdaysIn(p.Month.Year, p.Month.Month, wd), true
}
