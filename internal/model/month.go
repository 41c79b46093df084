package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var hebrewMonths = [12]string{
	"ינואר", "פברואר", "מרץ", "אפריל", "מאי", "יוני",
	"יולי", "אוגוסט", "ספטמבר", "אוקטובר", "נובמבר", "דצמבר",
}

// Month is a calendar month used as the billing period of a run.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth accepts "MM-YYYY" (the payment-month cell format) or "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Month{}, fmt.Errorf("month %q: expected MM-YYYY", s)
	}

	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil {
		return Month{}, fmt.Errorf("month %q: expected MM-YYYY", s)
	}

	m := Month{Year: b, Month: time.Month(a)}
	if len(parts[0]) == 4 {
		m = Month{Year: a, Month: time.Month(b)}
	}

	if m.Month < time.January || m.Month > time.December || m.Year < 1900 || m.Year > 9999 {
		return Month{}, fmt.Errorf("month %q out of range", s)
	}
	return m, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether m is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// String formats m as "MM-YYYY".
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d-%04d", int(m.Month), m.Year)
}

// Label is the human-readable month used in audit records, e.g. "אוגוסט 2024".
func (m Month) Label() string {
	if m.Month < time.January || m.Month > time.December {
		return m.String()
	}
	return fmt.Sprintf("%s %d", hebrewMonths[m.Month-1], m.Year)
}

// Contains reports whether t falls in m.
func (m Month) Contains(t time.Time) bool {
	return !t.IsZero() && t.Year() == m.Year && t.Month() == m.Month
}

// First returns the first day of the month at 12:00 UTC.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 12, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// Before orders months chronologically.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}
