package dates

import (
	"strings"
	"time"
	"unicode/utf8"
)

// weekdayLetters maps the roster's day letters onto weekdays; the week starts on Sunday.
var weekdayLetters = map[string]time.Weekday{
	"א": time.Sunday,
	"ב": time.Monday,
	"ג": time.Tuesday,
	"ד": time.Wednesday,
	"ה": time.Thursday,
	"ו": time.Friday,
	"ש": time.Saturday,
}

// WeekdayFromLetter resolves a roster day cell. Only the first letter counts, so both
// "ה" and "ה'" mean Thursday.
func WeekdayFromLetter(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	wd, ok := weekdayLetters[string(r)]
	return wd, ok
}

// WeekdaysIn returns every date of year/month that falls on wd, in ascending order.
func WeekdaysIn(year int, month time.Month, wd time.Weekday) []time.Time {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7

	var out []time.Time
	for d := first.AddDate(0, 0, offset); d.Month() == month; d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}
