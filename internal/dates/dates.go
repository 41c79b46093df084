// Package dates normalizes the date shapes found in workbook cells.
//
// Every parsed date is anchored at 12:00 UTC on its calendar day so that
// time-zone conversions can never move it to a neighbouring day.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// KeyLayout is the layout of a date key.
const KeyLayout = "2006-01-02"

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 12, 0, 0, 0, time.UTC)

var (
	isoPattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// fallbackLayouts are tried in order for strings that match neither fixed shape.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"2006/01/02",
	"02.01.2006",
	"2.1.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
}

// Noon returns the calendar day of t (in t's own location) at 12:00 UTC.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// FromSerial converts a spreadsheet day serial. Fractions of a day are dropped.
func FromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	days := math.Floor(serial)
	if days < -693593 || days > 2958465 {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(days)), true
}

// Serial converts a date to its spreadsheet day serial.
func Serial(t time.Time) float64 {
	return math.Round(Noon(t).Sub(serialEpoch).Hours() / 24)
}

// ParseFlexible normalizes a cell value into a date. It accepts time.Time, numeric day
// serials (any Go numeric type or a numeric string), "YYYY-MM-DD", "D/M/YYYY" and a set of
// common free-form layouts. The second result is false when the value is not a date.
func ParseFlexible(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return Noon(val), true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return ParseFlexible(*val)
	case float64:
		return FromSerial(val)
	case float32:
		return FromSerial(float64(val))
	case int:
		return FromSerial(float64(val))
	case int64:
		return FromSerial(float64(val))
	case int32:
		return FromSerial(float64(val))
	case string:
		return parseString(val)
	default:
		return time.Time{}, false
	}
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := isoPattern.FindStringSubmatch(s); m != nil {
		return civil(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := slashPattern.FindStringSubmatch(s); m != nil {
		return civil(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	// NaN and Inf parse as floats and are rejected by FromSerial.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FromSerial(f)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Noon(t), true
		}
	}
	return time.Time{}, false
}

// civil builds a date and rejects components that would roll over (31/2 is not March 2nd).
func civil(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Key formats a date as "YYYY-MM-DD". The zero time yields "".
func Key(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(KeyLayout)
}

// InRange reports whether key lies in [from, to]. Keys compare as strings.
func InRange(key, from, to string) bool {
	return from <= key && key <= to
}
