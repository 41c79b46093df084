package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GroupCourse is one row of the course roster.
type GroupCourse struct {
	WeeklyHours decimal.Decimal
	// TargetWeeks is the annual lesson target; invalid when the cell is blank or not a number.
	TargetWeeks decimal.NullDecimal
	Teacher     string
	Course      string
	Day         string
	Year        string
	Row         int
}

// Frequency is the recurrence policy of a private assignment.
type Frequency int

// Frequency constants.
const (
	FrequencyUnspecified Frequency = iota
	FrequencyWeekly
	FrequencyBiweekly
)

func (f Frequency) String() string {
	switch f {
	case FrequencyUnspecified:
		return "unspecified"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyBiweekly:
		return "biweekly"
	default:
		return "unknown"
	}
}

var biweeklyTokens = []string{"שבועיים", "biweekly", "fortnightly", "every2weeks"}

// ParseFrequency normalizes a roster frequency cell. Blank is unspecified, any text naming an
// every-two-weeks cadence is biweekly, anything else is weekly.
func ParseFrequency(s string) Frequency {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	norm = strings.NewReplacer("-", "", "_", "").Replace(norm)
	if norm == "" {
		return FrequencyUnspecified
	}
	for _, tok := range biweeklyTokens {
		if strings.Contains(norm, tok) {
			return FrequencyBiweekly
		}
	}
	return FrequencyWeekly
}

// PrivateAssignment is one row of the private-lesson roster.
type PrivateAssignment struct {
	Quantity decimal.Decimal
	// AnnualTarget is the yearly lesson target; invalid when the cell is blank or not a number.
	AnnualTarget decimal.NullDecimal
	Teacher      string
	Student      string
	Day          string
	Notes        string
	Year         string
	Frequency    Frequency
	Row          int
	Travel       bool
	Exceptional  bool
}

// IsYes reports whether a roster flag cell is set ("כן", "yes", "true", "v", "x", or the flag word itself).
func IsYes(s, flagWord string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return false
	}
	if flagWord != "" && v == strings.ToLower(flagWord) {
		return true
	}
	switch v {
	case "כן", "yes", "true", "y", "v", "x", "1", "✓", "✔":
		return true
	}
	return false
}
