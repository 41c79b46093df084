package schedule

import (
	"time"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/model"
)

// Policy is the generation rule chosen for a private assignment.
type Policy int

// Policies in priority order. PolicyNone marks assignments that generate nothing.
const (
	PolicyNone Policy = iota
	PolicyException
	PolicyBiweekly
	PolicyFlexible
	PolicyWeekly
)

// Placeholder targets per (teacher, student, month).
const (
	BiweeklyPlaceholders = 2
	FlexiblePlaceholders = 4
)

func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicyException:
		return "exception"
	case PolicyBiweekly:
		return "biweekly"
	case PolicyFlexible:
		return "flexible"
	case PolicyWeekly:
		return "weekly"
	default:
		return "unknown"
	}
}

// placeholderTarget is the number of undated rows a quota policy keeps for a month.
func (p Policy) placeholderTarget() int {
	switch p {
	case PolicyBiweekly:
		return BiweeklyPlaceholders
	case PolicyFlexible:
		return FlexiblePlaceholders
	default:
		return 0
	}
}

// Classify picks the first matching policy for an assignment. activeDates holds the in-month
// active override dates per teacher; an exceptional assignment whose teacher has none falls
// through to the frequency rules.
func Classify(a model.PrivateAssignment, activeDates map[string][]time.Time) Policy {
	if a.Teacher == "" || a.Student == "" {
		return PolicyNone
	}
	if a.Exceptional && len(activeDates[a.Teacher]) > 0 {
		return PolicyException
	}
	if a.Frequency == model.FrequencyBiweekly {
		return PolicyBiweekly
	}
	_, hasDay := dates.WeekdayFromLetter(a.Day)
	if !hasDay && a.Frequency == model.FrequencyUnspecified {
		return PolicyFlexible
	}
	if hasDay {
		return PolicyWeekly
	}
	return PolicyNone
}

// Tagged pairs an assignment with its policy.
type Tagged struct {
	Assignment model.PrivateAssignment
	Policy     Policy
}

// Tag classifies every assignment before any generation happens.
func Tag(assignments []model.PrivateAssignment, activeDates map[string][]time.Time) []Tagged {
	out := make([]Tagged, len(assignments))
	for i, a := range assignments {
		out[i] = Tagged{Assignment: a, Policy: Classify(a, activeDates)}
	}
	return out
}
