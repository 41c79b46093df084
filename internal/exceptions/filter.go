// Package exceptions classifies the exception table into blackout filters, one-off active
// dates and teachers excluded from weekly generation.
package exceptions

import (
	"sort"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/model"
)

// Entry is one raw exception row. Zero times mean the cell was blank or unparseable.
type Entry struct {
	Active  time.Time
	From    time.Time
	To      time.Time
	Teacher string
	Row     int
}

// Range is an inclusive blackout range of date keys.
type Range struct {
	From string
	To   string
}

// Contains reports whether key lies in the range.
func (r Range) Contains(key string) bool {
	return dates.InRange(key, r.From, r.To)
}

// Override is a one-off active date for a teacher.
type Override struct {
	Date    time.Time
	Teacher string
	Row     int
}

// State is the parsed filter for one run. It is not modified after Parse.
type State struct {
	globalSingles  map[string]struct{}
	teacherSingles map[string]map[string]struct{}
	teacherRanges  map[string][]Range
	ignoreWeekly   map[string]struct{}
	globalRanges   []Range
	overrides      []Override
}

// Parse classifies entries. Each clause is evaluated on its own, so one row can
// contribute to several structures.
func Parse(entries []Entry) *State {
	s := &State{
		globalSingles:  make(map[string]struct{}),
		teacherSingles: make(map[string]map[string]struct{}),
		teacherRanges:  make(map[string][]Range),
		ignoreWeekly:   make(map[string]struct{}),
	}

	for _, e := range entries {
		hasTeacher := e.Teacher != ""
		hasFrom := !e.From.IsZero()
		hasTo := !e.To.IsZero()
		fromKey, toKey := dates.Key(e.From), dates.Key(e.To)

		if hasTeacher && !e.Active.IsZero() {
			s.overrides = append(s.overrides, Override{Teacher: e.Teacher, Date: e.Active, Row: e.Row})
		}
		if hasTeacher && !hasFrom && !hasTo {
			s.ignoreWeekly[e.Teacher] = struct{}{}
		}
		if !hasTeacher && hasFrom && !hasTo {
			s.globalSingles[fromKey] = struct{}{}
		}
		if !hasTeacher && hasFrom && hasTo {
			s.globalRanges = append(s.globalRanges, Range{From: fromKey, To: toKey})
		}
		if hasTeacher && hasFrom && !hasTo {
			if s.teacherSingles[e.Teacher] == nil {
				s.teacherSingles[e.Teacher] = make(map[string]struct{})
			}
			s.teacherSingles[e.Teacher][fromKey] = struct{}{}
		}
		if hasTeacher && hasFrom && hasTo {
			s.teacherRanges[e.Teacher] = append(s.teacherRanges[e.Teacher], Range{From: fromKey, To: toKey})
		}
	}
	return s
}

// IsGloballyFiltered reports whether key is a global blackout date.
func (s *State) IsGloballyFiltered(key string) bool {
	if _, ok := s.globalSingles[key]; ok {
		return true
	}
	for _, r := range s.globalRanges {
		if r.Contains(key) {
			return true
		}
	}
	return false
}

// IsTeacherFiltered reports whether key is a blackout date for teacher.
func (s *State) IsTeacherFiltered(teacher, key string) bool {
	if _, ok := s.teacherSingles[teacher][key]; ok {
		return true
	}
	for _, r := range s.teacherRanges[teacher] {
		if r.Contains(key) {
			return true
		}
	}
	return false
}

// Suppression explains why a date was filtered for a teacher.
// Global blackouts are checked first and dominate teacher blackouts.
func (s *State) Suppression(teacher, key string) Reason {
	if _, ok := s.globalSingles[key]; ok {
		return ReasonGlobalDate
	}
	for _, r := range s.globalRanges {
		if r.Contains(key) {
			return ReasonGlobalRange
		}
	}
	if _, ok := s.teacherSingles[teacher][key]; ok {
		return ReasonTeacherDate
	}
	for _, r := range s.teacherRanges[teacher] {
		if r.Contains(key) {
			return ReasonTeacherRange
		}
	}
	return ReasonNone
}

// IsFiltered reports whether a date is blacked out for teacher at any level.
func (s *State) IsFiltered(teacher, key string) bool {
	return s.IsGloballyFiltered(key) || s.IsTeacherFiltered(teacher, key)
}

// IgnoresWeekly reports whether teacher is excluded from recurring generation.
func (s *State) IgnoresWeekly(teacher string) bool {
	_, ok := s.ignoreWeekly[teacher]
	return ok
}

// Overrides returns the active-override events in table order.
func (s *State) Overrides() []Override {
	out := make([]Override, len(s.overrides))
	copy(out, s.overrides)
	return out
}

// OverridesIn returns the overrides whose date falls in m.
func (s *State) OverridesIn(m model.Month) []Override {
	var out []Override
	for _, o := range s.overrides {
		if m.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out
}

// Stats summarizes the parsed structures for logging.
func (s *State) Stats() map[string]any {
	teacherSingles := 0
	for _, set := range s.teacherSingles {
		teacherSingles += len(set)
	}
	teacherRanges := 0
	for _, rs := range s.teacherRanges {
		teacherRanges += len(rs)
	}
	return map[string]any{
		"global_singles":  len(s.globalSingles),
		"global_ranges":   len(s.globalRanges),
		"teacher_singles": teacherSingles,
		"teacher_ranges":  teacherRanges,
		"overrides":       len(s.overrides),
		"ignore_weekly":   len(s.ignoreWeekly),
	}
}

// ActiveDates groups the active dates of a teacher-keyed exception table by teacher,
// keeping only dates in m. Dates are sorted and de-duplicated per teacher.
func ActiveDates(entries []Entry, m model.Month) map[string][]time.Time {
	seen := make(map[string]map[string]struct{})
	out := make(map[string][]time.Time)
	for _, e := range entries {
		if e.Teacher == "" || !m.Contains(e.Active) {
			continue
		}
		key := dates.Key(e.Active)
		if seen[e.Teacher] == nil {
			seen[e.Teacher] = make(map[string]struct{})
		}
		if _, dup := seen[e.Teacher][key]; dup {
			continue
		}
		seen[e.Teacher][key] = struct{}{}
		out[e.Teacher] = append(out[e.Teacher], e.Active)
	}
	for teacher := range out {
		ds := out[teacher]
		sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
	}
	return out
}
