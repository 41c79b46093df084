package exceptions

// Reason says which blackout suppressed a date.
type Reason int

// Reason constants.
const (
	ReasonNone Reason = iota
	ReasonGlobalDate
	ReasonGlobalRange
	ReasonTeacherDate
	ReasonTeacherRange
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonGlobalDate:
		return "global-date"
	case ReasonGlobalRange:
		return "global-range"
	case ReasonTeacherDate:
		return "teacher-date"
	case ReasonTeacherRange:
		return "teacher-range"
	default:
		return "unknown"
	}
}

// Suppressed reports whether the reason blocks emission.
func (r Reason) Suppressed() bool {
	return r != ReasonNone
}
