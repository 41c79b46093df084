package testutil

import (
	"github.com/Veraticus/lessons-ledger/internal/memtable"
	"github.com/Veraticus/lessons-ledger/internal/roster"
)

// Course is one row of the group course roster.
type Course struct {
	Teacher string
	Name    string
	Day     string
	Year    string
	Hours   float64
	// Weeks is the target number of weeks; zero leaves the cell blank.
	Weeks float64
}

// Private is one row of the private lesson roster.
type Private struct {
	Teacher     string
	Student     string
	Year        string
	Day         string
	Frequency   string
	Travel      string
	Notes       string
	Exceptional string
	Quantity    float64
	Target      float64
}

// WorkbookBuilder assembles the source sheets of a workbook.
//
// Example:
//
//	store := testutil.NewWorkbook(sheets.Courses, sheets.Private).
//		WithCourse(testutil.Course{Teacher: "Dana", Name: "Math", Day: "ה", Hours: 2}).
//		Build()
type WorkbookBuilder struct {
	sheets       map[string][][]any
	courseSheet  string
	privateSheet string
	courses      []Course
	privates     []Private
	noPrivate    bool
}

// NewWorkbook starts a workbook whose rosters live in the named sheets.
func NewWorkbook(courseSheet, privateSheet string) *WorkbookBuilder {
	return &WorkbookBuilder{
		courseSheet:  courseSheet,
		privateSheet: privateSheet,
		sheets:       make(map[string][][]any),
	}
}

// WithCourse adds a group course.
func (b *WorkbookBuilder) WithCourse(c Course) *WorkbookBuilder {
	b.courses = append(b.courses, c)
	return b
}

// WithPrivate adds a private assignment.
func (b *WorkbookBuilder) WithPrivate(p Private) *WorkbookBuilder {
	b.privates = append(b.privates, p)
	return b
}

// WithoutPrivateRoster leaves the private roster sheet out of the workbook.
func (b *WorkbookBuilder) WithoutPrivateRoster() *WorkbookBuilder {
	b.noPrivate = true
	return b
}

// WithSheet seeds any other sheet verbatim; rows[0] is its header.
func (b *WorkbookBuilder) WithSheet(name string, rows [][]any) *WorkbookBuilder {
	b.sheets[name] = rows
	return b
}

// Build seeds a fresh in-memory store.
func (b *WorkbookBuilder) Build() *memtable.Store {
	store := memtable.New()

	cc := roster.DefaultCourseColumns()
	courses := [][]any{header(cc.Teacher, cc.Course, cc.Day, cc.WeeklyHours, cc.Year, cc.TargetWeeks)}
	for _, c := range b.courses {
		courses = append(courses, []any{c.Teacher, c.Name, c.Day, c.Hours, c.Year, optional(c.Weeks)})
	}
	store.Seed(b.courseSheet, courses)

	if !b.noPrivate {
		pc := roster.DefaultPrivateColumns()
		privates := [][]any{header(pc.Teacher, pc.Student, pc.Year, pc.Day, pc.Quantity,
			pc.Frequency, pc.Travel, pc.AnnualTarget, pc.Notes, pc.Exceptional)}
		for _, p := range b.privates {
			privates = append(privates, []any{p.Teacher, p.Student, p.Year, p.Day, p.Quantity,
				p.Frequency, p.Travel, optional(p.Target), p.Notes, p.Exceptional})
		}
		store.Seed(b.privateSheet, privates)
	}

	for name, rows := range b.sheets {
		store.Seed(name, rows)
	}
	return store
}

func header(names ...string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func optional(v float64) any {
	if v == 0 {
		return ""
	}
	return v
}
