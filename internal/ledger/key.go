// Package ledger holds the ledger row codec and the identity-keyed index used to
// deduplicate generated lessons against the existing ledger.
package ledger

import (
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/Veraticus/lessons-ledger/internal/model"
)

// Key is the identity of a ledger row: teacher|type|course|student|date-key.
// Fields are escaped so a "|" inside a name cannot collide with the separator.
type Key string

var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// NewKey builds a key from its parts.
func NewKey(teacher string, typ model.ReportType, course, student, dateKey string) Key {
	parts := []string{teacher, string(typ), course, student, dateKey}
	for i, p := range parts {
		parts[i] = keyEscaper.Replace(p)
	}
	return Key(strings.Join(parts, "|"))
}

// KeyOf returns the identity key of a lesson.
func KeyOf(l model.Lesson) Key {
	return NewKey(l.Teacher, l.Type, l.Course, l.Student, dates.Key(l.Date))
}

func (k Key) String() string {
	return string(k)
}
