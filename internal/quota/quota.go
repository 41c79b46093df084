// Package quota recomputes the running "lessons remaining" counter of the ledger.
package quota

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// overPrefix starts every over-quota message; messages with this prefix are owned by the recalculator.
const overPrefix = "❗ חריגה מהמכסה השנתית"

// OverMessage is the system message written on a row that exceeds its annual target.
func OverMessage(excess decimal.Decimal) string {
	return fmt.Sprintf("%s: עודף של %s שיעורים.", overPrefix, excess.String())
}

// IsOverMessage reports whether msg was produced by OverMessage.
func IsOverMessage(msg string) bool {
	return strings.HasPrefix(strings.TrimSpace(msg), overPrefix)
}

// Targets holds the annual targets per (teacher, course) and (teacher, student).
type Targets struct {
	group   map[string]decimal.Decimal
	private map[string]decimal.Decimal
}

func pairKey(a, b string) string {
	return a + "\x00" + b
}

// NewTargets takes the maximum declared target per pair. Blank or negative targets are
// ignored; a zero target is kept and counts normally.
func NewTargets(courses []model.GroupCourse, assignments []model.PrivateAssignment) Targets {
	t := Targets{
		group:   make(map[string]decimal.Decimal),
		private: make(map[string]decimal.Decimal),
	}
	for _, c := range courses {
		if c.Teacher == "" || c.Course == "" {
			continue
		}
		t.raise(t.group, pairKey(c.Teacher, c.Course), c.TargetWeeks)
	}
	for _, a := range assignments {
		if a.Teacher == "" || a.Student == "" {
			continue
		}
		t.raise(t.private, pairKey(a.Teacher, a.Student), a.AnnualTarget)
	}
	return t
}

func (Targets) raise(m map[string]decimal.Decimal, key string, v decimal.NullDecimal) {
	if !v.Valid || v.Decimal.IsNegative() {
		return
	}
	if cur, ok := m[key]; !ok || v.Decimal.GreaterThan(cur) {
		m[key] = v.Decimal
	}
}

// Len is the number of pairs with a target.
func (t Targets) Len() int {
	return len(t.group) + len(t.private)
}

// Result is aligned with the input rows.
type Result struct {
	Remaining []decimal.NullDecimal
	Over      []bool
	Messages  []string
}

// OverCount is the number of rows flagged over quota.
func (r Result) OverCount() int {
	n := 0
	for _, o := range r.Over {
		if o {
			n++
		}
	}
	return n
}

// Changed reports whether row i differs from what the ledger currently holds.
func (r Result) Changed(i int, l model.Lesson) bool {
	if r.Messages[i] != l.Message {
		return true
	}
	if r.Remaining[i].Valid != l.Remaining.Valid {
		return true
	}
	return r.Remaining[i].Valid && !r.Remaining[i].Decimal.Equal(l.Remaining.Decimal)
}

// Recompute walks the rows in chronological order and assigns each its remaining count.
// Group rows add one per dated lesson; private rows add their quantity whether dated or not.
// Travel rows have no counter. The walk only reads rows, so running it twice on the same
// ledger yields the same result.
func Recompute(rows []model.Lesson, targets Targets) Result {
	res := Result{
		Remaining: make([]decimal.NullDecimal, len(rows)),
		Over:      make([]bool, len(rows)),
		Messages:  make([]string, len(rows)),
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	col := ledger.NewCollator()
	sort.SliceStable(order, func(i, j int) bool {
		a, b := rows[order[i]], rows[order[j]]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if c := col.CompareString(a.Teacher, b.Teacher); c != 0 {
			return c < 0
		}
		return col.CompareString(counterpart(a), counterpart(b)) < 0
	})

	groupCum := make(map[string]decimal.Decimal)
	privateCum := make(map[string]decimal.Decimal)

	for _, i := range order {
		l := rows[i]
		res.Messages[i] = l.Message
		if IsOverMessage(l.Message) {
			res.Messages[i] = ""
			if l.IsPlaceholder() {
				res.Messages[i] = model.MessageDateRequired
			}
		}

		var (
			target decimal.Decimal
			ok     bool
			cum    decimal.Decimal
		)
		switch l.Type {
		case model.ReportGroup:
			k := pairKey(l.Teacher, l.Course)
			if l.HasDate() {
				groupCum[k] = groupCum[k].Add(decimal.NewFromInt(1))
			}
			cum = groupCum[k]
			target, ok = targets.group[k]
		case model.ReportPrivate:
			k := pairKey(l.Teacher, l.Student)
			privateCum[k] = privateCum[k].Add(l.Quantity)
			cum = privateCum[k]
			target, ok = targets.private[k]
		}
		if !ok {
			continue
		}

		remaining := target.Sub(cum)
		res.Remaining[i] = decimal.NewNullDecimal(remaining)
		if remaining.IsNegative() {
			res.Over[i] = true
			res.Messages[i] = OverMessage(remaining.Neg())
		}
	}
	return res
}

func counterpart(l model.Lesson) string {
	if l.Type == model.ReportPrivate {
		return l.Student
	}
	return l.Course
}
