package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/rowlock"
)

// Mode is the merge mode of a run.
type Mode string

// Merge modes.
const (
	ModeSkip      Mode = "skip"
	ModeOverwrite Mode = "overwrite"
	ModeReset     Mode = "reset"
)

// ParseMode validates a merge mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSkip, ModeOverwrite, ModeReset:
		return m, nil
	case "":
		return ModeSkip, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidMode, s)
	}
}

// Row is a ledger row with its sheet position. Position 0 means queued, not persisted.
type Row struct {
	Lesson   model.Lesson
	Position int
}

// Outcome is the result of Upsert.
type Outcome int

// Upsert outcomes.
const (
	OutcomeSkipped Outcome = iota
	OutcomeQueued
	OutcomeOverwritten
	// OutcomeLocked means overwrite was requested for a row whose status locks it.
	OutcomeLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeQueued:
		return "queued"
	case OutcomeOverwritten:
		return "overwritten"
	case OutcomeLocked:
		return "locked"
	default:
		return "unknown"
	}
}

type entry struct {
	lesson      model.Lesson
	position    int
	overwritten bool
}

// Index maps identity keys to existing or queued rows for one run.
type Index struct {
	entries map[Key]*entry
	updates map[int]model.Lesson
	rows    []Row
	queue   []model.Lesson
}

// Build indexes the persisted ledger rows. When several rows share a key the last one wins.
func Build(rows []Row) *Index {
	ix := &Index{
		entries: make(map[Key]*entry, len(rows)),
		updates: make(map[int]model.Lesson),
		rows:    rows,
	}
	for _, r := range rows {
		ix.entries[KeyOf(r.Lesson)] = &entry{lesson: r.Lesson, position: r.Position}
	}
	return ix
}

// Upsert queues lesson when its key is new, overwrites the persisted row in overwrite
// mode, and otherwise does nothing. A key is mutated at most once per run.
func (ix *Index) Upsert(lesson model.Lesson, mode Mode) Outcome {
	key := KeyOf(lesson)
	e, ok := ix.entries[key]
	if !ok {
		ix.entries[key] = &entry{lesson: lesson}
		ix.queue = append(ix.queue, lesson)
		return OutcomeQueued
	}

	if mode != ModeOverwrite || e.position == 0 || e.overwritten {
		return OutcomeSkipped
	}
	if rowlock.Classify(string(e.lesson.Status)).Locked {
		return OutcomeLocked
	}

	e.lesson = lesson
	e.overwritten = true
	ix.updates[e.position] = lesson
	return OutcomeOverwritten
}

// Append queues lesson without identity checks. Placeholders use it because rows
// without a date are capped by count rather than deduplicated by key.
func (ix *Index) Append(lesson model.Lesson) {
	ix.queue = append(ix.queue, lesson)
}

// Contains reports whether key is known, persisted or queued.
func (ix *Index) Contains(key Key) bool {
	_, ok := ix.entries[key]
	return ok
}

// Placeholders counts persisted and queued rows for teacher and student in month m that are
// still waiting for a lesson date.
func (ix *Index) Placeholders(teacher, student string, m model.Month) int {
	match := func(l model.Lesson) bool {
		return l.IsPlaceholder() && l.Teacher == teacher && l.Student == student && l.PaymentMonth == m
	}

	n := 0
	for _, r := range ix.rows {
		if match(r.Lesson) {
			n++
		}
	}
	for _, l := range ix.queue {
		if match(l) {
			n++
		}
	}
	return n
}

// Pending returns the queued lessons in queue order.
func (ix *Index) Pending() []model.Lesson {
	out := make([]model.Lesson, len(ix.queue))
	copy(out, ix.queue)
	return out
}

// Updates returns the scheduled in-place overwrites ordered by sheet row.
func (ix *Index) Updates() []Row {
	out := make([]Row, 0, len(ix.updates))
	for pos, l := range ix.updates {
		out = append(out, Row{Position: pos, Lesson: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
