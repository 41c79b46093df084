// Package rowlock decides which ledger rows are locked by their payment status and
// which edits a locked row accepts.
package rowlock

import (
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/model"
)

// Decision is the lock state derived from a status value.
type Decision struct {
	Status model.Status
	Locked bool
}

// Classify maps a status cell to its lock decision. Only the paid and transferred
// statuses lock; every other value, including blank, leaves the row open.
func Classify(status string) Decision {
	s := model.Status(strings.TrimSpace(status))
	switch s {
	case model.StatusPaid, model.StatusTransferred:
		return Decision{Status: s, Locked: true}
	default:
		return Decision{Status: s}
	}
}

// Message is the system message a row carries after moving to status.
func Message(status model.Status) string {
	switch status {
	case model.StatusPaid:
		return model.MessageLockedPaid
	case model.StatusTransferred:
		return model.MessageLockedTransferred
	default:
		return ""
	}
}

// Editable reports whether column col may change on a row whose status cell holds status.
// statusCol is the position of the status column.
func Editable(status string, col, statusCol int) bool {
	return !Classify(status).Locked || col == statusCol
}

// CellEdit is a proposed change to one cell.
type CellEdit struct {
	Old any
	New any
	Row int
	Col int
}

// Review splits edits to a single row into accepted and reverted ones. The status cell is
// always accepted; the lock state used for the other cells is the one before the edit.
func Review(priorStatus string, statusCol int, edits []CellEdit) (accepted, reverted []CellEdit) {
	for _, e := range edits {
		if Editable(priorStatus, e.Col, statusCol) {
			accepted = append(accepted, e)
		} else {
			reverted = append(reverted, e)
		}
	}
	return accepted, reverted
}
